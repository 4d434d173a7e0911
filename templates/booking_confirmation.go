package templates

import (
	"fmt"

	"skyvela-monitor/internal/domain/entity"
)

const bookingConfirmationTemplate = `<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #10b981 0%%, #059669 100%%); padding: 2rem; color: white;">
    <h1 style="margin: 0;">Booking Confirmed!</h1>
  </div>
  <div style="padding: 2rem; background: #f9fafb;">
    <h2 style="color: #1f2937;">Your Flight Has Been Booked</h2>
    <p>Great news! We automatically booked your flight within your budget:</p>
    <div style="background: white; padding: 1.5rem; border-radius: 8px; margin: 1rem 0; border-left: 4px solid #10b981;">
      <h3 style="margin-top: 0; color: #10b981;">Booking Reference: %s</h3>
      <p><strong>Route:</strong> %s &rarr; %s</p>
      <p><strong>Departure:</strong> %s</p>
      <p><strong>Price:</strong> <span style="font-size: 1.5rem; color: #10b981; font-weight: bold;">$%.2f</span></p>
      <p style="color: #6b7280; font-size: 0.875rem;">Saved from budget: $%.2f</p>
    </div>
    <p style="background: #fef3c7; padding: 1rem; border-radius: 8px; border-left: 4px solid #f59e0b;">
      <strong>Next Steps:</strong><br>
      &bull; Check your email for e-ticket<br>
      &bull; Check-in online 24 hours before departure<br>
      &bull; Arrive at airport 2-3 hours early
    </p>
  </div>
  <div style="background: #e5e7eb; padding: 1rem; text-align: center; color: #6b7280; font-size: 0.813rem;">
    <p>&copy; 2025 Skyvela | Powered by Amadeus API</p>
  </div>
</body>
</html>`

// BookingConfirmation builds the subject and HTML body of a
// booking-confirmation email
func BookingConfirmation(request *entity.BudgetRequest, price float64, pnr string) (string, string) {
	subject := fmt.Sprintf("Booking Confirmed: %s -> %s", request.Origin, request.Destination)

	html := fmt.Sprintf(bookingConfirmationTemplate,
		pnr,
		request.Origin,
		request.Destination,
		formatDeparture(request.DepartureDate, "TBD"),
		price,
		request.MaxBudget-price,
	)

	return subject, html
}
