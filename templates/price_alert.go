package templates

import (
	"fmt"
	"time"

	"skyvela-monitor/internal/domain/entity"
)

const emailDateLayout = "January 2, 2006"

const priceAlertTemplate = `<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 2rem; color: white;">
    <h1 style="margin: 0;">Price Alert!</h1>
  </div>
  <div style="padding: 2rem; background: #f9fafb;">
    <h2 style="color: #1f2937;">Flight Price Within Your Budget</h2>
    <p>Good news! We found a flight matching your budget requirements:</p>
    <div style="background: white; padding: 1.5rem; border-radius: 8px; margin: 1rem 0;">
      <h3 style="margin-top: 0; color: #4f46e5;">%s &rarr; %s</h3>
      <p><strong>Departure:</strong> %s</p>
      <p><strong>Price Found:</strong> <span style="font-size: 1.5rem; color: #10b981; font-weight: bold;">$%.2f</span></p>
      <p><strong>Your Budget:</strong> $%.2f - $%.2f</p>
    </div>
    <p style="color: #6b7280; font-size: 0.875rem;">
      This is an automated alert from your Budget Buy request.
      Prices may change quickly, so book soon!
    </p>
  </div>
  <div style="background: #e5e7eb; padding: 1rem; text-align: center; color: #6b7280; font-size: 0.813rem;">
    <p>&copy; 2025 Skyvela | Powered by Amadeus API</p>
  </div>
</body>
</html>`

// PriceAlert builds the subject and HTML body of a price-alert email
func PriceAlert(request *entity.BudgetRequest, price float64) (string, string) {
	subject := fmt.Sprintf("Price Alert: %s -> %s", request.Origin, request.Destination)

	html := fmt.Sprintf(priceAlertTemplate,
		request.Origin,
		request.Destination,
		formatDeparture(request.DepartureDate, "Flexible"),
		price,
		request.MinBudget,
		request.MaxBudget,
	)

	return subject, html
}

func formatDeparture(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format(emailDateLayout)
}
