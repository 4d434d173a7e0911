package entity

import "time"

// Payment provider tag and booking status used by the auto-book path
const (
	PaymentProviderBudgetBuy = "budget_buy"
	BookingAPIProvider       = "amadeus_budget_buy"
	BookingStatusConfirmed   = "confirmed"
	PaymentStatusCompleted   = "completed"
)

// Passenger is one entry of the serialized passenger list on a booking
type Passenger struct {
	Name     string `json:"name"`
	Passport string `json:"passport"`
	Type     string `json:"type"`
}

// Payment records a completed charge. The auto-book path marks the payment
// completed with a synthetic transaction id without a real gateway capture;
// production use requires wiring an actual charge before this status is set.
type Payment struct {
	ID            uint
	UserID        uint
	Amount        float64
	Currency      string
	Status        string
	Provider      string
	TransactionID string
	CompletedAt   *time.Time
	CreatedAt     time.Time
}

// Booking is the parent record of a completed purchase. PNR is unique across
// all bookings; the split of total into base and taxes is display-only.
type Booking struct {
	ID                  uint
	UserID              uint
	PNR                 string
	Origin              string
	Destination         string
	DepartureDate       *time.Time
	ReturnDate          *time.Time
	Airline             string
	FlightNumber        string
	PassengersJSON      string
	BasePrice           float64
	Taxes               float64
	TotalAmount         float64
	Currency            string
	Status              string
	APIProvider         string
	APIBookingReference string
	PaymentID           uint
	CreatedAt           time.Time
}

// BookingRecord bundles the four records auto-booking persists atomically.
// Either all of them commit together with the request's transition to booked,
// or none do.
type BookingRecord struct {
	Flight  Flight
	Ticket  Ticket
	Payment Payment
	Booking Booking
}
