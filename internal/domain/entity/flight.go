package entity

import "time"

// Flight is a synthesized flight description persisted when auto-booking
// completes. Times may be unknown when the offer carried malformed data.
type Flight struct {
	ID               uint
	FlightNumber     *string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    *time.Time
	ArrivalTime      *time.Time
	DurationMinutes  *int
}

// Ticket records a purchased fare referencing a flight
type Ticket struct {
	ID        uint
	FlightID  uint
	Price     float64
	Currency  string
	FareClass string
	Purchased bool
	CreatedAt time.Time
}
