package entity

import (
	"errors"
	"time"
)

// Budget request lifecycle statuses
const (
	StatusPending    = "pending"
	StatusSearching  = "searching"
	StatusPriceFound = "price_found"
	StatusAlertSent  = "alert_sent"
	StatusBooked     = "booked"
	StatusCancelled  = "cancelled"
)

// Budget request modes
const (
	ModeAutoBook  = "auto_book"
	ModeAlertOnly = "alert_only"
)

// ActiveStatuses is the set of statuses the monitor re-evaluates each cycle.
// alert_sent and price_found are treated as terminal cycle outcomes; a request
// only re-enters this set when the user re-arms it.
var ActiveStatuses = []string{StatusPending, StatusSearching}

// BudgetRequest is one user's standing instruction to watch a route and
// budget range. Mutated only by the monitor once created, until it reaches a
// terminal status. Never physically deleted: cancellation is a status value.
type BudgetRequest struct {
	ID                uint
	UserID            uint
	Origin            string
	Destination       string
	DepartureDate     *time.Time
	ReturnDate        *time.Time
	TripDurationWeeks *int
	PreferredAirline  *string
	NonStopOnly       bool
	MaxStops          *int
	PreferredTime     *string
	MinBudget         float64
	MaxBudget         float64
	Currency          string
	Mode              string
	Status            string
	BookedTicketID    *uint
	BookedPrice       *float64
	BookingConfirmation *string
	LastError         *string
	CreatedAt         time.Time
	LastCheckedAt     *time.Time
	CompletedAt       *time.Time
}

// ErrInvalidBudgetRange is returned when min_budget is not strictly below max_budget.
var ErrInvalidBudgetRange = errors.New("min_budget must be strictly less than max_budget")

// Validate checks the creation invariants of a budget request
func (r *BudgetRequest) Validate() error {
	if r.MinBudget >= r.MaxBudget {
		return ErrInvalidBudgetRange
	}
	if len(r.Origin) != 3 || len(r.Destination) != 3 {
		return errors.New("origin and destination must be 3-letter location codes")
	}
	if r.Mode != ModeAutoBook && r.Mode != ModeAlertOnly {
		return errors.New("mode must be auto_book or alert_only")
	}
	return nil
}

// IsTerminal reports whether the request must never be re-evaluated
func (r *BudgetRequest) IsTerminal() bool {
	return r.Status == StatusBooked || r.Status == StatusCancelled
}

// IsActive reports whether the monitor should pick the request up next cycle
func (r *BudgetRequest) IsActive() bool {
	for _, s := range ActiveStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}
