package entity

import "time"

// OfferSegment is one flight segment of an offer itinerary. Fields missing or
// malformed in the provider response are left nil/empty.
type OfferSegment struct {
	CarrierCode string
	Number      string
	Origin      string
	Destination string
	DepartureAt *time.Time
	ArrivalAt   *time.Time
}

// FlightOffer is a transient snapshot of one priced itinerary returned by the
// flight-offers API. It lives only within a single evaluation cycle and is
// never persisted relationally.
type FlightOffer struct {
	OfferID         string
	TotalPrice      *float64
	Currency        string
	Cabin           string
	DurationMinutes *int
	Segments        []OfferSegment
}

// FirstSegment returns the representative first segment, or nil when the
// offer carried no segment data
func (o *FlightOffer) FirstSegment() *OfferSegment {
	if len(o.Segments) == 0 {
		return nil
	}
	return &o.Segments[0]
}

// Price-check outcomes recorded per evaluation
const (
	OutcomeNoOffers      = "no_offers"
	OutcomeNoPrice       = "no_price"
	OutcomeOutOfBudget   = "out_of_budget"
	OutcomePriceFound    = "price_found"
	OutcomeAlertSent     = "alert_sent"
	OutcomeBooked        = "booked"
	OutcomeBookingFailed = "booking_failed"
)

// PriceCheck is the audit document written after each request evaluation
type PriceCheck struct {
	ID          string    `bson:"_id,omitempty"`
	RequestID   uint      `bson:"requestId"`
	CycleID     string    `bson:"cycleId"`
	Origin      string    `bson:"origin"`
	Destination string    `bson:"destination"`
	OfferCount  int       `bson:"offerCount"`
	LowestPrice *float64  `bson:"lowestPrice,omitempty"`
	Currency    string    `bson:"currency,omitempty"`
	InBudget    bool      `bson:"inBudget"`
	Outcome     string    `bson:"outcome"`
	CheckedAt   time.Time `bson:"checkedAt"`
}
