package repository

import (
	"context"
	"time"

	"skyvela-monitor/internal/domain/entity"
)

// OfferQuery is one flight-offers search request
type OfferQuery struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	Adults        int
	MaxResults    int
}

// FlightSearchRepository defines the interface for the external flight-offers
// API. An empty slice is a valid "no offers" response; provider errors are
// returned as errors and treated as "no offers this cycle" by callers.
type FlightSearchRepository interface {
	Search(ctx context.Context, query OfferQuery) ([]*entity.FlightOffer, error)
}
