package utils

import (
	"strconv"
	"strings"
	"time"

	"skyvela-monitor/internal/domain/entity"
)

// ParseOffers converts wire offers into typed snapshots. Parsing is entirely
// defensive: a missing or malformed field becomes nil, never an error, so a
// garbage price feed degrades to "no price found" instead of failing a cycle.
func ParseOffers(raw []RawOffer) []*entity.FlightOffer {
	offers := make([]*entity.FlightOffer, 0, len(raw))
	for _, r := range raw {
		offers = append(offers, parseOffer(r))
	}
	return offers
}

func parseOffer(r RawOffer) *entity.FlightOffer {
	offer := &entity.FlightOffer{
		OfferID:  r.ID,
		Currency: r.Price.Currency,
		Cabin:    extractCabin(r),
	}

	if price, ok := parsePositiveFloat(r.Price.Total); ok {
		offer.TotalPrice = &price
	}

	if len(r.Itineraries) > 0 {
		offer.DurationMinutes = ISODurationMinutes(r.Itineraries[0].Duration)
		for _, seg := range r.Itineraries[0].Segments {
			offer.Segments = append(offer.Segments, entity.OfferSegment{
				CarrierCode: seg.CarrierCode,
				Number:      seg.Number,
				Origin:      seg.Departure.IataCode,
				Destination: seg.Arrival.IataCode,
				DepartureAt: ParseISOTime(seg.Departure.At),
				ArrivalAt:   ParseISOTime(seg.Arrival.At),
			})
		}
	}

	return offer
}

func extractCabin(r RawOffer) string {
	for _, tp := range r.TravelerPricings {
		for _, fd := range tp.FareDetailsBySegment {
			if fd.Cabin != "" {
				return fd.Cabin
			}
		}
	}
	return DefaultCabin
}

func parsePositiveFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParseISOTime parses an ISO-8601 timestamp, returning nil on malformed input
func ParseISOTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// LowestPriceOffer reduces offers to the one with the minimum strictly
// positive total price. ok is false when the slice is empty or no offer
// yields a usable price.
func LowestPriceOffer(offers []*entity.FlightOffer) (best *entity.FlightOffer, lowest float64, ok bool) {
	for _, offer := range offers {
		if offer == nil || offer.TotalPrice == nil {
			continue
		}
		price := *offer.TotalPrice
		if price <= 0 {
			continue
		}
		if !ok || price < lowest {
			best, lowest, ok = offer, price, true
		}
	}
	return best, lowest, ok
}

// WithinBudget reports whether price falls inside [min, max], inclusive both
// ends. No currency conversion: callers guarantee a single currency.
func WithinBudget(price, min, max float64) bool {
	return price >= min && price <= max
}

// ISODurationMinutes converts a provider duration like "PT5H12M" to minutes,
// returning nil on malformed input
func ISODurationMinutes(s string) *int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "PT")
	if s == "" {
		return nil
	}
	total := 0
	num := ""
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			num += string(c)
		case c == 'H' || c == 'h':
			h, err := strconv.Atoi(num)
			if err != nil {
				return nil
			}
			total += h * 60
			num = ""
		case c == 'M' || c == 'm':
			m, err := strconv.Atoi(num)
			if err != nil {
				return nil
			}
			total += m
			num = ""
		default:
			return nil
		}
	}
	if num != "" {
		return nil
	}
	return &total
}
