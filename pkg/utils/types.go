package utils

// Constants
const (
	DATE_LAYOUT     = "2006-01-02"
	DefaultCurrency = "USD"
	DefaultCabin    = "ECONOMY"
)

// RawOfferResponse is the envelope of the flight-offers-search endpoint
type RawOfferResponse struct {
	Data []RawOffer `json:"data"`
	Errors []struct {
		Status int    `json:"status"`
		Code   int    `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// RawOffer mirrors one offer as returned on the wire. Everything is loosely
// structured; ParseOffers maps it to a typed entity with missing-or-malformed
// fields set to nil.
type RawOffer struct {
	ID                      string            `json:"id"`
	ValidatingAirlineCodes  []string          `json:"validatingAirlineCodes"`
	Itineraries             []RawItinerary    `json:"itineraries"`
	Price                   RawPrice          `json:"price"`
	TravelerPricings        []RawTravelerPricing `json:"travelerPricings"`
}

// RawItinerary is one direction of travel
type RawItinerary struct {
	Duration string       `json:"duration"`
	Segments []RawSegment `json:"segments"`
}

// RawSegment is one flight leg
type RawSegment struct {
	Departure   RawEndpoint `json:"departure"`
	Arrival     RawEndpoint `json:"arrival"`
	CarrierCode string      `json:"carrierCode"`
	Number      string      `json:"number"`
	Duration    string      `json:"duration"`
}

// RawEndpoint is a segment departure or arrival point
type RawEndpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

// RawPrice carries totals as strings on the wire
type RawPrice struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Base     string `json:"base"`
}

// RawTravelerPricing carries per-traveler fare details
type RawTravelerPricing struct {
	FareDetailsBySegment []RawFareDetails `json:"fareDetailsBySegment"`
}

// RawFareDetails is the per-segment fare breakdown of one traveler pricing
type RawFareDetails struct {
	Cabin string `json:"cabin"`
}
