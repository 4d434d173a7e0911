package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/pkg/logger"
	"skyvela-monitor/pkg/utils"

	"golang.org/x/oauth2"
)

// AmadeusRepository handles flight-offer searches against the Amadeus API
type AmadeusRepository struct {
	logger     logger.Logger
	baseURL    string
	httpClient *http.Client
	maxOffers  int
}

// NewAmadeusRepository creates a new Amadeus flight search repository. The
// token source injects and refreshes the bearer token on every call.
func NewAmadeusRepository(baseURL string, tokenSource oauth2.TokenSource, timeout time.Duration, maxOffers int, logger logger.Logger) repository.FlightSearchRepository {
	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	httpClient.Timeout = timeout

	if maxOffers <= 0 {
		maxOffers = 10
	}

	return &AmadeusRepository{
		logger:     logger,
		baseURL:    baseURL,
		httpClient: httpClient,
		maxOffers:  maxOffers,
	}
}

// Search queries the flight-offers-search endpoint. An empty result set is a
// valid response, not an error.
func (r *AmadeusRepository) Search(ctx context.Context, query repository.OfferQuery) ([]*entity.FlightOffer, error) {
	departure := query.DepartureDate
	if departure.IsZero() {
		// No target date on the request: look one week out
		departure = time.Now().AddDate(0, 0, 7)
	}

	adults := query.Adults
	if adults <= 0 {
		adults = 1
	}
	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = r.maxOffers
	}

	params := url.Values{}
	params.Set("originLocationCode", query.Origin)
	params.Set("destinationLocationCode", query.Destination)
	params.Set("departureDate", departure.Format(utils.DATE_LAYOUT))
	params.Set("adults", strconv.Itoa(adults))
	params.Set("max", strconv.Itoa(maxResults))

	searchURL := fmt.Sprintf("%s/v2/shopping/flight-offers?%s", r.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	r.logger.Info("Searching flight offers",
		"origin", query.Origin,
		"destination", query.Destination,
		"departureDate", departure.Format(utils.DATE_LAYOUT))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call flight offers API: %w", err)
	}
	defer resp.Body.Close()

	var response utils.RawOfferResponse
	if resp.StatusCode != http.StatusOK {
		// Best-effort parse of the error envelope for a readable message
		if decodeErr := json.NewDecoder(resp.Body).Decode(&response); decodeErr != nil {
			r.logger.Debug("Could not decode error response body", "error", decodeErr)
		}
		detail := ""
		if len(response.Errors) > 0 {
			detail = response.Errors[0].Title
		}
		return nil, fmt.Errorf("flight offers API returned status %d: %s", resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode flight offers response: %w", err)
	}

	offers := utils.ParseOffers(response.Data)
	r.logger.Info("Flight offers returned", "count", len(offers))
	return offers, nil
}
