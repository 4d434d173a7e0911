package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/pkg/logger"
	"skyvela-monitor/pkg/utils"
)

// maxPNRAttempts bounds confirmation-code regeneration on unique collisions
const maxPNRAttempts = 5

// AutoBooker synthesizes and persists the booking quartet when a budget
// request in auto_book mode matches a price
type AutoBooker struct {
	bookingRepo repository.BookingRepository
	logger      logger.Logger
}

// NewAutoBooker creates a new auto-booking executor
func NewAutoBooker(bookingRepo repository.BookingRepository, logger logger.Logger) *AutoBooker {
	return &AutoBooker{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Book persists a full flight/ticket/payment/booking set for the request at
// the given price. The caller has already verified the price is within budget
// and that a passport exists. On confirmation-code collision a fresh code is
// generated and the transaction retried a bounded number of times.
func (b *AutoBooker) Book(ctx context.Context, request *entity.BudgetRequest, passport *entity.Passport, offer *entity.FlightOffer, price float64) (*entity.BookingRecord, error) {
	record, err := b.assembleRecord(request, passport, offer, price)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxPNRAttempts; attempt++ {
		record.Booking.PNR = utils.GeneratePNR()

		result, err := b.bookingRepo.CreateForRequest(ctx, request.ID, record)
		if errors.Is(err, repository.ErrPNRConflict) {
			b.logger.Warn("Confirmation code collision, regenerating",
				"requestID", request.ID,
				"attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		b.logger.Info("Auto-booking committed",
			"requestID", request.ID,
			"pnr", result.Booking.PNR,
			"price", price)
		return result, nil
	}

	return nil, fmt.Errorf("could not generate a unique confirmation code after %d attempts", maxPNRAttempts)
}

// assembleRecord builds the four records from the chosen lowest-price offer.
// Segment fields missing from the offer stay nil; they never fail the booking.
func (b *AutoBooker) assembleRecord(request *entity.BudgetRequest, passport *entity.Passport, offer *entity.FlightOffer, price float64) (*entity.BookingRecord, error) {
	currency := request.Currency
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	var (
		flightNumber  *string
		airline       string
		departureTime *time.Time
		arrivalTime   *time.Time
	)
	if seg := offer.FirstSegment(); seg != nil {
		airline = seg.CarrierCode
		if seg.CarrierCode != "" || seg.Number != "" {
			fn := seg.CarrierCode + seg.Number
			flightNumber = &fn
		}
		departureTime = seg.DepartureAt
		arrivalTime = seg.ArrivalAt
	}

	fareClass := offer.Cabin
	if fareClass == "" {
		fareClass = utils.DefaultCabin
	}

	passengers := []entity.Passenger{{
		Name:     passport.FullName(),
		Passport: passport.PassportNumber,
		Type:     "adult",
	}}
	passengersJSON, err := json.Marshal(passengers)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize passengers: %w", err)
	}

	bookingDeparture := request.DepartureDate
	if departureTime != nil {
		bookingDeparture = departureTime
	}

	now := time.Now().UTC()
	reference := utils.SyntheticTransactionID(request.ID)

	return &entity.BookingRecord{
		Flight: entity.Flight{
			FlightNumber:     flightNumber,
			DepartureAirport: request.Origin,
			ArrivalAirport:   request.Destination,
			DepartureTime:    departureTime,
			ArrivalTime:      arrivalTime,
			DurationMinutes:  offer.DurationMinutes,
		},
		Ticket: entity.Ticket{
			Price:     price,
			Currency:  currency,
			FareClass: fareClass,
			Purchased: true,
		},
		Payment: entity.Payment{
			UserID:        request.UserID,
			Amount:        price,
			Currency:      currency,
			Status:        entity.PaymentStatusCompleted,
			Provider:      entity.PaymentProviderBudgetBuy,
			TransactionID: reference,
			CompletedAt:   &now,
		},
		Booking: entity.Booking{
			UserID:              request.UserID,
			Origin:              request.Origin,
			Destination:         request.Destination,
			DepartureDate:       bookingDeparture,
			ReturnDate:          request.ReturnDate,
			Airline:             airline,
			FlightNumber:        deref(flightNumber),
			PassengersJSON:      string(passengersJSON),
			BasePrice:           price * 0.85,
			Taxes:               price * 0.15,
			TotalAmount:         price,
			Currency:            currency,
			Status:              entity.BookingStatusConfirmed,
			APIProvider:         entity.BookingAPIProvider,
			APIBookingReference: reference,
		},
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
