package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBookingRepository implements the BookingRepository interface
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GORM booking repository
func NewGormBookingRepository(db *gorm.DB) repository.BookingRepository {
	return &GormBookingRepository{
		db: db,
	}
}

// Flights GORM model for database mapping
type Flights struct {
	ID               uint       `gorm:"primaryKey"`
	FlightNumber     *string    `gorm:"column:flight_number;size:32"`
	DepartureAirport string     `gorm:"column:departure_airport;size:3"`
	ArrivalAirport   string     `gorm:"column:arrival_airport;size:3"`
	DepartureTime    *time.Time `gorm:"column:departure_time"`
	ArrivalTime      *time.Time `gorm:"column:arrival_time"`
	DurationMinutes  *int       `gorm:"column:duration"`
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flights"
}

// Tickets GORM model for database mapping
type Tickets struct {
	ID        uint    `gorm:"primaryKey"`
	FlightID  uint    `gorm:"column:flight_id"`
	Price     float64 `gorm:"column:price"`
	Currency  string  `gorm:"column:currency;size:8;default:USD"`
	FareClass string  `gorm:"column:fare_class;size:32"`
	Purchased bool    `gorm:"column:purchased"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (Tickets) TableName() string {
	return "tickets"
}

// Payments GORM model for database mapping
type Payments struct {
	ID            uint       `gorm:"primaryKey"`
	UserID        uint       `gorm:"column:user_id;index"`
	Amount        float64    `gorm:"column:amount"`
	Currency      string     `gorm:"column:currency;size:8"`
	Status        string     `gorm:"column:status;size:16"`
	Provider      string     `gorm:"column:provider;size:32"`
	TransactionID string     `gorm:"column:transaction_id;size:64"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	CreatedAt     time.Time
}

// TableName overrides the default table name
func (Payments) TableName() string {
	return "payments"
}

// Bookings GORM model for database mapping
type Bookings struct {
	ID                  uint       `gorm:"primaryKey"`
	UserID              uint       `gorm:"column:user_id;index"`
	PNR                 string     `gorm:"column:pnr;size:8;unique"`
	Origin              string     `gorm:"column:origin;size:3"`
	Destination         string     `gorm:"column:destination;size:3"`
	DepartureDate       *time.Time `gorm:"column:departure_date"`
	ReturnDate          *time.Time `gorm:"column:return_date"`
	Airline             string     `gorm:"column:airline;size:8"`
	FlightNumber        string     `gorm:"column:flight_number;size:32"`
	PassengersJSON      string     `gorm:"column:passengers_json"`
	BasePrice           float64    `gorm:"column:base_price"`
	Taxes               float64    `gorm:"column:taxes"`
	TotalAmount         float64    `gorm:"column:total_amount"`
	Currency            string     `gorm:"column:currency;size:8"`
	Status              string     `gorm:"column:status;size:16"`
	APIProvider         string     `gorm:"column:api_provider;size:32"`
	APIBookingReference string     `gorm:"column:api_booking_reference;size:32"`
	PaymentID           uint       `gorm:"column:payment_id"`
	CreatedAt           time.Time
}

// TableName overrides the default table name
func (Bookings) TableName() string {
	return "bookings"
}

// CreateForRequest persists the flight, ticket, payment and booking records in
// one transaction and transitions the request to booked inside the same
// transaction. The request row is re-read with a row lock so a request
// cancelled or booked since load time is rejected instead of double-booked.
func (r *GormBookingRepository) CreateForRequest(ctx context.Context, requestID uint, record *entity.BookingRecord) (*entity.BookingRecord, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req BudgetRequests
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, requestID).Error; err != nil {
			return err
		}
		if req.Status == entity.StatusCancelled || req.Status == entity.StatusBooked {
			return repository.ErrRequestNotBookable
		}

		flight := &Flights{
			FlightNumber:     record.Flight.FlightNumber,
			DepartureAirport: record.Flight.DepartureAirport,
			ArrivalAirport:   record.Flight.ArrivalAirport,
			DepartureTime:    record.Flight.DepartureTime,
			ArrivalTime:      record.Flight.ArrivalTime,
			DurationMinutes:  record.Flight.DurationMinutes,
		}
		if err := tx.Create(flight).Error; err != nil {
			return err
		}

		ticket := &Tickets{
			FlightID:  flight.ID,
			Price:     record.Ticket.Price,
			Currency:  record.Ticket.Currency,
			FareClass: record.Ticket.FareClass,
			Purchased: record.Ticket.Purchased,
		}
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}

		payment := &Payments{
			UserID:        record.Payment.UserID,
			Amount:        record.Payment.Amount,
			Currency:      record.Payment.Currency,
			Status:        record.Payment.Status,
			Provider:      record.Payment.Provider,
			TransactionID: record.Payment.TransactionID,
			CompletedAt:   record.Payment.CompletedAt,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		booking := &Bookings{
			UserID:              record.Booking.UserID,
			PNR:                 record.Booking.PNR,
			Origin:              record.Booking.Origin,
			Destination:         record.Booking.Destination,
			DepartureDate:       record.Booking.DepartureDate,
			ReturnDate:          record.Booking.ReturnDate,
			Airline:             record.Booking.Airline,
			FlightNumber:        record.Booking.FlightNumber,
			PassengersJSON:      record.Booking.PassengersJSON,
			BasePrice:           record.Booking.BasePrice,
			Taxes:               record.Booking.Taxes,
			TotalAmount:         record.Booking.TotalAmount,
			Currency:            record.Booking.Currency,
			Status:              record.Booking.Status,
			APIProvider:         record.Booking.APIProvider,
			APIBookingReference: record.Booking.APIBookingReference,
			PaymentID:           payment.ID,
		}
		if err := tx.Create(booking).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return repository.ErrPNRConflict
			}
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":               entity.StatusBooked,
			"booked_ticket_id":     ticket.ID,
			"booked_price":         ticket.Price,
			"booking_confirmation": booking.PNR,
			"completed_at":         now,
			"last_error":           nil,
		}
		if err := tx.Model(&BudgetRequests{}).Where("id = ?", requestID).Updates(updates).Error; err != nil {
			return err
		}

		record.Flight.ID = flight.ID
		record.Ticket.ID = ticket.ID
		record.Ticket.FlightID = flight.ID
		record.Payment.ID = payment.ID
		record.Booking.ID = booking.ID
		record.Booking.PaymentID = payment.ID
		return nil
	})

	if err != nil {
		return nil, err
	}
	return record, nil
}

// CountByUser returns how many bookings a user owns
func (r *GormBookingRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Bookings{}).Where("user_id = ?", userID).Count(&count)
	return count, result.Error
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}
