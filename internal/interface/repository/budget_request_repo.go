package repository

import (
	"context"
	"errors"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"

	"gorm.io/gorm"
)

// GormBudgetRequestRepository implements the BudgetRequestRepository interface
type GormBudgetRequestRepository struct {
	db *gorm.DB
}

// NewGormBudgetRequestRepository creates a new GORM budget request repository
func NewGormBudgetRequestRepository(db *gorm.DB) repository.BudgetRequestRepository {
	return &GormBudgetRequestRepository{
		db: db,
	}
}

// BudgetRequests GORM model for database mapping
type BudgetRequests struct {
	ID                  uint    `gorm:"primaryKey"`
	UserID              uint    `gorm:"column:user_id;index"`
	Origin              string  `gorm:"column:origin;size:3"`
	Destination         string  `gorm:"column:destination;size:3"`
	DepartureDate       *time.Time `gorm:"column:departure_date"`
	ReturnDate          *time.Time `gorm:"column:return_date"`
	TripDurationWeeks   *int    `gorm:"column:trip_duration_weeks"`
	PreferredAirline    *string `gorm:"column:preferred_airline;size:3"`
	NonStopOnly         bool    `gorm:"column:non_stop_only"`
	MaxStops            *int    `gorm:"column:max_stops"`
	PreferredTime       *string `gorm:"column:preferred_time;size:16"`
	MinBudget           float64 `gorm:"column:min_budget"`
	MaxBudget           float64 `gorm:"column:max_budget"`
	Currency            string  `gorm:"column:currency;size:8;default:USD"`
	Mode                string  `gorm:"column:mode;size:16"`
	Status              string  `gorm:"column:status;size:16;index"`
	BookedTicketID      *uint   `gorm:"column:booked_ticket_id"`
	BookedPrice         *float64 `gorm:"column:booked_price"`
	BookingConfirmation *string `gorm:"column:booking_confirmation;size:16"`
	LastError           *string `gorm:"column:last_error"`
	CreatedAt           time.Time
	LastCheckedAt       *time.Time `gorm:"column:last_checked_at"`
	CompletedAt         *time.Time `gorm:"column:completed_at"`
}

// TableName overrides the default table name
func (BudgetRequests) TableName() string {
	return "budget_buy_requests"
}

func toBudgetRequestEntity(m *BudgetRequests) *entity.BudgetRequest {
	return &entity.BudgetRequest{
		ID:                  m.ID,
		UserID:              m.UserID,
		Origin:              m.Origin,
		Destination:         m.Destination,
		DepartureDate:       m.DepartureDate,
		ReturnDate:          m.ReturnDate,
		TripDurationWeeks:   m.TripDurationWeeks,
		PreferredAirline:    m.PreferredAirline,
		NonStopOnly:         m.NonStopOnly,
		MaxStops:            m.MaxStops,
		PreferredTime:       m.PreferredTime,
		MinBudget:           m.MinBudget,
		MaxBudget:           m.MaxBudget,
		Currency:            m.Currency,
		Mode:                m.Mode,
		Status:              m.Status,
		BookedTicketID:      m.BookedTicketID,
		BookedPrice:         m.BookedPrice,
		BookingConfirmation: m.BookingConfirmation,
		LastError:           m.LastError,
		CreatedAt:           m.CreatedAt,
		LastCheckedAt:       m.LastCheckedAt,
		CompletedAt:         m.CompletedAt,
	}
}

func fromBudgetRequestEntity(e *entity.BudgetRequest) *BudgetRequests {
	return &BudgetRequests{
		ID:                  e.ID,
		UserID:              e.UserID,
		Origin:              e.Origin,
		Destination:         e.Destination,
		DepartureDate:       e.DepartureDate,
		ReturnDate:          e.ReturnDate,
		TripDurationWeeks:   e.TripDurationWeeks,
		PreferredAirline:    e.PreferredAirline,
		NonStopOnly:         e.NonStopOnly,
		MaxStops:            e.MaxStops,
		PreferredTime:       e.PreferredTime,
		MinBudget:           e.MinBudget,
		MaxBudget:           e.MaxBudget,
		Currency:            e.Currency,
		Mode:                e.Mode,
		Status:              e.Status,
		BookedTicketID:      e.BookedTicketID,
		BookedPrice:         e.BookedPrice,
		BookingConfirmation: e.BookingConfirmation,
		LastError:           e.LastError,
		CreatedAt:           e.CreatedAt,
		LastCheckedAt:       e.LastCheckedAt,
		CompletedAt:         e.CompletedAt,
	}
}

// Create validates and inserts a new budget request
func (r *GormBudgetRequestRepository) Create(ctx context.Context, request *entity.BudgetRequest) error {
	if err := request.Validate(); err != nil {
		return err
	}
	if request.Status == "" {
		request.Status = entity.StatusPending
	}
	if request.Currency == "" {
		request.Currency = "USD"
	}

	model := fromBudgetRequestEntity(request)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return result.Error
	}
	request.ID = model.ID
	request.CreatedAt = model.CreatedAt
	return nil
}

// FindByID finds a budget request by id
func (r *GormBudgetRequestRepository) FindByID(ctx context.Context, id uint) (*entity.BudgetRequest, error) {
	var model BudgetRequests
	result := r.db.WithContext(ctx).First(&model, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRequestNotFound
		}
		return nil, result.Error
	}

	return toBudgetRequestEntity(&model), nil
}

// FindActive returns all requests in the active status set in stable id order
func (r *GormBudgetRequestRepository) FindActive(ctx context.Context) ([]*entity.BudgetRequest, error) {
	var models []BudgetRequests
	result := r.db.WithContext(ctx).
		Where("status IN ?", entity.ActiveStatuses).
		Order("id ASC").
		Find(&models)

	if result.Error != nil {
		return nil, result.Error
	}

	requests := make([]*entity.BudgetRequest, 0, len(models))
	for i := range models {
		requests = append(requests, toBudgetRequestEntity(&models[i]))
	}
	return requests, nil
}

// Update persists the full current state of a budget request
func (r *GormBudgetRequestRepository) Update(ctx context.Context, request *entity.BudgetRequest) error {
	model := fromBudgetRequestEntity(request)
	return r.db.WithContext(ctx).Save(model).Error
}
