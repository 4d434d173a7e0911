package repository

import (
	"context"
	"errors"

	"skyvela-monitor/internal/domain/entity"
)

// ErrRequestNotBookable is returned when the booking transaction re-reads the
// request and finds it no longer in a bookable state (cancelled or already
// booked since it was loaded).
var ErrRequestNotBookable = errors.New("budget request is no longer bookable")

// ErrPNRConflict is returned when the generated confirmation code collides
// with an existing booking. Callers regenerate and retry.
var ErrPNRConflict = errors.New("booking confirmation code already exists")

// BookingRepository persists the auto-booking output. CreateForRequest writes
// flight, ticket, payment and booking in a single transaction and, inside the
// same transaction, transitions the request to booked with its denormalized
// completion fields. On any failure nothing is persisted.
type BookingRepository interface {
	CreateForRequest(ctx context.Context, requestID uint, record *entity.BookingRecord) (*entity.BookingRecord, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}
