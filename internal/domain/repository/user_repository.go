package repository

import (
	"context"

	"skyvela-monitor/internal/domain/entity"
)

// UserRepository defines the interface for user lookups
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// PassportRepository defines the interface for travel-document operations.
// A user has at most one passport; Upsert replaces any existing record.
// GetByUserID returns (nil, nil) when the user has no document on file.
type PassportRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*entity.Passport, error)
	Upsert(ctx context.Context, passport *entity.Passport) error
}
