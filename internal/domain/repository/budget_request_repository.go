package repository

import (
	"context"
	"errors"

	"skyvela-monitor/internal/domain/entity"
)

// ErrRequestNotFound is returned by FindByID when no request has the given id
var ErrRequestNotFound = errors.New("budget request not found")

// BudgetRequestRepository defines the interface for budget request operations
type BudgetRequestRepository interface {
	Create(ctx context.Context, request *entity.BudgetRequest) error
	FindByID(ctx context.Context, id uint) (*entity.BudgetRequest, error)
	// FindActive returns every request whose status is in the active set,
	// in stable id order.
	FindActive(ctx context.Context) ([]*entity.BudgetRequest, error)
	Update(ctx context.Context, request *entity.BudgetRequest) error
}
