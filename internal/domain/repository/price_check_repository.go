package repository

import (
	"context"

	"skyvela-monitor/internal/domain/entity"
)

// PriceCheckRepository defines the interface for the evaluation audit trail
type PriceCheckRepository interface {
	Save(ctx context.Context, check *entity.PriceCheck) error
	FindByRequestID(ctx context.Context, requestID uint, limit int) ([]*entity.PriceCheck, error)
}
