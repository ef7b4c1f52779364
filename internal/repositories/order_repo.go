package repositories

import (
	"context"
	"time"

	"ideaspark/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]models.Order, int64, error)
	// UpdateStatusIf moves the order from status `from` to `to` and reports
	// whether a row was changed. It is a no-op when the current status differs.
	UpdateStatusIf(ctx context.Context, id, from, to string, at time.Time) (bool, error)
}
