package repositories

import (
	"context"
	"time"

	"ideaspark/internal/models"
)

// ListOptions selects a window of a result set.
type ListOptions struct {
	Offset int
	Limit  int
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// CreateWithProfile inserts the user and its empty profile atomically.
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.UserProfile) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByPhone ignores the user with excludeID when it is not empty.
	ExistsByPhone(ctx context.Context, phone, excludeID string) (bool, error)
	List(ctx context.Context, opts ListOptions) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
