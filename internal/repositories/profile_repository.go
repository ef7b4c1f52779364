package repositories

import (
	"context"
	"errors"
	"fmt"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for user profile data access.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
}

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{db: db}
}

func (r *GORMProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("profile of user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get profile of user %s: %w", userID, err)
	}
	return &profile, nil
}

func (r *GORMProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *GORMProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	res := r.db.WithContext(ctx).Model(profile).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(profile)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("profile %s not found for update", profile.ID)
	}
	return nil
}
