package services

import (
	"context"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/models"
	"ideaspark/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProfileService manages the optional personal details of a user.
type ProfileService struct {
	profiles repositories.ProfileRepository
	log      *logrus.Logger
}

func NewProfileService(profiles repositories.ProfileRepository, log *logrus.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, log: log}
}

// GetOrCreateProfile returns the user's profile, creating an empty one for
// accounts that predate profiles.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	profile = &models.UserProfile{
		UserID:       userID,
		PrivacyLevel: models.PrivacyPublic,
		Preferences:  models.Preferences{},
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.log.WithField("user_id", userID).Info("profile created")
	return profile, nil
}

// ProfileChanges lists editable profile fields. Nil fields are left untouched.
type ProfileChanges struct {
	Bio          *string
	Location     *string
	Website      *string
	Company      *string
	JobTitle     *string
	PrivacyLevel *string
	Preferences  models.Preferences
}

// UpdateProfile applies changes to the user's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, changes ProfileChanges) (*models.UserProfile, error) {
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if changes.PrivacyLevel != nil {
		switch *changes.PrivacyLevel {
		case models.PrivacyPublic, models.PrivacyFriends, models.PrivacyPrivate:
			profile.PrivacyLevel = *changes.PrivacyLevel
		default:
			return nil, apperrors.Field("privacy_level", "privacy_level must be public, friends or private")
		}
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&profile.Bio, changes.Bio)
	assign(&profile.Location, changes.Location)
	assign(&profile.Website, changes.Website)
	assign(&profile.Company, changes.Company)
	assign(&profile.JobTitle, changes.JobTitle)
	if changes.Preferences != nil {
		if profile.Preferences == nil {
			profile.Preferences = models.Preferences{}
		}
		for k, v := range changes.Preferences {
			profile.Preferences[k] = v
		}
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
