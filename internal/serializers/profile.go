package serializers

import (
	"ideaspark/internal/models"
	"ideaspark/internal/services"
)

// ProfileUpdate is a partial update of the current user's profile.
type ProfileUpdate struct {
	Bio          *string                `json:"bio" validate:"omitempty,max=500"`
	Location     *string                `json:"location" validate:"omitempty,max=100"`
	Website      *string                `json:"website" validate:"omitempty,url,max=200"`
	Company      *string                `json:"company" validate:"omitempty,max=100"`
	JobTitle     *string                `json:"job_title" validate:"omitempty,max=100"`
	PrivacyLevel *string                `json:"privacy_level" validate:"omitempty,oneof=public friends private"`
	Preferences  map[string]interface{} `json:"preferences"`
}

func (s *ProfileUpdate) Validate() error {
	return Validate(s)
}

func (s *ProfileUpdate) Changes() services.ProfileChanges {
	changes := services.ProfileChanges{
		Bio:          s.Bio,
		Location:     s.Location,
		Website:      s.Website,
		Company:      s.Company,
		JobTitle:     s.JobTitle,
		PrivacyLevel: s.PrivacyLevel,
	}
	if s.Preferences != nil {
		changes.Preferences = models.Preferences(s.Preferences)
	}
	return changes
}
