package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Privacy levels of a profile.
const (
	PrivacyPublic  = "public"
	PrivacyFriends = "friends"
	PrivacyPrivate = "private"
)

// UserProfile stores optional personal details of a user.
type UserProfile struct {
	ID            string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string      `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Bio           string      `json:"bio" gorm:"type:text"`
	Location      string      `json:"location" gorm:"type:varchar(100)"`
	Website       string      `json:"website" gorm:"type:varchar(200)"`
	Company       string      `json:"company" gorm:"type:varchar(100)"`
	JobTitle      string      `json:"job_title" gorm:"type:varchar(100)"`
	Preferences   Preferences `json:"preferences" gorm:"type:text"`
	PrivacyLevel  string      `json:"privacy_level" gorm:"type:varchar(20);default:public"`
	EmailVerified bool        `json:"email_verified"`
	PhoneVerified bool        `json:"phone_verified"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// Preferences is a free-form JSON object stored as text.
type Preferences map[string]interface{}

// Value implements driver.Valuer.
func (p Preferences) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *Preferences) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*p = Preferences{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported preferences value of type %T", value)
	}
	out := Preferences{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("decode preferences: %w", err)
		}
	}
	*p = out
	return nil
}
