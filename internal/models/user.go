package models

import "time"

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusDeleted  = "deleted"
)

// Genders.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "unknown"
)

// User represents an account of the platform.
type User struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username    string     `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	Phone       string     `json:"phone" gorm:"uniqueIndex;type:varchar(11);not null"`
	Email       string     `json:"email" gorm:"type:varchar(254)"`
	Password    string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Nickname    string     `json:"nickname" gorm:"type:varchar(50)"`
	Avatar      string     `json:"avatar" gorm:"type:varchar(500)"`
	Gender      string     `json:"gender" gorm:"type:varchar(10);default:unknown"`
	Status      string     `json:"status" gorm:"type:varchar(20);default:active;index:idx_users_status_created,priority:1"`
	Birthday    *time.Time `json:"birthday" gorm:"type:date"`
	LastLogin   *time.Time `json:"last_login"`
	LastLoginIP string     `json:"last_login_ip" gorm:"type:varchar(45)"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_users_status_created,priority:2"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Orders  []Order      `json:"-"`
	Profile *UserProfile `json:"-"`
}

// TableName overrides the default table name.
func (User) TableName() string {
	return "users"
}

// IsActive reports whether the account can log in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
