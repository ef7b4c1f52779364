package serializers

import (
	"strings"
	"time"

	"ideaspark/internal/models"
	"ideaspark/internal/services"
)

const dateLayout = "2006-01-02"

// UserCreate is the registration payload.
type UserCreate struct {
	Username string `json:"username" validate:"required,username"`
	Phone    string `json:"phone" validate:"required,mobile"`
	Password string `json:"password" validate:"required,min=6,max=32"`
	Email    string `json:"email" validate:"omitempty,email"`
	Nickname string `json:"nickname" validate:"omitempty,max=50"`
}

func (s *UserCreate) Validate() error {
	s.Username = strings.TrimSpace(s.Username)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.TrimSpace(s.Email)
	return Validate(s)
}

// ToModel returns the user to create; Password is still plain text.
func (s *UserCreate) ToModel() *models.User {
	return &models.User{
		Username: s.Username,
		Phone:    s.Phone,
		Password: s.Password,
		Email:    s.Email,
		Nickname: s.Nickname,
	}
}

// UserUpdate is a partial update of the current user. Absent fields stay unchanged.
type UserUpdate struct {
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
	Phone    *string `json:"phone" validate:"omitempty,mobile"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Avatar   *string `json:"avatar" validate:"omitempty,url,max=500"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=male female unknown"`
	Birthday *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

func (s *UserUpdate) Validate() error {
	return Validate(s)
}

// Changes converts the payload for UserService.UpdateUser. Call Validate first.
func (s *UserUpdate) Changes() services.UserChanges {
	changes := services.UserChanges{
		Nickname: s.Nickname,
		Phone:    s.Phone,
		Email:    s.Email,
		Avatar:   s.Avatar,
		Gender:   s.Gender,
	}
	if s.Birthday != nil {
		if day, err := time.Parse(dateLayout, *s.Birthday); err == nil {
			changes.Birthday = &day
		}
	}
	return changes
}

// PasswordChange is the payload of the change password endpoint.
type PasswordChange struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=32"`
}

func (s *PasswordChange) Validate() error {
	return Validate(s)
}

// User is the public representation of a user.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Nickname  string     `json:"nickname"`
	Avatar    string     `json:"avatar"`
	Gender    string     `json:"gender"`
	Status    string     `json:"status"`
	Birthday  *string    `json:"birthday"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewUser(u *models.User) User {
	out := User{
		ID:        u.ID,
		Username:  u.Username,
		Phone:     u.Phone,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		Gender:    u.Gender,
		Status:    u.Status,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Birthday != nil {
		day := u.Birthday.Format(dateLayout)
		out.Birthday = &day
	}
	return out
}

func NewUsers(users []models.User) []User {
	out := make([]User, 0, len(users))
	for i := range users {
		out = append(out, NewUser(&users[i]))
	}
	return out
}
