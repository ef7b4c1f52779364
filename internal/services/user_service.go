package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/models"
	"ideaspark/internal/repositories"
	"ideaspark/pkg/validation"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

// Errors returned by UserService.
var (
	ErrInvalidCredentials = apperrors.Unauthorized("invalid credentials")
	ErrWrongPassword      = apperrors.Field("old_password", "old password is incorrect")
)

const defaultAvatarSize = 80

// UserService handles business logic related to users.
type UserService struct {
	users  repositories.UserRepository
	events EventPublisher
	log    *logrus.Logger
	now    func() time.Time
	group  singleflight.Group
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(users repositories.UserRepository, events EventPublisher, log *logrus.Logger) *UserService {
	return &UserService{
		users:  users,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// CreateUser registers a new user with a hashed password and an empty profile.
// Password holds the plain text on input and the hash on return.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Phone = strings.TrimSpace(user.Phone)

	fields := map[string]string{}
	if user.Username == "" {
		fields["username"] = "username is required"
	}
	if user.Password == "" {
		fields["password"] = "password is required"
	}
	if user.Phone == "" {
		fields["phone"] = "phone is required"
	} else if !validation.IsPhone(user.Phone) {
		fields["phone"] = "invalid phone number format"
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("invalid user data", fields)
	}

	exists, err := s.users.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("username '%s' already taken", user.Username)
	}
	exists, err = s.users.ExistsByPhone(ctx, user.Phone, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("phone %s already registered", validation.MaskPhone(user.Phone))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)
	if user.Nickname == "" {
		user.Nickname = user.Username
	}
	if user.Avatar == "" {
		user.Avatar = validation.AvatarURL(user.Username, defaultAvatarSize)
	}
	if user.Gender == "" {
		user.Gender = models.GenderUnknown
	}
	user.Status = models.UserStatusActive

	profile := &models.UserProfile{
		PrivacyLevel: models.PrivacyPublic,
		Preferences:  models.Preferences{},
	}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"phone":    validation.MaskPhone(user.Phone),
	}).Info("user created")

	publish(ctx, s.events, s.log, Event{
		Name:       EventUserCreated,
		ActorID:    user.ID,
		ObjectType: "user",
		ObjectID:   user.ID,
		Payload:    map[string]interface{}{"username": user.Username},
	})
	return user, nil
}

// Authenticate checks credentials, identifier being a username or a phone
// number, and records the login.
func (s *UserService) Authenticate(ctx context.Context, identifier, password, ip string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if validation.IsPhone(identifier) {
		user, err = s.users.GetByPhone(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.Unauthorized("account is disabled")
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now, ip); err != nil {
		// A failed bookkeeping write does not block the login.
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		user.LastLogin = &now
		user.LastLoginIP = ip
	}
	return user, nil
}

// GetUserByID retrieves a single user by ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns a page of users, newest first.
func (s *UserService) ListUsers(ctx context.Context, page PageRequest) (PageResult[models.User], error) {
	users, total, err := s.users.List(ctx, page.options())
	if err != nil {
		return PageResult[models.User]{}, err
	}
	return PageResult[models.User]{Items: users, Total: total}, nil
}

// UserChanges lists the fields a user may change on their account. Nil
// fields are left untouched.
type UserChanges struct {
	Nickname *string
	Phone    *string
	Email    *string
	Avatar   *string
	Gender   *string
	Birthday *time.Time
}

// UpdateUser applies changes to the user with the given ID.
func (s *UserService) UpdateUser(ctx context.Context, id string, changes UserChanges) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Phone != nil {
		phone := strings.TrimSpace(*changes.Phone)
		if !validation.IsPhone(phone) {
			return nil, apperrors.Field("phone", "invalid phone number format")
		}
		if phone != user.Phone {
			exists, err := s.users.ExistsByPhone(ctx, phone, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, apperrors.Conflict("phone %s already registered", validation.MaskPhone(phone))
			}
		}
		user.Phone = phone
	}
	if changes.Gender != nil {
		switch *changes.Gender {
		case models.GenderMale, models.GenderFemale, models.GenderUnknown:
			user.Gender = *changes.Gender
		default:
			return nil, apperrors.Field("gender", "gender must be male, female or unknown")
		}
	}
	if changes.Nickname != nil {
		user.Nickname = *changes.Nickname
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}
	if changes.Avatar != nil {
		user.Avatar = *changes.Avatar
	}
	if changes.Birthday != nil {
		user.Birthday = changes.Birthday
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithField("user_id", user.ID).Info("user updated")
	return user, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}
	if oldPassword == newPassword {
		return apperrors.Field("new_password", "new password must differ from the old one")
	}
	if strength := validation.CheckPassword(newPassword); !strength.Valid {
		return apperrors.Field("new_password", strength.Message)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("password changed")
	return nil
}

// UserStatistics summarizes the user base.
type UserStatistics struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	TodayNewUsers int64 `json:"today_new_users"`
}

const statisticsTimeout = 10 * time.Second

// Statistics counts users. Concurrent callers share one set of queries.
func (s *UserService) Statistics(ctx context.Context) (UserStatistics, error) {
	v, err, _ := s.group.Do("statistics", func() (interface{}, error) {
		// Shared by every waiting caller; detached from the first caller's cancellation.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statisticsTimeout)
		defer cancel()

		var stats UserStatistics
		var err error
		if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if stats.ActiveUsers, err = s.users.CountByStatus(ctx, models.UserStatusActive); err != nil {
			return nil, fmt.Errorf("failed to count active users: %w", err)
		}
		now := s.now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if stats.TodayNewUsers, err = s.users.CountCreatedSince(ctx, midnight); err != nil {
			return nil, fmt.Errorf("failed to count new users: %w", err)
		}
		return stats, nil
	})
	if err != nil {
		return UserStatistics{}, err
	}
	return v.(UserStatistics), nil
}
