package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/logger"
	"ideaspark/internal/models"
	"ideaspark/internal/repositories"
	"ideaspark/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	events := new(MockEventPublisher)
	userService := services.NewUserService(mockRepo, events, logger.Discard())
	ctx := context.Background()

	mockRepo.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil).Once()
	mockRepo.On("ExistsByPhone", mock.Anything, "13800138000", "").Return(false, nil).Once()
	mockRepo.On("CreateWithProfile", mock.Anything, mock.AnythingOfType("*models.User"), mock.AnythingOfType("*models.UserProfile")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = "user-1"
		}).
		Return(nil).Once()
	events.On("Publish", mock.Anything, eventNamed(services.EventUserCreated)).Return(nil).Once()

	user, err := userService.CreateUser(ctx, &models.User{
		Username: " alice ",
		Phone:    "13800138000",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", user.Nickname)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.Equal(t, models.GenderUnknown, user.Gender)
	assert.Contains(t, user.Avatar, "gravatar.com")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))
	require.NotNil(t, user.Profile)
	assert.Equal(t, models.PrivacyPublic, user.Profile.PrivacyLevel)
	mockRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestUserService_CreateUser_Rejected(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid phone", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())

		_, err := userService.CreateUser(ctx, &models.User{Username: "bob", Phone: "12345678901", Password: "secret123"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Contains(t, appErr.Fields, "phone")
		mockRepo.AssertNotCalled(t, "CreateWithProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing fields", func(t *testing.T) {
		userService := services.NewUserService(new(MockUserRepository), nil, logger.Discard())

		_, err := userService.CreateUser(ctx, &models.User{})
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Len(t, appErr.Fields, 3)
	})

	t.Run("username taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		mockRepo.On("ExistsByUsername", mock.Anything, "bob").Return(true, nil).Once()

		_, err := userService.CreateUser(ctx, &models.User{Username: "bob", Phone: "13900139000", Password: "secret123"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
		assert.Contains(t, err.Error(), "username 'bob' already taken")
		mockRepo.AssertExpectations(t)
	})

	t.Run("phone taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		mockRepo.On("ExistsByUsername", mock.Anything, "bob").Return(false, nil).Once()
		mockRepo.On("ExistsByPhone", mock.Anything, "13900139000", "").Return(true, nil).Once()

		_, err := userService.CreateUser(ctx, &models.User{Username: "bob", Phone: "13900139000", Password: "secret123"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
		assert.Contains(t, err.Error(), "139****9000")
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Phone:    "13800138000",
		Password: hashed(t, "password123"),
		Status:   models.UserStatusActive,
	}

	t.Run("by username", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		u := *user
		mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(&u, nil).Once()
		mockRepo.On("UpdateLastLogin", mock.Anything, "user-123", mock.AnythingOfType("time.Time"), "10.0.0.1").Return(nil).Once()

		got, err := userService.Authenticate(ctx, "testuser", "password123", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, "user-123", got.ID)
		require.NotNil(t, got.LastLogin)
		assert.Equal(t, "10.0.0.1", got.LastLoginIP)
		mockRepo.AssertExpectations(t)
	})

	t.Run("by phone", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		u := *user
		mockRepo.On("GetByPhone", mock.Anything, "13800138000").Return(&u, nil).Once()
		mockRepo.On("UpdateLastLogin", mock.Anything, "user-123", mock.Anything, "").Return(nil).Once()

		_, err := userService.Authenticate(ctx, "13800138000", "password123", "")
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		u := *user
		mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(&u, nil).Once()

		_, err := userService.Authenticate(ctx, "testuser", "wrongpassword", "")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		mockRepo.On("GetByUsername", mock.Anything, "ghost").
			Return(nil, apperrors.NotFound("user with username ghost not found")).Once()

		_, err := userService.Authenticate(ctx, "ghost", "password123", "")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		u := *user
		u.Status = models.UserStatusInactive
		mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(&u, nil).Once()

		_, err := userService.Authenticate(ctx, "testuser", "password123", "")
		assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
		assert.Contains(t, err.Error(), "disabled")
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	current := func() *models.User {
		return &models.User{ID: "user-1", Username: "alice", Phone: "13800138000", Gender: models.GenderUnknown}
	}

	t.Run("applies changes", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		nickname, phone, gender := "Ally", "13900139000", models.GenderFemale
		mockRepo.On("GetByID", mock.Anything, "user-1").Return(current(), nil).Once()
		mockRepo.On("ExistsByPhone", mock.Anything, "13900139000", "user-1").Return(false, nil).Once()
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Nickname == "Ally" && u.Phone == "13900139000" && u.Gender == models.GenderFemale
		})).Return(nil).Once()

		user, err := userService.UpdateUser(ctx, "user-1", services.UserChanges{Nickname: &nickname, Phone: &phone, Gender: &gender})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid phone", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		phone := "23800138000"
		mockRepo.On("GetByID", mock.Anything, "user-1").Return(current(), nil).Once()

		_, err := userService.UpdateUser(ctx, "user-1", services.UserChanges{Phone: &phone})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("phone taken by someone else", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		phone := "13900139000"
		mockRepo.On("GetByID", mock.Anything, "user-1").Return(current(), nil).Once()
		mockRepo.On("ExistsByPhone", mock.Anything, phone, "user-1").Return(true, nil).Once()

		_, err := userService.UpdateUser(ctx, "user-1", services.UserChanges{Phone: &phone})
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	})

	t.Run("unknown gender", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		userService := services.NewUserService(mockRepo, nil, logger.Discard())
		gender := "robot"
		mockRepo.On("GetByID", mock.Anything, "user-1").Return(current(), nil).Once()

		_, err := userService.UpdateUser(ctx, "user-1", services.UserChanges{Gender: &gender})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: "user-1", Password: hashed(t, "oldPass123")}

	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, nil, logger.Discard())
	mockRepo.On("GetByID", mock.Anything, "user-1").Return(user, nil)
	mockRepo.On("UpdatePassword", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil).Once()

	assert.ErrorIs(t, userService.ChangePassword(ctx, "user-1", "nope", "NewPass456"), services.ErrWrongPassword)
	assert.True(t, apperrors.Is(userService.ChangePassword(ctx, "user-1", "oldPass123", "oldPass123"), apperrors.KindValidation))
	assert.True(t, apperrors.Is(userService.ChangePassword(ctx, "user-1", "oldPass123", "aaaaaaaa"), apperrors.KindValidation))

	require.NoError(t, userService.ChangePassword(ctx, "user-1", "oldPass123", "NewPass456"))
	mockRepo.AssertExpectations(t)
	hash := mockRepo.Calls[len(mockRepo.Calls)-1].Arguments.String(2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("NewPass456")))
}

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, nil, logger.Discard())
	users := []models.User{{ID: "a"}, {ID: "b"}}
	mockRepo.On("List", mock.Anything, repositories.ListOptions{Offset: 20, Limit: 10}).Return(users, int64(22), nil).Once()

	page, err := userService.ListUsers(context.Background(), services.PageRequest{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(22), page.Total)
	assert.Len(t, page.Items, 2)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Statistics(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, nil, logger.Discard())
	mockRepo.On("Count", mock.Anything).Return(int64(10), nil).Once()
	mockRepo.On("CountByStatus", mock.Anything, models.UserStatusActive).Return(int64(8), nil).Once()
	mockRepo.On("CountCreatedSince", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		return since.Hour() == 0 && since.Minute() == 0 && time.Since(since) < 24*time.Hour
	})).Return(int64(2), nil).Once()

	stats, err := userService.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.UserStatistics{TotalUsers: 10, ActiveUsers: 8, TodayNewUsers: 2}, stats)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Statistics_IgnoresCallerCancellation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, nil, logger.Discard())

	live := mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return ctx.Err() == nil && hasDeadline
	})
	mockRepo.On("Count", live).Return(int64(3), nil).Once()
	mockRepo.On("CountByStatus", live, models.UserStatusActive).Return(int64(3), nil).Once()
	mockRepo.On("CountCreatedSince", live, mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := userService.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TodayNewUsers)
	mockRepo.AssertExpectations(t)
}
