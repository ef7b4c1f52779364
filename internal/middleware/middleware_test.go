package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ideaspark/internal/handlers"
	"ideaspark/internal/logger"
	"ideaspark/internal/middleware"
	"ideaspark/internal/models"
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() *services.AuthService {
	log := logger.Discard()
	return services.NewAuthService(services.NewUserService(nil, nil, log), "test_jwt_secret", time.Hour, 24*time.Hour, log)
}

func TestParseRate(t *testing.T) {
	r, err := middleware.ParseRate("100/day")
	require.NoError(t, err)
	assert.Equal(t, 100, r.Count)
	assert.Equal(t, 24*time.Hour, r.Period)

	r, err = middleware.ParseRate("5/m")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, r.Period)
	assert.InDelta(t, 5.0/60.0, float64(r.Limit()), 1e-9)

	for _, bad := range []string{"", "100", "x/day", "0/day", "10/week"} {
		_, err := middleware.ParseRate(bad)
		assert.Error(t, err, bad)
	}
}

func TestThrottle(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Throttle(middleware.ThrottleConfig{
		Anon: middleware.Rate{Count: 2, Period: time.Hour},
		User: middleware.Rate{Count: 3, Period: time.Hour},
		Identify: func(c *fiber.Ctx) (string, bool) {
			id := c.Get("X-User")
			return id, id != ""
		},
	}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	get := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get(""))
	assert.Equal(t, http.StatusOK, get(""))
	assert.Equal(t, http.StatusTooManyRequests, get(""))

	// Users have their own bucket.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get("u1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, get("u1"))
	assert.Equal(t, http.StatusOK, get("u2"))
}

func TestAuthRequired(t *testing.T) {
	authService := newAuthService()
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(logger.Discard())})
	app.Get("/me", middleware.AuthRequired(authService), func(c *fiber.Ctx) error {
		return c.SendString(middleware.CurrentUserID(c))
	})

	pair, err := authService.IssueTokens(&models.User{ID: "user-123", Username: "testuser"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + pair.Access, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.Refresh, http.StatusUnauthorized},
		{"access token", "Bearer " + pair.Access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestOptionalUserID(t *testing.T) {
	authService := newAuthService()
	identify := middleware.OptionalUserID(authService)
	pair, err := authService.IssueTokens(&models.User{ID: "user-123"})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		id, ok := identify(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user-123", string(body))
}
