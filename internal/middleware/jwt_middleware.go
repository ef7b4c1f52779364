package middleware

import (
	"strings"

	"ideaspark/internal/apperrors"
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// AuthRequired is a Fiber middleware to check for a valid access token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := authService.Verify(tokenString, services.TokenTypeAccess)
		if err != nil {
			return err
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)

		return c.Next()
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.Unauthorized("Authentication credentials were not provided")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer")) || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.Unauthorized("Authorization header format must be 'Bearer <token>'")
	}
	return strings.TrimSpace(parts[1]), nil
}

// OptionalUserID returns the user ID of a valid access token, if any, without
// rejecting the request.
func OptionalUserID(authService *services.AuthService) func(c *fiber.Ctx) (string, bool) {
	return func(c *fiber.Ctx) (string, bool) {
		if id, ok := c.Locals(LocalUserID).(string); ok && id != "" {
			return id, true
		}
		tokenString, err := bearerToken(c)
		if err != nil {
			return "", false
		}
		claims, err := authService.Verify(tokenString, services.TokenTypeAccess)
		if err != nil {
			return "", false
		}
		return claims.UserID, true
	}
}

// CurrentUserID returns the user ID stored by AuthRequired.
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
