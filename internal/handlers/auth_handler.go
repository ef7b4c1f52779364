package handlers

import (
	"ideaspark/internal/serializers"
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/refresh", h.HandleRefresh)
	authRoutes.Post("/verify", h.HandleVerify)
}

// HandleLogin handles user login and issues an access and a refresh token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req serializers.Login
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	pair, user, err := h.authService.Login(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    serializers.NewUser(user),
	})
}

// HandleRefresh exchanges a refresh token for a new token pair.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req serializers.TokenRefresh
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	pair, err := h.authService.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(pair)
}

// HandleVerify reports whether a token is valid.
func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	var req serializers.TokenVerify
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := h.authService.Verify(req.Token, "")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user_id":    claims.UserID,
		"token_type": claims.TokenType,
		"expires_at": claims.ExpiresAt,
	})
}
