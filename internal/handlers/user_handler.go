package handlers

import (
	"ideaspark/internal/middleware"
	"ideaspark/internal/serializers"
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users and their profiles.
type UserHandler struct {
	users    *services.UserService
	profiles *services.ProfileService
	pageSize int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, profiles *services.ProfileService, pageSize int) *UserHandler {
	return &UserHandler{
		users:    users,
		profiles: profiles,
		pageSize: pageSize,
	}
}

// RegisterRoutes registers the user routes. Everything but registration
// goes through auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", auth, h.HandleListUsers)
	userRoutes.Get("/me", auth, h.HandleGetMe)
	userRoutes.Patch("/me", auth, h.HandleUpdateMe)
	userRoutes.Post("/me/password", auth, h.HandleChangePassword)
	userRoutes.Get("/me/profile", auth, h.HandleGetProfile)
	userRoutes.Patch("/me/profile", auth, h.HandleUpdateProfile)
	userRoutes.Get("/statistics", auth, h.HandleStatistics)
	userRoutes.Get("/:id", auth, h.HandleGetUser)
}

// HandleCreateUser registers a new user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req serializers.UserCreate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.UserContext(), req.ToModel())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(serializers.NewUser(user))
}

// HandleListUsers returns a page of users.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	req, err := pageRequest(c, h.pageSize)
	if err != nil {
		return err
	}
	result, err := h.users.ListUsers(c.UserContext(), req)
	if err != nil {
		return err
	}
	page, err := newPage(c, req, result.Total, serializers.NewUsers(result.Items))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// HandleGetMe returns the authenticated user.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(serializers.NewUser(user))
}

// HandleUpdateMe applies a partial update to the authenticated user.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var req serializers.UserUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(c.UserContext(), middleware.CurrentUserID(c), req.Changes())
	if err != nil {
		return err
	}
	return c.JSON(serializers.NewUser(user))
}

// HandleChangePassword replaces the authenticated user's password.
func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req serializers.PasswordChange
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.UserContext(), middleware.CurrentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// HandleGetProfile returns the authenticated user's profile.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.profiles.GetOrCreateProfile(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// HandleUpdateProfile applies a partial update to the authenticated user's profile.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req serializers.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	profile, err := h.profiles.UpdateProfile(c.UserContext(), middleware.CurrentUserID(c), req.Changes())
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// HandleStatistics returns user counts.
func (h *UserHandler) HandleStatistics(c *fiber.Ctx) error {
	stats, err := h.users.Statistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// HandleGetUser retrieves a single user by ID.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(serializers.NewUser(user))
}
