package handlers

import (
	"ideaspark/internal/middleware"
	"ideaspark/internal/serializers"
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	pageSize int
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, pageSize int) *OrderHandler {
	return &OrderHandler{
		service:  service,
		pageSize: pageSize,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/pay", h.HandlePayOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// HandleGetOrders returns a page of the authenticated user's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	req, err := pageRequest(c, h.pageSize)
	if err != nil {
		return err
	}
	result, err := h.service.ListOrders(c.UserContext(), middleware.CurrentUserID(c), req)
	if err != nil {
		return err
	}
	page, err := newPage(c, req, result.Total, result.Items)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req serializers.OrderCreate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.UserContext(), req.ToModel(middleware.CurrentUserID(c)))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandlePayOrder pays a pending order.
func (h *OrderHandler) HandlePayOrder(c *fiber.Ctx) error {
	order, err := h.service.Pay(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels a pending order.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.Cancel(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}
