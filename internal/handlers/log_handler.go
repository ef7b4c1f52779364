package handlers

import (
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LogHandler exposes the audit log.
type LogHandler struct {
	service  *services.LogService
	pageSize int
}

func NewLogHandler(service *services.LogService, pageSize int) *LogHandler {
	return &LogHandler{service: service, pageSize: pageSize}
}

func (h *LogHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/", auth, h.HandleListLogs)
}

// HandleListLogs returns a page of audit log entries.
func (h *LogHandler) HandleListLogs(c *fiber.Ctx) error {
	req, err := pageRequest(c, h.pageSize)
	if err != nil {
		return err
	}
	result, err := h.service.ListLogs(c.UserContext(), req)
	if err != nil {
		return err
	}
	page, err := newPage(c, req, result.Total, result.Items)
	if err != nil {
		return err
	}
	return c.JSON(page)
}
