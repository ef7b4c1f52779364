package scaffold

import "text/template"

var modelTemplate = template.Must(template.New("model").Parse(`package models

import "time"

type {{.Type}} struct {
	ID        string    ` + "`" + `json:"id" gorm:"primaryKey;type:varchar(36)"` + "`" + `
	Name      string    ` + "`" + `json:"name" gorm:"type:varchar(100);not null"` + "`" + `
	CreatedAt time.Time ` + "`" + `json:"created_at"` + "`" + `
	UpdatedAt time.Time ` + "`" + `json:"updated_at"` + "`" + `
}

func ({{.Type}}) TableName() string {
	return "{{.Table}}"
}
`))

var repositoryTemplate = template.Must(template.New("repository").Parse(`package repositories

import (
	"context"
	"fmt"

	"{{.Module}}/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// {{.Type}}Repository defines the interface for {{.Snake}} data access.
type {{.Type}}Repository interface {
	Create(ctx context.Context, m *models.{{.Type}}) error
	List(ctx context.Context, opts ListOptions) ([]models.{{.Type}}, int64, error)
}

type GORM{{.Type}}Repository struct {
	db *gorm.DB
}

func NewGORM{{.Type}}Repository(db *gorm.DB) *GORM{{.Type}}Repository {
	return &GORM{{.Type}}Repository{db: db}
}

func (r *GORM{{.Type}}Repository) Create(ctx context.Context, m *models.{{.Type}}) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create {{.Snake}}: %w", err)
	}
	return nil
}

func (r *GORM{{.Type}}Repository) List(ctx context.Context, opts ListOptions) ([]models.{{.Type}}, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.{{.Type}}{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count {{.Table}}: %w", err)
	}
	items := make([]models.{{.Type}}, 0, opts.Limit)
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(opts.Offset).Limit(opts.Limit).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list {{.Table}}: %w", err)
	}
	return items, total, nil
}
`))

var serializerTemplate = template.Must(template.New("serializer").Parse(`package serializers

import "{{.Module}}/internal/models"

type {{.Type}}Create struct {
	Name string ` + "`" + `json:"name" validate:"required,max=100"` + "`" + `
}

func (s *{{.Type}}Create) Validate() error {
	return Validate(s)
}

func (s *{{.Type}}Create) ToModel() *models.{{.Type}} {
	return &models.{{.Type}}{Name: s.Name}
}
`))

var serviceTemplate = template.Must(template.New("service").Parse(`package services

import (
	"context"

	"{{.Module}}/internal/models"
	"{{.Module}}/internal/repositories"

	"github.com/sirupsen/logrus"
)

// {{.Type}}Service handles business logic related to {{.Table}}.
type {{.Type}}Service struct {
	repo repositories.{{.Type}}Repository
	log  *logrus.Logger
}

func New{{.Type}}Service(repo repositories.{{.Type}}Repository, log *logrus.Logger) *{{.Type}}Service {
	return &{{.Type}}Service{repo: repo, log: log}
}

func (s *{{.Type}}Service) Create{{.Type}}(ctx context.Context, m *models.{{.Type}}) (*models.{{.Type}}, error) {
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.log.WithField("id", m.ID).Info("{{.Snake}} created")
	return m, nil
}

func (s *{{.Type}}Service) List{{.Plural}}(ctx context.Context, page PageRequest) (PageResult[models.{{.Type}}], error) {
	items, total, err := s.repo.List(ctx, page.options())
	if err != nil {
		return PageResult[models.{{.Type}}]{}, err
	}
	return PageResult[models.{{.Type}}]{Items: items, Total: total}, nil
}
`))

var handlerTemplate = template.Must(template.New("handler").Parse(`package handlers

import (
	"{{.Module}}/internal/serializers"
	"{{.Module}}/internal/services"

	"github.com/gofiber/fiber/v2"
)

// {{.Type}}Handler handles HTTP requests for {{.Table}}.
type {{.Type}}Handler struct {
	service  *services.{{.Type}}Service
	pageSize int
}

func New{{.Type}}Handler(service *services.{{.Type}}Service, pageSize int) *{{.Type}}Handler {
	return &{{.Type}}Handler{service: service, pageSize: pageSize}
}

// RegisterRoutes mounts the handler under /{{.Route}}.
func (h *{{.Type}}Handler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	routes := router.Group("/{{.Route}}", auth)
	routes.Get("/", h.HandleList)
	routes.Post("/", h.HandleCreate)
}

func (h *{{.Type}}Handler) HandleList(c *fiber.Ctx) error {
	req, err := pageRequest(c, h.pageSize)
	if err != nil {
		return err
	}
	result, err := h.service.List{{.Plural}}(c.UserContext(), req)
	if err != nil {
		return err
	}
	page, err := newPage(c, req, result.Total, result.Items)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *{{.Type}}Handler) HandleCreate(c *fiber.Ctx) error {
	var req serializers.{{.Type}}Create
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	created, err := h.service.Create{{.Type}}(c.UserContext(), req.ToModel())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
`))
