// Package server assembles the fiber application.
package server

import (
	"context"
	"net"
	"slices"
	"strings"
	"time"

	"ideaspark/internal/config"
	"ideaspark/internal/database"
	"ideaspark/internal/handlers"
	"ideaspark/internal/metrics"
	"ideaspark/internal/middleware"
	"ideaspark/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config   *config.Config
	Log      *logrus.Logger
	DB       *gorm.DB
	Users    *services.UserService
	Profiles *services.ProfileService
	Auth     *services.AuthService
	Orders   *services.OrderService
	Logs     *services.LogService
}

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(d Deps) (*fiber.App, error) {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:               "ideaspark",
		ErrorHandler:          handlers.ErrorHandler(d.Log),
		DisableStartupMessage: !cfg.Debug,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Debug}))
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: d.Log.Writer(),
		Format: "${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	if h := corsHandler(cfg.CORS); h != nil {
		app.Use(h)
	}
	app.Use(allowedHosts(cfg.AllowedHosts))
	app.Use(metrics.Middleware())

	if cfg.Throttle.Enabled {
		anon, err := middleware.ParseRate(cfg.Throttle.Anon)
		if err != nil {
			return nil, err
		}
		user, err := middleware.ParseRate(cfg.Throttle.User)
		if err != nil {
			return nil, err
		}
		app.Use(middleware.Throttle(middleware.ThrottleConfig{
			Anon:     anon,
			User:     user,
			Identify: middleware.OptionalUserID(d.Auth),
		}))
	}

	auth := middleware.AuthRequired(d.Auth)

	// --- API Routes ---
	api := app.Group("/api")

	userRoutes := api.Group("/user")
	handlers.NewAuthHandler(d.Auth).RegisterRoutes(userRoutes)
	handlers.NewUserHandler(d.Users, d.Profiles, cfg.PageSize).RegisterRoutes(userRoutes, auth)
	handlers.NewOrderHandler(d.Orders, cfg.PageSize).RegisterRoutes(api.Group("/order"), auth)
	handlers.NewLogHandler(d.Logs, cfg.PageSize).RegisterRoutes(api.Group("/log"), auth)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		dbStatus := "connected"
		if d.DB != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := database.Ping(ctx, d.DB); err != nil {
				d.Log.WithError(err).Warn("health check: database unreachable")
				status, code, dbStatus = "unhealthy", fiber.StatusServiceUnavailable, "unreachable"
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	return app, nil
}

// corsHandler returns nil when no origin is allowed, so responses carry no
// CORS headers at all. A "*" entry in the list allows every origin.
func corsHandler(c config.CORS) fiber.Handler {
	if c.AllowAll || slices.Contains(c.AllowedOrigins, "*") {
		// Credentials cannot be combined with a wildcard origin.
		return cors.New(cors.Config{AllowOrigins: "*"})
	}
	if len(c.AllowedOrigins) == 0 {
		return nil
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(c.AllowedOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	})
}

// allowedHosts rejects requests whose Host is not listed. An empty list or
// "*" allows every host.
func allowedHosts(hosts []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		if h == "*" {
			allowed = nil
			break
		}
		allowed[strings.ToLower(h)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if len(allowed) == 0 {
			return c.Next()
		}
		host := c.Hostname()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if _, ok := allowed[strings.ToLower(host)]; !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid host header")
		}
		return c.Next()
	}
}
