package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-portal/internal/api/http/handlers"
	"github.com/spec-kit/dispute-portal/internal/auth"
	"github.com/spec-kit/dispute-portal/internal/sheetapi"
)

// SheetEndpointPath is where the row-store endpoint is mounted.
const SheetEndpointPath = "/exec"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Disputes       *handlers.DisputesHandler
	Dashboard      *handlers.DashboardHandler
	Attachments    *handlers.AttachmentsHandler
	Sheet          *sheetapi.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	if cfg.Sheet != nil {
		cfg.Sheet.Register(app, SheetEndpointPath)
	}

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/me", cfg.Auth.Me)

	protected.Get("/disputes", cfg.Disputes.List)
	protected.Get("/disputes/export", cfg.Disputes.Export)
	protected.Post("/disputes", cfg.Disputes.Create)
	protected.Patch("/disputes/:id/status", auth.RequireAdmin(), cfg.Disputes.UpdateStatus)

	protected.Get("/dashboard", cfg.Dashboard.Get)

	if cfg.Attachments != nil {
		protected.Get("/attachments", cfg.Attachments.List)
		protected.Post("/attachments/presign", cfg.Attachments.Presign)
	}
}
