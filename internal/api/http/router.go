package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/autopulse/crm-service/internal/api/http/handlers"
	"github.com/autopulse/crm-service/internal/auth"
	"github.com/autopulse/crm-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Leads          *handlers.LeadsHandler
	Activities     *handlers.ActivitiesHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	Pipeline       *handlers.PipelineHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	leads := api.Group("/leads")
	leads.Get("/", cfg.Leads.List)
	leads.Get("/summary", cfg.Leads.Summary)
	leads.Post("/", cfg.Leads.Create)
	leads.Post("/check-duplicate", cfg.Leads.CheckDuplicate)
	leads.Get("/:id", cfg.Leads.Get)
	leads.Put("/:id", cfg.Leads.Update)
	leads.Delete("/:id", cfg.Leads.Delete)
	leads.Post("/:id/convert", cfg.Leads.Convert)
	leads.Get("/:id/activities", cfg.Activities.List)
	leads.Post("/:id/activities", cfg.Activities.Create)

	users := api.Group("/users")
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/sales", cfg.Dashboard.Sales)
	dashboard.Get("/manager", auth.RequireRole(domain.RoleManager), cfg.Dashboard.Manager)

	pipeline := api.Group("/pipeline")
	pipeline.Get("/board", cfg.Pipeline.Board)
	pipeline.Post("/move", cfg.Pipeline.Move)
}
