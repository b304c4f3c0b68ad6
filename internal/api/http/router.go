package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/kanban-board/internal/api/http/handlers"
	"github.com/spec-kit/kanban-board/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Board   *handlers.BoardHandler
	Metrics *handlers.MetricsHandler
	// AuthMiddleware protects /api and /metrics when set.
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	var guards []fiber.Handler
	if cfg.AuthMiddleware != nil {
		guards = append(guards, cfg.AuthMiddleware.Handle)
	}

	if cfg.Metrics != nil {
		app.Get("/metrics", append(guards, cfg.Metrics.Snapshot)...)
	}

	board := app.Group("/api/board", guards...)
	board.Get("/", cfg.Board.GetBoard)
	board.Post("/reload", cfg.Board.Reload)
	board.Put("/preferences", cfg.Board.UpdatePreferences)
	board.Post("/edit-mode", cfg.Board.ToggleEditMode)
	board.Post("/modal", cfg.Board.OpenCreateModal)
	board.Post("/modal/:id", cfg.Board.OpenEditModal)
	board.Delete("/modal", cfg.Board.CloseModal)
	board.Post("/cards", cfg.Board.SaveCard)
	board.Delete("/cards/:id", cfg.Board.DeleteCard)
	board.Delete("/error", cfg.Board.DismissError)
	board.Get("/activity", cfg.Board.Activity)
}
