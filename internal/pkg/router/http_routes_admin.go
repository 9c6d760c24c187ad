package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hearth-collective/hearth/app/controllers"
	"github.com/hearth-collective/hearth/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)

	adminGroup.Get("/collectives", controllers.HandleAdminIndex)

	// Per-collective moderation
	adminGroup.Get("/collectives/:name", controllers.HandleAdminCollective)
	adminGroup.Post("/collectives/:name/grant", controllers.HandleAdminGrantMember)
	adminGroup.Post("/collectives/:name/revoke", controllers.HandleAdminRevokeMember)

	// Plain-text email lists for mailings (?members=true for members only)
	adminGroup.Get("/collectives/:name/emails", controllers.HandleCollectiveEmails)
}
