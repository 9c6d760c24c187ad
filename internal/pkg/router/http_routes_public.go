package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hearth-collective/hearth/app/controllers"
	"github.com/hearth-collective/hearth/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Public profiles and collective pages
	app.Get("/u/:name", loggedInMiddleware, controllers.HandleUserProfile)
	app.Get("/c/:name", loggedInMiddleware, controllers.HandleCollective)
	app.Get("/c/:name/members", loggedInMiddleware, controllers.HandleCollectiveMembers)

	// Content-addressed avatar blobs
	app.Get("/avatars/:key", controllers.HandleAvatar)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)
}
