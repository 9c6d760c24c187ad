package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hearth-collective/hearth/app/controllers"
	"github.com/hearth-collective/hearth/internal/pkg/config"
	"github.com/hearth-collective/hearth/internal/pkg/middleware"
	"github.com/hearth-collective/hearth/internal/pkg/session"
)

type HttpRouter struct {
	collectives config.Collectives
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Wire the record log, index, counters and billing service
	controllers.Initialize(h.collectives)

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(collectives config.Collectives) *HttpRouter {
	return &HttpRouter{collectives: collectives}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context
	// All user information is available via usercontext.GetUserContext(c)
	return c.Next()
}
