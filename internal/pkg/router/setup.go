package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hearth-collective/hearth/internal/pkg/config"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, collectives config.Collectives) {
	// Install HttpRouter first to initialize the session store, the shared
	// controller wiring and the global UserContext middleware. The API routes
	// depend on that wiring.
	setup(app, NewHttpRouter(collectives), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
