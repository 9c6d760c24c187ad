package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/hearth-collective/hearth/app/controllers"
	"github.com/hearth-collective/hearth/internal/pkg/env"
	"github.com/hearth-collective/hearth/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleStart)

	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/forgot-password", loggedInMiddleware, controllers.HandleForgotPassword)
	group.Post("/forgot-password", loggedInMiddleware, controllers.HandleForgotPassword)
	group.Get("/reset-password", loggedInMiddleware, controllers.HandleResetPassword)
	group.Post("/reset-password", loggedInMiddleware, controllers.HandleResetPassword)

	group.Get("/profile/edit", middleware.RequireAuth, controllers.HandleProfileEdit)
	group.Post("/profile/edit", middleware.RequireAuth, controllers.HandleProfileEdit)
	group.Post("/profile/avatar", middleware.RequireAuth, controllers.HandleAvatarUpload)

	group.Post("/c/:name/join", middleware.RequireAuth, controllers.HandleCollectiveJoin)
	group.Post("/c/:name/leave", middleware.RequireAuth, controllers.HandleCollectiveLeave)

	// Payment pages answer 401 themselves instead of redirecting so that the
	// embedded checkout script can react to an expired session.
	group.Get("/c/:name/payment", loggedInMiddleware, controllers.HandlePaymentView)
	group.Post("/c/:name/payment", loggedInMiddleware, controllers.HandlePaymentSave)
}
