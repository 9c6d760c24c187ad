package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/hearth-collective/hearth/internal/pkg/statistics"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
)

// HandleStart renders the landing page with the aggregate user and member
// counters per collective.
func HandleStart(c *fiber.Ctx) error {
	stats, err := statistics.GetHomeStats(c.Context(), aggregator, appCollectives)
	if err != nil {
		log.Printf("statistics unavailable: %v", err)
		stats = &statistics.HomeStats{}
	}

	userCtx := usercontext.GetUserContext(c)

	return c.Render("home", fiber.Map{
		"Page":       "home",
		"IsLoggedIn": userCtx.IsLoggedIn,
		"Username":   userCtx.Username,
		"IsAdmin":    userCtx.IsAdmin,
		"Stats":      stats,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}
