package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hearth-collective/hearth/internal/pkg/statistics"
)

// HandleAPIStats returns the public counters as JSON for widgets and
// monitoring.
func HandleAPIStats(c *fiber.Ctx) error {
	stats, err := statistics.GetHomeStats(c.Context(), aggregator, appCollectives)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "statistics unavailable",
		})
	}

	collectives := make([]fiber.Map, 0, len(stats.Collectives))
	for _, cs := range stats.Collectives {
		collectives = append(collectives, fiber.Map{
			"name":    cs.Name,
			"users":   cs.Users,
			"members": cs.Members,
		})
	}

	return c.JSON(fiber.Map{
		"users":       stats.TotalUsers,
		"members":     stats.TotalMembers,
		"collectives": collectives,
	})
}
