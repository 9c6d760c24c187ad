package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/hearth-collective/hearth/internal/pkg/billing"
	"github.com/hearth-collective/hearth/internal/pkg/constants"
	"github.com/hearth-collective/hearth/internal/pkg/statistics"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
)

// Provider round-trips (plan list + live subscription, or create customer +
// subscribe) can take several seconds each.
const paymentTimeout = 20 * time.Second

// HandlePaymentView renders the payment page for one collective: the
// available plans, the user's stored billing state and the live subscription.
func HandlePaymentView(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	record, err := currentRecord(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	name := c.Params("name")
	ctx, cancel := context.WithTimeout(c.Context(), paymentTimeout)
	defer cancel()

	state, err := billingSvc.View(ctx, record, name)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownCollective) {
			return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
		}
		log.Printf("payment view failed (user=%s collective=%s): %v", record.ID, name, err)
		return renderError(c, fiber.StatusBadGateway, billing.SanitizedMessage(err))
	}

	return c.Render("payment", fiber.Map{
		"Page":       "payment",
		"State":      state,
		"IsLoggedIn": true,
		"CSRFToken":  csrfToken(c),
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandlePaymentSave applies one payment form submission: subscribe, change
// plan or card, or cancel. Provider error detail goes to the log; the user
// only ever sees a sanitized message.
func HandlePaymentSave(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	record, err := currentRecord(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	name := c.Params("name")
	paymentRoute := constants.CollectivePrefix + name + "/payment"

	params := billing.SaveParams{
		Cancel:         c.FormValue("cancel") == "true",
		PlanID:         c.FormValue("subscription_plan"),
		SourceToken:    c.FormValue("payment_token"),
		LastCardDigits: c.FormValue("last_two_digits"),
	}

	ctx, cancel := context.WithTimeout(c.Context(), paymentTimeout)
	defer cancel()

	fm := fiber.Map{
		"type": "error",
	}

	_, err = billingSvc.Save(ctx, record, name, params)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownCollective) {
			return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
		}
		log.Printf("payment save failed (user=%s collective=%s cancel=%t): %v", record.ID, name, params.Cancel, err)
		fm["message"] = billing.SanitizedMessage(err)

		return flash.WithError(c, fm).Redirect(paymentRoute)
	}

	statistics.InvalidateCollective(name)

	message := "Your subscription is set up. Thank you!"
	if params.Cancel {
		message = "Your subscription has been cancelled."
	}
	fm = fiber.Map{
		"type":    "success",
		"message": message,
	}

	return flash.WithSuccess(c, fm).Redirect(paymentRoute)
}
