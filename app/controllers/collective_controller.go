package controllers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/constants"
	"github.com/hearth-collective/hearth/internal/pkg/statistics"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
)

// HandleCollective renders /c/:name with the collective's counters and the
// viewer's own membership state.
func HandleCollective(c *fiber.Ctx) error {
	name := c.Params("name")
	col, ok := appCollectives[name]
	if !ok {
		return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
	}

	users, err := aggregator.Get(c.Context(), "user."+name)
	if err != nil {
		return renderError(c, fiber.StatusInternalServerError, "Could not load the collective right now.")
	}
	members, err := aggregator.Get(c.Context(), "member."+name)
	if err != nil {
		return renderError(c, fiber.StatusInternalServerError, "Could not load the collective right now.")
	}

	userCtx := usercontext.GetUserContext(c)
	hasJoined := false
	isMember := false
	if userCtx.IsLoggedIn {
		if record, err := currentRecord(c); err == nil {
			m := record.Membership(name)
			hasJoined = m != nil
			isMember = m.HasPrivilege(models.PrivilegeMember)
		}
	}

	return c.Render("collective", fiber.Map{
		"Page":        "collective",
		"Name":        name,
		"DisplayName": col.DisplayName,
		"Users":       users,
		"Members":     members,
		"HasJoined":   hasJoined,
		"IsMember":    isMember,
		"IsLoggedIn":  userCtx.IsLoggedIn,
		"IsAdmin":     userCtx.IsAdmin,
		"CSRFToken":   csrfToken(c),
		"Flash":       flash.Get(c),
	}, "layouts/main")
}

// HandleCollectiveJoin adds the signed-in user to a collective.
func HandleCollectiveJoin(c *fiber.Ctx) error {
	name := c.Params("name")
	if !appCollectives.Has(name) {
		return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
	}

	record, err := currentRecord(c)
	if err != nil {
		return c.Redirect(constants.LoginRoute)
	}

	fm := fiber.Map{
		"type": "error",
	}

	record.Join(name)
	record.Touch()
	if err := records.Put(c.Context(), record); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect(constants.CollectivePrefix + name)
	}

	statistics.InvalidateCollective(name)

	fm = fiber.Map{
		"type":    "success",
		"message": "You joined " + name + ".",
	}

	return flash.WithSuccess(c, fm).Redirect(constants.CollectivePrefix + name)
}

// HandleCollectiveLeave removes the signed-in user from a collective.
func HandleCollectiveLeave(c *fiber.Ctx) error {
	name := c.Params("name")
	if !appCollectives.Has(name) {
		return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
	}

	record, err := currentRecord(c)
	if err != nil {
		return c.Redirect(constants.LoginRoute)
	}

	fm := fiber.Map{
		"type": "error",
	}

	m := record.Membership(name)
	if m == nil {
		fm["message"] = "You are not part of " + name + "."

		return flash.WithError(c, fm).Redirect(constants.CollectivePrefix + name)
	}
	if b := m.Billing; b.HasSubscription() {
		fm["message"] = "Cancel your subscription before leaving the collective."

		return flash.WithError(c, fm).Redirect(constants.CollectivePrefix + name + "/payment")
	}

	record.Leave(name)
	record.Touch()
	if err := records.Put(c.Context(), record); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect(constants.CollectivePrefix + name)
	}

	statistics.InvalidateCollective(name)

	fm = fiber.Map{
		"type":    "success",
		"message": "You left " + name + ".",
	}

	return flash.WithSuccess(c, fm).Redirect(constants.CollectivePrefix + name)
}

// HandleCollectiveMembers renders the public member list of a collective,
// resolved through the index (member.<name> = true).
func HandleCollectiveMembers(c *fiber.Ctx) error {
	name := c.Params("name")
	col, ok := appCollectives[name]
	if !ok {
		return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
	}

	memberAccounts, err := collectiveAccounts(c, "member."+name)
	if err != nil {
		return renderError(c, fiber.StatusInternalServerError, "Could not load the member list right now.")
	}

	return c.Render("members", fiber.Map{
		"Page":        "members",
		"Name":        name,
		"DisplayName": col.DisplayName,
		"Accounts":    memberAccounts,
		"IsLoggedIn":  usercontext.IsLoggedIn(c),
		"CSRFToken":   csrfToken(c),
		"Flash":       flash.Get(c),
	}, "layouts/main")
}

// HandleCollectiveEmails returns the email addresses of a collective's users
// or members as plain text, one per line. Admin only; used for mailings.
func HandleCollectiveEmails(c *fiber.Ctx) error {
	name := c.Params("name")
	if !appCollectives.Has(name) {
		return c.SendStatus(fiber.StatusNotFound)
	}

	field := "user." + name
	if c.Query("members") == "true" {
		field = "member." + name
	}

	list, err := collectiveAccounts(c, field)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	emails := make([]string, 0, len(list))
	for _, a := range list {
		emails = append(emails, a.Email)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(strings.Join(emails, "\n"))
}

// collectiveAccounts resolves an index flag to the matching login accounts.
func collectiveAccounts(c *fiber.Ctx, field string) ([]models.Account, error) {
	recordIDs, err := userIndex.FindUserIDs(c.Context(), field, "true")
	if err != nil {
		return nil, err
	}
	return accounts.GetByRecordIDs(recordIDs)
}
