package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/statistics"
)

// HandleAdminIndex lists the configured collectives for moderation.
func HandleAdminIndex(c *fiber.Ctx) error {
	items := make([]fiber.Map, 0, len(appCollectives))
	for _, name := range appCollectives.Names() {
		items = append(items, fiber.Map{
			"Name":        name,
			"DisplayName": appCollectives[name].DisplayName,
		})
	}

	return c.Render("admin_index", fiber.Map{
		"Page":        "admin_index",
		"Collectives": items,
		"IsLoggedIn":  true,
		"IsAdmin":     true,
		"Flash":       flash.Get(c),
	}, "layouts/main")
}

// HandleAdminCollective lists every user of a collective with their
// privileges so an admin can moderate memberships.
func HandleAdminCollective(c *fiber.Ctx) error {
	name := c.Params("name")
	col, ok := appCollectives[name]
	if !ok {
		return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
	}

	list, err := collectiveAccounts(c, "user."+name)
	if err != nil {
		return renderError(c, fiber.StatusInternalServerError, "Could not load the user list right now.")
	}

	rows := make([]fiber.Map, 0, len(list))
	for _, account := range list {
		record, err := records.Get(c.Context(), account.RecordID)
		if err != nil {
			continue
		}
		m := record.Membership(name)
		rows = append(rows, fiber.Map{
			"Account":    account,
			"IsMember":   m.HasPrivilege(models.PrivilegeMember),
			"Privileges": privilegeList(m),
		})
	}

	return c.Render("admin_collective", fiber.Map{
		"Page":        "admin_collective",
		"Name":        name,
		"DisplayName": col.DisplayName,
		"Rows":        rows,
		"IsLoggedIn":  true,
		"IsAdmin":     true,
		"CSRFToken":   csrfToken(c),
		"Flash":       flash.Get(c),
	}, "layouts/main")
}

// HandleAdminGrantMember grants the member privilege to one user of a
// collective.
func HandleAdminGrantMember(c *fiber.Ctx) error {
	return adminSetMember(c, true)
}

// HandleAdminRevokeMember revokes the member privilege from one user of a
// collective.
func HandleAdminRevokeMember(c *fiber.Ctx) error {
	return adminSetMember(c, false)
}

func adminSetMember(c *fiber.Ctx, grant bool) error {
	name := c.Params("name")
	adminRoute := "/admin/collectives/" + name

	fm := fiber.Map{
		"type": "error",
	}

	if !appCollectives.Has(name) {
		return renderError(c, fiber.StatusNotFound, "No collective by that name exists.")
	}

	account, err := accounts.GetByName(c.FormValue("username"))
	if err != nil {
		fm["message"] = "No such user."

		return flash.WithError(c, fm).Redirect(adminRoute)
	}

	record, err := records.Get(c.Context(), account.RecordID)
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect(adminRoute)
	}

	m := record.Membership(name)
	if m == nil {
		fm["message"] = account.Name + " has not joined " + name + "."

		return flash.WithError(c, fm).Redirect(adminRoute)
	}

	if grant {
		m.GrantPrivilege(models.PrivilegeMember)
	} else {
		m.RevokePrivilege(models.PrivilegeMember)
	}

	record.Touch()
	if err := records.Put(c.Context(), record); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect(adminRoute)
	}

	statistics.InvalidateCollective(name)

	verb := "granted to"
	if !grant {
		verb = "revoked from"
	}
	fm = fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Member privilege %s %s.", verb, account.Name),
	}

	return flash.WithSuccess(c, fm).Redirect(adminRoute)
}

func privilegeList(m *models.CollectiveMembership) []string {
	if m == nil {
		return nil
	}
	return m.Privileges
}
