package controllers

import (
	"fmt"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/blobstore"
	"github.com/hearth-collective/hearth/internal/pkg/constants"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
	"github.com/hearth-collective/hearth/internal/pkg/utils"
)

const maxAvatarBytes = 5 * 1024 * 1024

// HandleUserProfile renders /u/:name. Private profiles are only visible to
// their owner and admins.
func HandleUserProfile(c *fiber.Ctx) error {
	account, err := accounts.GetByName(c.Params("name"))
	if err != nil {
		return renderError(c, fiber.StatusNotFound, "No such user.")
	}

	record, err := records.Get(c.Context(), account.RecordID)
	if err != nil {
		return renderError(c, fiber.StatusNotFound, "No such user.")
	}

	userCtx := usercontext.GetUserContext(c)
	isOwner := userCtx.IsLoggedIn && userCtx.RecordID == record.ID
	if !record.IsPublic() && !isOwner && !userCtx.IsAdmin {
		return renderError(c, fiber.StatusNotFound, "No such user.")
	}

	memberships := make([]fiber.Map, 0, len(record.Collectives))
	for _, name := range appCollectives.Names() {
		m := record.Membership(name)
		if m == nil {
			continue
		}
		memberships = append(memberships, fiber.Map{
			"Name":        name,
			"DisplayName": appCollectives[name].DisplayName,
			"IsMember":    m.HasPrivilege(models.PrivilegeMember),
		})
	}

	avatarURL := utils.GravatarURL(record.Email, 256)
	if record.AvatarKey != "" {
		avatarURL = "/avatars/" + record.AvatarKey
	}

	return c.Render("profile", fiber.Map{
		"Page":        "profile",
		"Record":      record,
		"AvatarURL":   avatarURL,
		"Memberships": memberships,
		"IsOwner":     isOwner,
		"IsLoggedIn":  userCtx.IsLoggedIn,
		"CSRFToken":   csrfToken(c),
		"Flash":       flash.Get(c),
	}, "layouts/main")
}

// HandleProfileEdit renders the edit form and applies profile changes by
// appending a new record revision.
func HandleProfileEdit(c *fiber.Ctx) error {
	record, err := currentRecord(c)
	if err != nil {
		return c.Redirect(constants.LoginRoute)
	}

	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		record.Bio = c.FormValue("bio")
		visibility := c.FormValue("visibility")
		if visibility == models.VisibilityPublic || visibility == models.VisibilityPrivate {
			record.Visibility = visibility
		}

		if err := record.Validate(); err != nil {
			fm["message"] = "Please check your input and try again"

			return flash.WithError(c, fm).Redirect("/profile/edit")
		}

		record.Touch()
		if err := records.Put(c.Context(), record); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/profile/edit")
		}

		fm = fiber.Map{
			"type":    "success",
			"message": "Profile saved.",
		}

		return flash.WithSuccess(c, fm).Redirect(constants.ProfilePrefix + record.Name)
	}

	return c.Render("profile_edit", fiber.Map{
		"Page":      "profile_edit",
		"Record":    record,
		"CSRFToken": csrfToken(c),
		"Flash":     flash.Get(c),
	}, "layouts/main")
}

// HandleAvatarUpload stores a normalized avatar in the blob store and records
// its content key on the user record.
func HandleAvatarUpload(c *fiber.Ctx) error {
	record, err := currentRecord(c)
	if err != nil {
		return c.Redirect(constants.LoginRoute)
	}

	fm := fiber.Map{
		"type": "error",
	}

	if blobs == nil {
		fm["message"] = "Avatar uploads are not available right now."

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		fm["message"] = "Please choose an image to upload."

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}
	if fileHeader.Size > maxAvatarBytes {
		fm["message"] = "The image is too large (5 MB max)."

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}

	normalized, err := blobstore.NormalizeAvatar(data)
	if err != nil {
		fm["message"] = "That file does not look like an image."

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}

	key, err := blobs.Put(c.Context(), normalized, "image/jpeg")
	if err != nil {
		log.Printf("avatar upload failed: %v", err)
		fm["message"] = "Uploading the avatar failed. Please try again."

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}

	record.AvatarKey = key
	record.Touch()
	if err := records.Put(c.Context(), record); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/profile/edit")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Avatar updated.",
	}

	return flash.WithSuccess(c, fm).Redirect(constants.ProfilePrefix + record.Name)
}

// HandleAvatar serves an avatar blob by its content key. Content-addressed
// keys never change, so the response is cacheable forever.
func HandleAvatar(c *fiber.Ctx) error {
	if blobs == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	data, contentType, err := blobs.Get(c.Context(), c.Params("key"))
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(data)
}
