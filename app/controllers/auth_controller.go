package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/constants"
	"github.com/hearth-collective/hearth/internal/pkg/mail"
	"github.com/hearth-collective/hearth/internal/pkg/session"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
)

// HandleAuthLogin renders the login form and processes submissions.
func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		// notice: in production you should not inform the user
		// with detailed messages about login failures
		account, err := accounts.GetByEmail(c.FormValue("email"))
		if err != nil {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect(constants.LoginRoute)
		}

		if !account.CheckPassword(c.FormValue("password")) {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect(constants.LoginRoute)
		}

		if err := startSession(c, account); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect(constants.LoginRoute)
		}

		now := time.Now()
		account.LastLoginAt = &now
		_ = accounts.Update(account)

		fm = fiber.Map{
			"type":    "success",
			"message": "Welcome back!",
		}

		return flash.WithSuccess(c, fm).Redirect(constants.PublicRoute)
	}

	return c.Render("login", fiber.Map{
		"Page":      "login",
		"CSRFToken": csrfToken(c),
		"Flash":     flash.Get(c),
	}, "layouts/main")
}

// HandleAuthRegister renders the registration form and creates the login
// account plus the user's first record-log revision on submit.
func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		username := c.FormValue("username")
		email := c.FormValue("email")
		password := c.FormValue("password")

		if existing, err := accounts.GetByEmail(email); err == nil && existing != nil {
			fm["message"] = "An account with this email already exists"

			return flash.WithError(c, fm).Redirect(constants.RegisterRoute)
		}
		if existing, err := accounts.GetByName(username); err == nil && existing != nil {
			fm["message"] = "That username is taken"

			return flash.WithError(c, fm).Redirect(constants.RegisterRoute)
		}

		// The record document is the canonical profile; append it first so
		// the account row never points at a missing record.
		record := models.NewUserRecord(username, email)
		if err := record.Validate(); err != nil {
			fm["message"] = "Please check your input and try again"

			return flash.WithError(c, fm).Redirect(constants.RegisterRoute)
		}
		if err := records.Put(c.Context(), record); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect(constants.RegisterRoute)
		}

		account, err := models.CreateAccount(record.ID, username, email, password)
		if err != nil {
			fm["message"] = "Please check your input and try again"

			return flash.WithError(c, fm).Redirect(constants.RegisterRoute)
		}
		if err := accounts.Create(account); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect(constants.RegisterRoute)
		}

		if err := startSession(c, account); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect(constants.LoginRoute)
		}

		fm = fiber.Map{
			"type":    "success",
			"message": "Account created. Welcome!",
		}

		return flash.WithSuccess(c, fm).Redirect(constants.PublicRoute)
	}

	return c.Render("register", fiber.Map{
		"Page":      "register",
		"CSRFToken": csrfToken(c),
		"Flash":     flash.Get(c),
	}, "layouts/main")
}

// HandleAuthLogout destroys the session.
func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect(constants.LoginRoute)
	}

	if err := sess.Destroy(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect(constants.LoginRoute)
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Bye bye! See you soon.",
	}

	return flash.WithSuccess(c, fm).Redirect(constants.LoginRoute)
}

// HandleForgotPassword sends a password reset token by email. The response is
// identical whether or not the address exists.
func HandleForgotPassword(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		email := c.FormValue("email")

		account, err := accounts.GetByEmail(email)
		if err == nil {
			if err := account.GenerateResetToken(); err == nil {
				if err := accounts.Update(account); err == nil {
					link := fmt.Sprintf("%s/reset-password?token=%s", c.BaseURL(), account.ResetToken)
					body := fmt.Sprintf("<p>Someone requested a password reset for your account.</p><p><a href=\"%s\">Reset your password</a></p><p>The link is valid for 24 hours.</p>", link)
					_ = mail.SendMail(account.Email, "Reset your password", body)
				}
			}
		}

		fm := fiber.Map{
			"type":    "success",
			"message": "If the address exists, a reset link is on its way.",
		}

		return flash.WithSuccess(c, fm).Redirect(constants.LoginRoute)
	}

	return c.Render("password_reset", fiber.Map{
		"Page":      "forgot_password",
		"CSRFToken": csrfToken(c),
		"Flash":     flash.Get(c),
	}, "layouts/main")
}

// HandleResetPassword consumes a reset token and sets a new password.
func HandleResetPassword(c *fiber.Ctx) error {
	token := c.Query("token")
	if c.Method() == fiber.MethodPost {
		token = c.FormValue("token")
	}

	fm := fiber.Map{
		"type": "error",
	}

	account, err := accounts.GetByResetToken(token)
	if err != nil || !account.IsResetTokenValid(token) {
		fm["message"] = "This reset link is invalid or expired."

		return flash.WithError(c, fm).Redirect(constants.LoginRoute)
	}

	if c.Method() == fiber.MethodPost {
		password := c.FormValue("password")
		if len(password) < 6 {
			fm["message"] = "The password must have at least 6 characters."

			return flash.WithError(c, fm).Redirect("/reset-password?token=" + token)
		}

		if err := account.SetPassword(password); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect(constants.LoginRoute)
		}
		account.ClearResetToken()
		if err := accounts.Update(account); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect(constants.LoginRoute)
		}

		fm = fiber.Map{
			"type":    "success",
			"message": "Password changed. You can sign in now.",
		}

		return flash.WithSuccess(c, fm).Redirect(constants.LoginRoute)
	}

	return c.Render("password_reset", fiber.Map{
		"Page":      "reset_password",
		"Token":     token,
		"CSRFToken": csrfToken(c),
		"Flash":     flash.Get(c),
	}, "layouts/main")
}

func startSession(c *fiber.Ctx, account *models.Account) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, account.ID)
	sess.Set(usercontext.KeyRecordID, account.RecordID)
	sess.Set(usercontext.KeyUsername, account.Name)
	sess.Set(usercontext.KeyIsAdmin, account.IsAdmin())

	return sess.Save()
}
