package middleware

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-collective/hearth/internal/pkg/session"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
)

func newUserContextApp() *fiber.App {
	session.UseStore(fibersession.New())

	app := fiber.New()
	app.Get("/me", UserContextMiddleware, func(c *fiber.Ctx) error {
		ctx := usercontext.GetUserContext(c)
		if !ctx.IsLoggedIn {
			return c.SendString("anonymous")
		}
		return c.SendString(fmt.Sprintf("user=%d admin=%t", ctx.UserID, ctx.IsAdmin))
	})
	return app
}

// seededSessionCookie writes the given values into a fresh session and returns
// the session cookie to replay on later requests.
func seededSessionCookie(t *testing.T, app *fiber.App, values map[string]interface{}) string {
	t.Helper()

	app.Post("/seed", func(c *fiber.Ctx) error {
		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			return err
		}
		for k, v := range values {
			sess.Set(k, v)
		}
		if err := sess.Save(); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})

	res, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/seed", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	cookie := res.Header.Get(fiber.HeaderSetCookie)
	require.NotEmpty(t, cookie)
	return strings.Split(cookie, ";")[0]
}

func TestUserContextMiddlewareAnonymousWithoutSession(t *testing.T) {
	app := newUserContextApp()

	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "anonymous", string(body))
}

func TestUserContextMiddlewareLoggedIn(t *testing.T) {
	app := newUserContextApp()
	cookie := seededSessionCookie(t, app, map[string]interface{}{
		usercontext.AuthKey:     true,
		usercontext.KeyUserID:   uint(7),
		usercontext.KeyRecordID: "rec-7",
		usercontext.KeyUsername: "mara",
		usercontext.KeyIsAdmin:  true,
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderCookie, cookie)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "user=7 admin=true", string(body))
}

// A session written by an older deployment (or tampered with) can hold values
// of unexpected types. The middleware must fall back to the anonymous path
// instead of panicking on the assertion.
func TestUserContextMiddlewareStaleSessionTypes(t *testing.T) {
	app := newUserContextApp()
	cookie := seededSessionCookie(t, app, map[string]interface{}{
		usercontext.AuthKey:     true,
		usercontext.KeyUserID:   "7",
		usercontext.KeyRecordID: "rec-7",
		usercontext.KeyUsername: "mara",
		usercontext.KeyIsAdmin:  "yes",
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderCookie, cookie)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "anonymous", string(body))
}
