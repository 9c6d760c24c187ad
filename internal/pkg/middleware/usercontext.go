package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hearth-collective/hearth/internal/pkg/session"
	"github.com/hearth-collective/hearth/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// This centralizes user session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	anonymous := func() error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		c.Locals(usercontext.KeyIsAdmin, false)
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		// On error: treat as anonymous user
		return anonymous()
	}

	// Session values survive deployments; a stale or foreign value must
	// degrade to anonymous, never panic the request.
	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok {
		return anonymous()
	}

	recordID, _ := sess.Get(usercontext.KeyRecordID).(string)
	username := session.GetSessionValue(c, usercontext.KeyUsername)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)

	userCtx := usercontext.UserContext{
		UserID:     userID,
		RecordID:   recordID,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
	}
	c.Locals("USER_CONTEXT", userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyUserID, userID)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}
