// Package middleware holds the Echo middleware that gates protected routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/session"
)

// UserKey is the echo.Context key holding the *domain.User admitted by Guard.
const UserKey = "user"

// RetryAfterSeconds is sent with 503 responses while the session resolves.
const RetryAfterSeconds = "1"

// SessionChecker resolves the session on entry to a protected route.
type SessionChecker interface {
	CheckSession(ctx context.Context) session.State
}

// Guard admits the request only once the session has resolved to a user
// holding one of roles (any role when empty). Otherwise it answers 503 while
// loading, or redirects to login or to the user's landing page.
func Guard(sessions SessionChecker, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := sessions.CheckSession(c.Request().Context())
			v := session.Guard(st, c.Request().URL.RequestURI(), roles...)

			switch v.Decision {
			case session.Wait:
				c.Response().Header().Set("Retry-After", RetryAfterSeconds)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			case session.RedirectLogin, session.RedirectLanding:
				return c.Redirect(http.StatusFound, v.Location)
			}

			c.Set(UserKey, st.CurrentUser)
			return next(c)
		}
	}
}

// UserFrom returns the user stored by Guard, or nil outside guarded routes.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(UserKey).(*domain.User)
	return u
}
