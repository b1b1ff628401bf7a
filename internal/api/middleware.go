// middleware.go - Session cookie middleware
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickpdf/backend/internal/session"
)

const sessionContextKey = "quickpdf.session"

// SessionMiddleware resolves the caller's session from the cookie,
// minting a fresh id when none is presented. The id lands in the
// request context under sessionContextKey.
func SessionMiddleware(registry *session.Registry, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var presented string
			if cookie, err := c.Cookie(cookieName); err == nil {
				presented = cookie.Value
			}

			id := registry.Ensure(presented)
			if id != presented {
				c.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(24 * time.Hour),
				})
			}
			c.Set(sessionContextKey, id)
			return next(c)
		}
	}
}

// sessionID returns the session resolved by SessionMiddleware.
func sessionID(c echo.Context) string {
	id, _ := c.Get(sessionContextKey).(string)
	return id
}
