// Package middleware contains the portal's request middleware: the session
// gate, the HTML chrome injector and the login rate limiter.
package middleware

import (
	"log/slog"
	"net/http"

	"cert-portal/session"

	"github.com/labstack/echo/v4"
)

// sessionContextKey stashes the resolved session in the echo context.
const sessionContextKey = "portal.session"

// forbiddenResponse is the structured body returned on a role mismatch.
type forbiddenResponse struct {
	Error        string `json:"error"`
	RequiredRole string `json:"requiredRole"`
	UserRole     string `json:"userRole"`
}

// Gate resolves session cookies and guards routes.
type Gate struct {
	store session.Store
	codec *session.CookieCodec
}

// NewGate creates a session gate over the given store and cookie codec.
func NewGate(store session.Store, codec *session.CookieCodec) *Gate {
	return &Gate{store: store, codec: codec}
}

// Resolve returns the live session bound to the request, or nil when the
// request is anonymous (no cookie, bad signature, unknown or expired
// session). Store failures read as anonymous and are logged.
func (g *Gate) Resolve(c echo.Context) *session.Session {
	sid := g.codec.Read(c.Request())
	if sid == "" {
		return nil
	}

	sess, err := g.store.Get(c.Request().Context(), sid)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "session lookup failed", "error", err)
		return nil
	}
	if sess == nil || sess.UserID == "" {
		return nil
	}
	return sess
}

// RequireSession gates a route behind a live session. Anonymous requests
// are redirected to the login page, even on JSON routes like /me; the
// navbar script relies on the redirect making the fetch non-ok.
func (g *Gate) RequireSession() echo.MiddlewareFunc {
	return g.require("")
}

// RequireRole gates a route behind a live session carrying the given role.
// A logged-in user with the wrong role gets a structured 403, not a
// redirect.
func (g *Gate) RequireRole(role string) echo.MiddlewareFunc {
	return g.require(role)
}

func (g *Gate) require(requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := g.Resolve(c)
			if sess == nil {
				return c.Redirect(http.StatusFound, "/login")
			}

			if requiredRole != "" && sess.Role != requiredRole {
				return c.JSON(http.StatusForbidden, forbiddenResponse{
					Error:        "Access denied. Insufficient permissions.",
					RequiredRole: requiredRole,
					UserRole:     sess.Role,
				})
			}

			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// SessionFrom returns the session bound by the gate, or nil on ungated
// routes.
func SessionFrom(c echo.Context) *session.Session {
	sess, _ := c.Get(sessionContextKey).(*session.Session)
	return sess
}
