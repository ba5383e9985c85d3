package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"cert-portal/client"
	"cert-portal/middleware"
	"cert-portal/session"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles login, logout and the current-session endpoint.
type AuthHandler struct {
	collab     Collaborator
	store      session.Store
	codec      *session.CookieCodec
	gate       *middleware.Gate
	injector   *middleware.Injector
	staticDir  string
	sessionTTL time.Duration
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(collab Collaborator, store session.Store, codec *session.CookieCodec, gate *middleware.Gate, injector *middleware.Injector, staticDir string, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		collab:     collab,
		store:      store,
		codec:      codec,
		gate:       gate,
		injector:   injector,
		staticDir:  staticDir,
		sessionTTL: sessionTTL,
	}
}

// meResponse is the current-session JSON shape consumed by the navbar
// script.
type meResponse struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	SessionActive bool   `json:"sessionActive"`
}

// LoginPage serves the login page, or sends an already-authenticated
// browser home.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if h.gate.Resolve(c) != nil {
		return c.Redirect(http.StatusFound, "/good")
	}
	return h.injector.ServeFile(c, filepath.Join(h.staticDir, "login.html"))
}

// Login submits credentials to the collaborator. Failures always land back
// on the login page: error=invalid when the collaborator rejected the
// credentials, error=server when it could not be reached or answered with
// something unparsable.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.FormValue("username")
	password := c.FormValue("password")

	result, err := h.collab.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, client.ErrUpstreamParse) {
			slog.ErrorContext(ctx, "authenticate response unparsable", "username", username, "error", err)
		} else {
			slog.ErrorContext(ctx, "authenticate call failed", "username", username, "error", err)
		}
		return c.Redirect(http.StatusFound, "/login?error=server")
	}

	if !result.Success {
		slog.InfoContext(ctx, "login rejected", "username", username)
		return c.Redirect(http.StatusFound, "/login?error=invalid")
	}

	sess := session.New(result.User.Username, result.User.Email, result.User.Role, h.sessionTTL)
	if err := h.store.Create(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "failed to store session", "username", username, "error", err)
		return c.Redirect(http.StatusFound, "/login?error=server")
	}

	if err := h.codec.Issue(c.Response(), sess); err != nil {
		slog.ErrorContext(ctx, "failed to issue session cookie", "username", username, "error", err)
		return c.Redirect(http.StatusFound, "/login?error=server")
	}

	slog.InfoContext(ctx, "login successful", "username", username, "role", result.User.Role)
	return c.Redirect(http.StatusFound, "/good")
}

// Logout destroys the session, clears the cookie and returns the browser
// to the login page. Logging out without a session is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if sid := h.codec.Read(c.Request()); sid != "" {
		if err := h.store.Delete(ctx, sid); err != nil {
			slog.ErrorContext(ctx, "failed to delete session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to logout")
		}
	}

	h.codec.Clear(c.Response())
	return c.Redirect(http.StatusFound, "/login")
}

// Me returns the current session as JSON. The route is gated, so the
// session is always present here.
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	return c.JSON(http.StatusOK, meResponse{
		Username:      sess.UserID,
		Email:         sess.Email,
		Role:          sess.Role,
		SessionActive: true,
	})
}
