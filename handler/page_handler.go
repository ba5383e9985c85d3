package handler

import (
	"net/http"
	"path/filepath"

	"cert-portal/middleware"

	"github.com/labstack/echo/v4"
)

// PageHandler serves the portal's HTML pages through the chrome injector.
type PageHandler struct {
	injector  *middleware.Injector
	staticDir string
}

// NewPageHandler creates a new page handler serving files from staticDir.
func NewPageHandler(injector *middleware.Injector, staticDir string) *PageHandler {
	return &PageHandler{injector: injector, staticDir: staticDir}
}

func (h *PageHandler) serve(c echo.Context, name string) error {
	return h.injector.ServeFile(c, filepath.Join(h.staticDir, name))
}

// Root serves the public verification page.
func (h *PageHandler) Root(c echo.Context) error {
	return h.serve(c, "verify.html")
}

// Good serves the certificate home page.
func (h *PageHandler) Good(c echo.Context) error {
	return h.serve(c, "good.html")
}

// Degree serves the degree certificate page.
func (h *PageHandler) Degree(c echo.Context) error {
	return h.serve(c, "certificatedegree.html")
}

// Verification serves the public verification page.
func (h *PageHandler) Verification(c echo.Context) error {
	return h.serve(c, "verify.html")
}

// Authentication serves the authentication info page.
func (h *PageHandler) Authentication(c echo.Context) error {
	return h.serve(c, "authentication.html")
}

// SitePaths serves the sitemap page.
func (h *PageHandler) SitePaths(c echo.Context) error {
	return h.serve(c, "sitemap.html")
}

// AdminPanel serves the admin page.
func (h *PageHandler) AdminPanel(c echo.Context) error {
	return h.serve(c, "admin.html")
}

// Health reports liveness for the healthcheck subcommand and orchestrators.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
