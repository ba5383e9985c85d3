package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"cert-portal/middleware"

	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler returns the portal's central error handler. Unmatched
// routes get the not-found page (with chrome injected) or a JSON fallback;
// everything unexpected collapses to a generic 500 that leaks nothing.
func NewHTTPErrorHandler(injector *middleware.Injector, staticDir string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprint(he.Message)
		}

		if code == http.StatusNotFound {
			slog.InfoContext(c.Request().Context(), "route not found", "path", c.Request().URL.Path)

			content, readErr := os.ReadFile(filepath.Join(staticDir, "notfound.html"))
			if readErr == nil {
				decorated, _ := injector.Inject(content)
				if blobErr := c.HTMLBlob(http.StatusNotFound, decorated); blobErr == nil {
					return
				}
			}

			_ = c.JSON(http.StatusNotFound, map[string]string{
				"error":   "404 Not Found",
				"path":    c.Request().URL.Path,
				"message": "This route does not exist",
			})
			return
		}

		if code >= http.StatusInternalServerError {
			slog.ErrorContext(c.Request().Context(), "request failed", "path", c.Request().URL.Path, "error", err)
			_ = c.JSON(code, map[string]string{"error": "Internal server error"})
			return
		}

		_ = c.JSON(code, map[string]string{"error": message})
	}
}
