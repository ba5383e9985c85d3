package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// VerifyHandler proxies certificate lookups to the collaborator.
type VerifyHandler struct {
	collab Collaborator
}

// NewVerifyHandler creates a new verify handler.
func NewVerifyHandler(collab Collaborator) *VerifyHandler {
	return &VerifyHandler{collab: collab}
}

// Handle looks up a certificate by number. The certificate record itself is
// opaque here; whatever the collaborator answers is relayed.
func (h *VerifyHandler) Handle(c echo.Context) error {
	certificateNo := c.QueryParam("certificateNo")
	if certificateNo == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Certificate number is required",
		})
	}

	result, err := h.collab.Verify(c.Request().Context(), certificateNo)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "verify call failed",
			"certificate_no", certificateNo,
			"error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, result)
}
