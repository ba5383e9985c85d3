package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataHandler exposes the generic add/list proxy routes. They carry no gate
// on purpose: the original system leaves them open, and that is preserved
// until the system owner says otherwise.
type DataHandler struct {
	collab Collaborator
}

// NewDataHandler creates a new data handler.
func NewDataHandler(collab Collaborator) *DataHandler {
	return &DataHandler{collab: collab}
}

// Add forwards all submitted form fields to the collaborator and relays the
// response.
func (h *DataHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	fields, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid form data"})
	}

	result, err := h.collab.AddRecord(ctx, fields)
	if err != nil {
		slog.ErrorContext(ctx, "add record call failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Server error",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}

// List relays the collaborator's list-all response.
func (h *DataHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := h.collab.ListRecords(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "list records call failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Server error",
			"details": err.Error(),
		})
	}

	return c.JSONBlob(http.StatusOK, data)
}
