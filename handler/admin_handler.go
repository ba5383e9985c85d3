package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"cert-portal/middleware"
	"cert-portal/utils/validator"

	"github.com/labstack/echo/v4"
)

// AdminHandler handles the user-management API. Every route is gated on the
// admin role before it reaches these methods; validation failures are
// answered locally and never reach the collaborator.
type AdminHandler struct {
	collab   Collaborator
	validate *validator.Validator
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(collab Collaborator, validate *validator.Validator) *AdminHandler {
	return &AdminHandler{collab: collab, validate: validate}
}

// addUserRequest is the payload for creating a user.
type addUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3"`
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Role     string `json:"role" form:"role" validate:"required,user_role"`
}

// updateUserRequest is the payload for updating a user. The password is
// optional; when present it must still meet the minimum length.
type updateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3"`
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" form:"role" validate:"required,user_role"`
}

// opFailure is the {success:false, message} body for local rejections and
// upstream failures.
type opFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// List relays the full user list.
func (h *AdminHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.collab.GetUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch users", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch users",
			"details": err.Error(),
		})
	}

	slog.InfoContext(ctx, "fetched users", "count", len(users))
	return c.JSON(http.StatusOK, users)
}

// Add validates and relays a new user.
func (h *AdminHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	var req addUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, opFailure{Message: "All fields are required"})
	}

	if err := h.validate.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, opFailure{Message: validationMessage(err)})
	}

	slog.InfoContext(ctx, "admin adding user", "username", req.Username, "role", req.Role)

	result, err := h.collab.AddUser(ctx, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		slog.ErrorContext(ctx, "add user call failed", "username", req.Username, "error", err)
		return c.JSON(http.StatusInternalServerError, opFailure{Message: "Server error: " + err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// Update validates and relays a user update, addressed by the user's
// current username.
func (h *AdminHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	originalUsername := c.Param("username")

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, opFailure{Message: "Username, email, and role are required"})
	}

	if err := h.validate.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, opFailure{Message: validationMessage(err)})
	}

	slog.InfoContext(ctx, "admin updating user", "from", originalUsername, "to", req.Username)

	result, err := h.collab.UpdateUser(ctx, originalUsername, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		slog.ErrorContext(ctx, "update user call failed", "username", originalUsername, "error", err)
		return c.JSON(http.StatusInternalServerError, opFailure{Message: "Server error: " + err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// Delete relays a user deletion. Admins cannot delete their own account;
// that is rejected locally.
func (h *AdminHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")

	if sess := middleware.SessionFrom(c); sess != nil && sess.UserID == username {
		return c.JSON(http.StatusBadRequest, opFailure{Message: "You cannot delete your own account"})
	}

	slog.InfoContext(ctx, "admin deleting user", "username", username)

	result, err := h.collab.DeleteUser(ctx, username)
	if err != nil {
		slog.ErrorContext(ctx, "delete user call failed", "username", username, "error", err)
		return c.JSON(http.StatusInternalServerError, opFailure{Message: "Server error: " + err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// validationMessage extracts the user-facing message from a validation
// error.
func validationMessage(err error) string {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return verr.Message()
	}
	return "Invalid request"
}
