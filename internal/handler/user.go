package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oceanwatch/hazard-api/internal/apperr"
	"github.com/oceanwatch/hazard-api/internal/middleware"
	"github.com/oceanwatch/hazard-api/internal/repository"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: users}
}

// Me returns the user attached by the auth gate. No re-fetch: the gate
// already loaded the current row for this request.
func (h *UserHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("You are not logged in. Please log in to get access.")
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe applies a partial profile update. The body is read as a
// loose JSON object; password_hash, role, account_status and email are
// silently dropped before the update, whatever the client sent, and
// the repository only touches whitelisted columns on top of that.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("You are not logged in. Please log in to get access.")
	}

	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return apperr.BadRequest("invalid body")
	}
	delete(fields, "password_hash")
	delete(fields, "role")
	delete(fields, "account_status")
	delete(fields, "email")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Users.UpdateProfile(ctx, u.ID, fields)
	if err != nil {
		if err == repository.ErrUsernameTaken {
			return apperr.BadRequest("Username already taken")
		}
		return apperr.Internal("could not update profile")
	}
	return c.JSON(http.StatusOK, updated)
}
