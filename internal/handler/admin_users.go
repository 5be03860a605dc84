package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-reservation/internal/config"
	"github.com/iliyamo/railway-reservation/internal/repository"
)

// AdminHandler bundles the repositories administrators manage:
// accounts and the train/station reference data. All methods assume
// the RequireRole(ADMIN) middleware has already run.
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Trains   *repository.TrainRepo
	Stations *repository.StationRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, t *repository.TrainRepo, s *repository.StationRepo) *AdminHandler {
	if u == nil || t == nil || s == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Users: u, Trains: t, Stations: s}
}

// ListUsers handles GET /v1/admin/users. Password hashes never leave
// the repository layer.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	items := make([]echo.Map, 0, len(users))
	for _, u := range users {
		items = append(items, echo.Map{
			"id":       u.ID,
			"username": u.Username,
			"is_admin": u.IsAdmin,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateUserPassword handles PUT /v1/admin/users/:username/password,
// the admin password-reset of the original system.
func (h *AdminHandler) UpdateUserPassword(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, username, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser handles DELETE /v1/admin/users/:username. The repository
// cascades through the user's bookings, tickets and cancellation rows
// in one transaction; a failure anywhere leaves everything in place.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}
	err := h.Users.Delete(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
