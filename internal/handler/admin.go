package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/config"
	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/model"
	"restaurant-pos/internal/repository"
)

// AdminHandler serves the staff account roster and the revenue reports.
type AdminHandler struct {
	Cfg       *config.Config
	Users     *repository.UserRepo
	Analytics *repository.AnalyticsRepo
}

func NewAdminHandler(cfg *config.Config, users *repository.UserRepo, analytics *repository.AnalyticsRepo) *AdminHandler {
	if cfg == nil || users == nil || analytics == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Users: users, Analytics: analytics}
}

// ListUsers returns all staff accounts without password hashes.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return c.JSON(http.StatusOK, users)
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// CreateUser registers a staff account with the given role.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || len(req.Password) < 8 || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, full_name and a password of at least 8 characters required"})
	}
	role := model.ParseRole(req.Role)
	if role == model.RoleGuest {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, role, req.FullName, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	user.PasswordHash = ""
	return c.JSON(http.StatusCreated, user)
}

type updateRoleReq struct {
	Role string `json:"role"`
}

// UpdateUserRole changes an account's access level.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := model.ParseRole(req.Role)
	if role == model.RoleGuest {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser removes a staff account. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if self, ok := middleware.UserID(c); ok && self == id {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete your own account"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Revenue returns the daily revenue report for ?days=N (default 7, max 90).
func (h *AdminHandler) Revenue(c echo.Context) error {
	days := queryInt(c, "days", 7, 1, 90)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Analytics.RevenuePerDay(ctx, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rows)
}

// TopDishes returns the best sellers for ?days=N (default 7) limited to
// ?limit=N (default 10, max 50).
func (h *AdminHandler) TopDishes(c echo.Context) error {
	days := queryInt(c, "days", 7, 1, 90)
	limit := queryInt(c, "limit", 10, 1, 50)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Analytics.TopDishes(ctx, days, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rows)
}

// queryInt parses an integer query param clamped to [min, max].
func queryInt(c echo.Context, name string, def, min, max int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
