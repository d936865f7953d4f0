package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/repository"
)

// ShiftHandler serves the work shift clock: staff check in and out, and
// managers review the day's attendance.
type ShiftHandler struct {
	Shifts *repository.ShiftRepo
}

func NewShiftHandler(shifts *repository.ShiftRepo) *ShiftHandler {
	if shifts == nil {
		panic("nil repository passed to NewShiftHandler")
	}
	return &ShiftHandler{Shifts: shifts}
}

// CheckIn opens today's shift for the authenticated user. Checking in
// twice on the same day is rejected.
func (h *ShiftHandler) CheckIn(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := middleware.CurrentRole(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shift, err := h.Shifts.CheckIn(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in today"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check in failed"})
	}
	return c.JSON(http.StatusCreated, shift)
}

// CheckOut closes the authenticated user's open shift.
func (h *ShiftHandler) CheckOut(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shift, err := h.Shifts.CheckOut(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no open shift"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check out failed"})
	}
	return c.JSON(http.StatusOK, shift)
}

// ListByDate returns all shifts for ?date=YYYY-MM-DD, defaulting to today.
func (h *ShiftHandler) ListByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shifts, err := h.Shifts.ListByDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, shifts)
}
