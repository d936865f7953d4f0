package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/repository"
)

// ReservationHandler serves the reservation book. Confirming a reservation
// marks its table reserved; completing or cancelling one releases the table
// unless an order is being served at it.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Tables       *repository.TableRepo
}

func NewReservationHandler(reservations *repository.ReservationRepo, tables *repository.TableRepo) *ReservationHandler {
	if reservations == nil || tables == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Tables: tables}
}

// List returns all reservations joined with their tables, soonest first.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, res)
}

type reservationReq struct {
	TableID         uint64    `json:"table_id"`
	CustomerName    string    `json:"customer_name"`
	Phone           string    `json:"phone"`
	ReservationTime time.Time `json:"reservation_time"`
	GuestCount      uint32    `json:"guest_count"`
	Notes           *string   `json:"notes"`
}

// Create books a table. New reservations start pending and do not touch the
// table until confirmed.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableID == 0 || req.CustomerName == "" || req.ReservationTime.IsZero() || req.GuestCount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id, customer_name, reservation_time and guest_count required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.Insert(ctx, model.Reservation{
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		ReservationTime: req.ReservationTime,
		GuestCount:      req.GuestCount,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "unknown table"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	return c.JSON(http.StatusCreated, res)
}

type reservationStatusReq struct {
	Status model.ReservationStatus `json:"status"`
}

// UpdateStatus moves a reservation through its lifecycle and keeps the
// table's status in step.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req reservationStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update reservation failed"})
	}

	if err := h.syncTable(ctx, res); err != nil {
		// The reservation change stuck; report the table mismatch instead
		// of pretending everything settled.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation updated but table status update failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// syncTable mirrors a reservation status change onto the reserved table. A
// table in the middle of service is left alone.
func (h *ReservationHandler) syncTable(ctx context.Context, res model.Reservation) error {
	table, err := h.Tables.GetByID(ctx, res.TableID)
	if err != nil {
		return err
	}
	switch res.Status {
	case model.ReservationConfirmed:
		if table.Status == model.TableAvailable {
			_, err = h.Tables.UpdateStatus(ctx, table.ID, model.TableReserved, nil)
		}
	case model.ReservationCancelled, model.ReservationCompleted:
		if table.Status == model.TableReserved {
			_, err = h.Tables.UpdateStatus(ctx, table.ID, model.TableAvailable, nil)
		}
	}
	return err
}
