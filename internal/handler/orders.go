package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/middleware"
	"restaurant-pos/internal/model"
	"restaurant-pos/internal/queue"
	"restaurant-pos/internal/repository"
	queue_publisher "restaurant-pos/internal/service"
	"restaurant-pos/internal/store"
)

// OrderHandler serves order placement and payment for waitstaff and the
// cooking queue for the kitchen display.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(orders *repository.OrderRepo) *OrderHandler {
	if orders == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

// List returns all orders joined with their table, staff and items, newest
// first.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListOrders(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, orders)
}

type createOrderReq struct {
	TableID uint64               `json:"table_id"`
	Notes   *string              `json:"notes"`
	Items   []createOrderItemReq `json:"items"`
}

type createOrderItemReq struct {
	MenuItemID uint64 `json:"menu_item_id"`
	Quantity   uint32 `json:"quantity"`
}

// Create opens an order for a table. The order, its items and the table's
// move to serving commit together; the kitchen ticket event is published
// after commit and is not allowed to fail the request.
func (h *OrderHandler) Create(c echo.Context) error {
	staffID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TableID == 0 || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id and items required"})
	}
	items := make([]model.NewOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.MenuItemID == 0 || it.Quantity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs menu_item_id and quantity"})
		}
		items = append(items, model.NewOrderItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, err := h.Orders.Create(ctx, model.NewOrder{
		TableID: req.TableID,
		StaffID: staffID,
		Notes:   req.Notes,
		Items:   items,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table or menu item not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "table already has an open order"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	go publishPlaced(order)

	return c.JSON(http.StatusCreated, order)
}

// Complete marks an order paid, stamps its final total and frees the table.
func (h *OrderHandler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	current, err := h.Orders.GetJoined(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if current.Status == model.OrderPaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already paid"})
	}

	var total uint32
	for _, it := range current.Items {
		if it.MenuItem != nil {
			total += it.MenuItem.PriceCents * it.Quantity
		}
	}

	order, err := h.Orders.Complete(ctx, id, total)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "complete order failed"})
	}

	go publishPaid(order)

	return c.JSON(http.StatusOK, order)
}

// KitchenQueue returns order items that still need cooking, oldest first,
// joined with their menu item and order so the display can show the dish
// and the table.
func (h *OrderHandler) KitchenQueue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Orders.ListItems(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, store.PendingItems(items))
}

type itemStatusReq struct {
	Status model.OrderItemStatus `json:"status"`
}

// UpdateItemStatus advances one order item through the kitchen.
func (h *OrderHandler) UpdateItemStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req itemStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Orders.UpdateItemStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update item failed"})
	}
	return c.JSON(http.StatusOK, item)
}

func publishPlaced(order model.Order) {
	ev := queue.OrderPlacedEvent{
		OrderID:  order.ID,
		PlacedAt: order.OrderTime.UTC().Format(time.RFC3339),
	}
	if order.Table != nil {
		ev.TableNumber = order.Table.TableNumber
	}
	if order.Staff != nil {
		ev.StaffName = order.Staff.FullName
	}
	if order.Notes != nil {
		ev.Notes = *order.Notes
	}
	for _, it := range order.Items {
		line := queue.OrderPlacedItem{Quantity: it.Quantity}
		if it.MenuItem != nil {
			line.Name = it.MenuItem.Name
		}
		ev.Items = append(ev.Items, line)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = queue_publisher.PublishOrderPlaced(ctx, ev)
}

func publishPaid(order model.Order) {
	ev := queue.OrderPaidEvent{
		OrderID:    order.ID,
		TotalCents: order.TotalCents,
		PaidAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if order.Table != nil {
		ev.TableNumber = order.Table.TableNumber
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = queue_publisher.PublishOrderPaid(ctx, ev)
}
