package repository

import (
	"context"

	"restaurant-pos/internal/model"
)

// The *Client types expose repository methods under the collection-oriented
// names the stores expect, so a store can be backed either by these or by a
// fake in tests.

// MenuClient serves menu reads and writes from the category and menu repos.
type MenuClient struct {
	Categories *CategoryRepo
	Menu       *MenuRepo
}

func (c MenuClient) ListCategories(ctx context.Context) ([]model.Category, error) {
	return c.Categories.List(ctx)
}

func (c MenuClient) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	return c.Menu.ListItems(ctx)
}

func (c MenuClient) InsertMenuItem(ctx context.Context, m model.MenuItem) (model.MenuItem, error) {
	return c.Menu.InsertItem(ctx, m)
}

func (c MenuClient) UpdateMenuItem(ctx context.Context, id uint64, upd model.MenuItemUpdate) (model.MenuItem, error) {
	return c.Menu.UpdateItem(ctx, id, upd)
}

func (c MenuClient) DeleteMenuItem(ctx context.Context, id uint64) error {
	return c.Menu.DeleteItem(ctx, id)
}

// TableClient serves table reads and writes from the table repo.
type TableClient struct {
	Tables *TableRepo
}

func (c TableClient) ListTables(ctx context.Context) ([]model.Table, error) {
	return c.Tables.List(ctx)
}

func (c TableClient) InsertTable(ctx context.Context, t model.Table) (model.Table, error) {
	return c.Tables.Insert(ctx, t)
}

func (c TableClient) UpdateTableStatus(ctx context.Context, id uint64, status model.TableStatus, orderID *uint64) (model.Table, error) {
	return c.Tables.UpdateStatus(ctx, id, status, orderID)
}

func (c TableClient) DeleteTable(ctx context.Context, id uint64) error {
	return c.Tables.Delete(ctx, id)
}

// OrderClient serves order reads and writes from the order repo.
type OrderClient struct {
	Orders *OrderRepo
}

func (c OrderClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	return c.Orders.ListOrders(ctx)
}

func (c OrderClient) ListOrderItems(ctx context.Context) ([]model.OrderItem, error) {
	return c.Orders.ListItems(ctx)
}

func (c OrderClient) CreateOrder(ctx context.Context, req model.NewOrder) (model.Order, error) {
	return c.Orders.Create(ctx, req)
}

func (c OrderClient) UpdateOrderItemStatus(ctx context.Context, id uint64, status model.OrderItemStatus) (model.OrderItem, error) {
	return c.Orders.UpdateItemStatus(ctx, id, status)
}

func (c OrderClient) CompleteOrder(ctx context.Context, id uint64, totalCents uint32) (model.Order, error) {
	return c.Orders.Complete(ctx, id, totalCents)
}
