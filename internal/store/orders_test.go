package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

type fakeOrderData struct {
	orders     []model.Order
	items      []model.OrderItem
	err        error
	fetchCount atomic.Int32
}

func (f *fakeOrderData) ListOrders(context.Context) ([]model.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeOrderData) ListOrderItems(context.Context) ([]model.OrderItem, error) {
	f.fetchCount.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.OrderItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeOrderData) CreateOrder(_ context.Context, req model.NewOrder) (model.Order, error) {
	if f.err != nil {
		return model.Order{}, f.err
	}
	o := model.Order{ID: uint64(len(f.orders) + 1), TableID: req.TableID, StaffID: req.StaffID, Status: model.OrderPending}
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeOrderData) UpdateOrderItemStatus(_ context.Context, id uint64, status model.OrderItemStatus) (model.OrderItem, error) {
	if f.err != nil {
		return model.OrderItem{}, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
			if status == model.ItemCompleted {
				now := time.Now()
				f.items[i].CompletedAt = &now
			}
			// Remote rows come back bare, without embeddings.
			row := f.items[i]
			row.MenuItem = nil
			row.Order = nil
			return row, nil
		}
	}
	return model.OrderItem{}, errors.New("not found")
}

func (f *fakeOrderData) CompleteOrder(_ context.Context, id uint64, totalCents uint32) (model.Order, error) {
	if f.err != nil {
		return model.Order{}, f.err
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = model.OrderPaid
			f.orders[i].TotalCents = totalCents
			return f.orders[i], nil
		}
	}
	return model.Order{}, errors.New("not found")
}

func sampleOrders() *fakeOrderData {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	return &fakeOrderData{
		orders: []model.Order{
			{ID: 1, TableID: 1, StaffID: 10, Status: model.OrderPending},
		},
		items: []model.OrderItem{
			{ID: 1, OrderID: 1, MenuItemID: 5, Quantity: 2, Status: model.ItemPending, CreatedAt: base,
				MenuItem: &model.MenuItem{ID: 5, Name: "Pad Thai"}},
			{ID: 2, OrderID: 1, MenuItemID: 6, Quantity: 1, Status: model.ItemCooking, CreatedAt: base.Add(time.Minute),
				MenuItem: &model.MenuItem{ID: 6, Name: "Green Curry"}},
			{ID: 3, OrderID: 1, MenuItemID: 7, Quantity: 1, Status: model.ItemCompleted, CreatedAt: base.Add(-time.Minute),
				MenuItem: &model.MenuItem{ID: 7, Name: "Spring Rolls"}},
		},
	}
}

func TestPendingItems(t *testing.T) {
	data := sampleOrders()

	got := PendingItems(data.items)
	require.Len(t, got, 2, "completed items never appear in the queue")
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(2), got[1].ID)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].CreatedAt.Before(got[i-1].CreatedAt), "queue must be sorted ascending by creation time")
	}
}

func TestPendingItemsStableOnEqualTimes(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	items := []model.OrderItem{
		{ID: 7, Status: model.ItemPending, CreatedAt: ts},
		{ID: 3, Status: model.ItemPending, CreatedAt: ts},
		{ID: 9, Status: model.ItemPending, CreatedAt: ts},
	}
	got := PendingItems(items)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(7), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)
	assert.Equal(t, uint64(9), got[2].ID)
}

func TestOrderStoreUpdateItemStatusPreservesEmbeddings(t *testing.T) {
	data := sampleOrders()
	s := NewOrderStore(data, nil)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))

	stored, err := s.UpdateItemStatus(ctx, 1, model.ItemCooking)
	require.NoError(t, err)
	assert.Equal(t, model.ItemCooking, stored.Status)

	for _, it := range s.Items() {
		if it.ID == 1 {
			assert.Equal(t, model.ItemCooking, it.Status)
			require.NotNil(t, it.MenuItem, "merge must keep the joined menu item held locally")
			assert.Equal(t, "Pad Thai", it.MenuItem.Name)
		}
	}
}

func TestOrderStoreUpdateItemStatusStampsCompletedAt(t *testing.T) {
	data := sampleOrders()
	s := NewOrderStore(data, nil)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))

	stored, err := s.UpdateItemStatus(ctx, 2, model.ItemCompleted)
	require.NoError(t, err)
	assert.NotNil(t, stored.CompletedAt)
	assert.NotContains(t, itemIDs(s.Pending()), uint64(2))
}

func TestOrderStoreCompleteReplacesOrder(t *testing.T) {
	data := sampleOrders()
	s := NewOrderStore(data, nil)
	ctx := context.Background()
	require.NoError(t, s.FetchOrders(ctx))

	stored, err := s.Complete(ctx, 1, 3100)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, stored.Status)
	assert.Equal(t, uint32(3100), stored.TotalCents)

	orders := s.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderPaid, orders[0].Status)
}

func TestOrderStoreApplyItem(t *testing.T) {
	data := sampleOrders()
	s := NewOrderStore(data, nil)
	require.NoError(t, s.FetchItems(context.Background()))

	t.Run("insert appends bare row", func(t *testing.T) {
		s.ApplyItem(realtime.ChangeEvent{
			Collection: realtime.CollectionOrderItems,
			Type:       realtime.EventInsert,
			New:        realtime.Marshal(model.OrderItem{ID: 4, OrderID: 2, MenuItemID: 5, Quantity: 1, Status: model.ItemPending}),
		})
		assert.Len(t, s.Items(), 4)
	})

	t.Run("update merges and keeps embeddings", func(t *testing.T) {
		s.ApplyItem(realtime.ChangeEvent{
			Collection: realtime.CollectionOrderItems,
			Type:       realtime.EventUpdate,
			New:        realtime.Marshal(model.OrderItem{ID: 1, OrderID: 1, MenuItemID: 5, Quantity: 2, Status: model.ItemCompleted}),
		})
		for _, it := range s.Items() {
			if it.ID == 1 {
				assert.Equal(t, model.ItemCompleted, it.Status)
				require.NotNil(t, it.MenuItem)
				assert.Equal(t, "Pad Thai", it.MenuItem.Name)
			}
		}
	})

	t.Run("delete removes by old row", func(t *testing.T) {
		s.ApplyItem(realtime.ChangeEvent{
			Collection: realtime.CollectionOrderItems,
			Type:       realtime.EventDelete,
			Old:        realtime.Marshal(model.OrderItem{ID: 4}),
		})
		assert.Len(t, s.Items(), 3)
	})
}

func TestOrderStoreSubscribePatchesIncrementally(t *testing.T) {
	data := sampleOrders()
	feed := realtime.NewMemoryFeed()
	s := NewOrderStore(data, feed)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))
	before := data.fetchCount.Load()

	sub, err := s.Subscribe(ctx, 0)
	require.NoError(t, err)
	defer sub.Cancel()

	require.NoError(t, feed.Publish(ctx, realtime.ChangeEvent{
		Collection: realtime.CollectionOrderItems,
		Type:       realtime.EventInsert,
		New:        realtime.Marshal(model.OrderItem{ID: 4, OrderID: 2, MenuItemID: 6, Quantity: 1, Status: model.ItemPending}),
	}))

	require.Eventually(t, func() bool {
		return len(s.Items()) == 4
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, before, data.fetchCount.Load(), "feed events must patch without a re-fetch")
}

func TestOrderStoreSubscribeReconcileRefetches(t *testing.T) {
	data := sampleOrders()
	feed := realtime.NewMemoryFeed()
	s := NewOrderStore(data, feed)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.FetchItems(ctx))
	before := data.fetchCount.Load()

	sub, err := s.Subscribe(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	defer sub.Cancel()

	require.Eventually(t, func() bool {
		return data.fetchCount.Load() > before
	}, time.Second, 5*time.Millisecond)
}

func itemIDs(items []model.OrderItem) []uint64 {
	out := make([]uint64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
