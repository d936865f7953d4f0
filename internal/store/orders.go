package store

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

// OrderData is the remote interface the order store works against.
type OrderData interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrderItems(ctx context.Context) ([]model.OrderItem, error)
	CreateOrder(ctx context.Context, req model.NewOrder) (model.Order, error)
	UpdateOrderItemStatus(ctx context.Context, id uint64, status model.OrderItemStatus) (model.OrderItem, error)
	CompleteOrder(ctx context.Context, id uint64, totalCents uint32) (model.Order, error)
}

// OrderStore mirrors the orders collection (joined with table, staff and
// items) and the flat cross-order item list the kitchen works from.
type OrderStore struct {
	data OrderData
	feed realtime.Feed

	mu      sync.Mutex
	orders  []model.Order
	items   []model.OrderItem
	loading bool
	err     string
}

// NewOrderStore builds an order store over the given remote interface and
// feed.
func NewOrderStore(data OrderData, feed realtime.Feed) *OrderStore {
	return &OrderStore{data: data, feed: feed}
}

// FetchOrders replaces the local order array with the joined remote result,
// newest order first.
func (s *OrderStore) FetchOrders(ctx context.Context) error {
	s.setLoading(true)
	orders, err := s.data.ListOrders(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.orders = orders
	s.err = ""
	return nil
}

// FetchItems replaces the flat item array with the joined remote result,
// oldest created_at first.
func (s *OrderStore) FetchItems(ctx context.Context) error {
	s.setLoading(true)
	items, err := s.data.ListOrderItems(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.items = items
	s.err = ""
	return nil
}

// Create opens an order for a table. The remote side inserts the order and
// its items and marks the table serving in one transaction; the new order
// (joined) is returned. The local mirrors pick the rows up through the feed.
func (s *OrderStore) Create(ctx context.Context, req model.NewOrder) (model.Order, error) {
	return s.data.CreateOrder(ctx, req)
}

// UpdateItemStatus advances one kitchen item and merges the stored row into
// the matching local entry, preserving the joined menu item and order
// already held locally.
func (s *OrderStore) UpdateItemStatus(ctx context.Context, id uint64, status model.OrderItemStatus) (model.OrderItem, error) {
	stored, err := s.data.UpdateOrderItemStatus(ctx, id, status)
	if err != nil {
		return model.OrderItem{}, err
	}
	s.mu.Lock()
	s.mergeItemLocked(stored)
	s.mu.Unlock()
	return stored, nil
}

// Complete marks an order paid with its final total; the remote side frees
// the order's table in the same transaction. The stored joined order
// replaces the matching local entry.
func (s *OrderStore) Complete(ctx context.Context, id uint64, totalCents uint32) (model.Order, error) {
	stored, err := s.data.CompleteOrder(ctx, id, totalCents)
	if err != nil {
		return model.Order{}, err
	}
	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i] = stored
			break
		}
	}
	s.mu.Unlock()
	return stored, nil
}

// Orders returns a snapshot of the order array.
func (s *OrderStore) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Items returns a snapshot of the flat item array.
func (s *OrderStore) Items() []model.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.OrderItem, len(s.items))
	copy(out, s.items)
	return out
}

// Pending returns the kitchen queue: every item not yet completed, sorted
// ascending by creation time.
func (s *OrderStore) Pending() []model.OrderItem {
	return PendingItems(s.Items())
}

// Err returns the last recorded fetch error message.
func (s *OrderStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Subscribe opens a realtime subscription on the order_items collection and
// applies pushed events incrementally, the same strategy the table store
// uses. Pushed rows are bare (no joined menu item); merging preserves any
// embedding already held locally, and when reconcileEvery is positive a
// background re-fetch runs at that interval to restore embeddings for rows
// first seen over the feed. Cancelling the returned handle stops both.
func (s *OrderStore) Subscribe(ctx context.Context, reconcileEvery time.Duration) (*realtime.Subscription, error) {
	sub, err := s.feed.Subscribe(realtime.CollectionOrderItems)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.C {
			s.ApplyItem(ev)
		}
	}()
	if reconcileEvery > 0 {
		go func() {
			tick := time.NewTicker(reconcileEvery)
			defer tick.Stop()
			for {
				select {
				case <-done:
					return
				case <-ctx.Done():
					return
				case <-tick.C:
					if err := s.FetchItems(ctx); err != nil {
						log.Printf("orders: reconcile fetch failed: %v", err)
					}
				}
			}
		}()
	}
	return sub, nil
}

// ApplyItem patches the flat item array from one change event.
func (s *OrderStore) ApplyItem(ev realtime.ChangeEvent) {
	switch ev.Type {
	case realtime.EventInsert, realtime.EventUpdate:
		var it model.OrderItem
		if err := json.Unmarshal(ev.New, &it); err != nil {
			log.Printf("orders: bad %s payload: %v", ev.Type, err)
			return
		}
		s.mu.Lock()
		if ev.Type == realtime.EventInsert {
			s.items = append(s.items, it)
		} else {
			s.mergeItemLocked(it)
		}
		s.mu.Unlock()
	case realtime.EventDelete:
		var it model.OrderItem
		if err := json.Unmarshal(ev.Old, &it); err != nil {
			log.Printf("orders: bad delete payload: %v", err)
			return
		}
		s.mu.Lock()
		kept := s.items[:0]
		for _, cur := range s.items {
			if cur.ID != it.ID {
				kept = append(kept, cur)
			}
		}
		s.items = kept
		s.mu.Unlock()
	}
}

func (s *OrderStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// mergeItemLocked replaces the scalar fields of the matching local item
// while keeping its joined MenuItem/Order pointers. Unknown items are
// appended.
func (s *OrderStore) mergeItemLocked(it model.OrderItem) {
	for i := range s.items {
		if s.items[i].ID != it.ID {
			continue
		}
		it.MenuItem = s.items[i].MenuItem
		it.Order = s.items[i].Order
		s.items[i] = it
		return
	}
	s.items = append(s.items, it)
}

// PendingItems is the pure rule behind the kitchen queue: items whose
// status is not completed, sorted non-decreasing by creation time. The sort
// is stable so items created in the same instant keep their source order.
func PendingItems(items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Status != model.ItemCompleted {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
