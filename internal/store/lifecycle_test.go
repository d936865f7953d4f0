package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

// Walks a whole sitting through the feed the way the repositories publish
// it: placing an order marks the table serving and streams the item inserts;
// paying frees the table again. The table and kitchen mirrors must track
// every step without re-fetching.
func TestOrderLifecycleAcrossStores(t *testing.T) {
	feed := realtime.NewMemoryFeed()
	ctx := context.Background()

	tableData := &fakeTableData{nextID: 1, tables: []model.Table{
		{ID: 1, TableNumber: 1, Capacity: 4, Status: model.TableAvailable},
	}}
	tables := NewTableStore(tableData, feed)
	require.NoError(t, tables.Fetch(ctx))
	tsub, err := tables.Subscribe()
	require.NoError(t, err)
	defer tsub.Cancel()

	orders := NewOrderStore(&fakeOrderData{}, feed)
	require.NoError(t, orders.FetchItems(ctx))
	osub, err := orders.Subscribe(ctx, 0)
	require.NoError(t, err)
	defer osub.Cancel()

	// Order placed: table goes serving, two items hit the kitchen.
	orderID := uint64(11)
	require.NoError(t, feed.Publish(ctx, realtime.ChangeEvent{
		Collection: realtime.CollectionTables,
		Type:       realtime.EventUpdate,
		New:        realtime.Marshal(model.Table{ID: 1, TableNumber: 1, Capacity: 4, Status: model.TableServing, CurrentOrderID: &orderID}),
	}))
	base := time.Date(2026, 8, 29, 19, 0, 0, 0, time.UTC)
	for i, mi := range []uint64{5, 6} {
		require.NoError(t, feed.Publish(ctx, realtime.ChangeEvent{
			Collection: realtime.CollectionOrderItems,
			Type:       realtime.EventInsert,
			New: realtime.Marshal(model.OrderItem{
				ID: uint64(i + 1), OrderID: orderID, MenuItemID: mi, Quantity: 1,
				Status: model.ItemPending, CreatedAt: base.Add(time.Duration(i) * time.Second),
			}),
		}))
	}

	require.Eventually(t, func() bool {
		return len(orders.Pending()) == 2
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		tbl := tables.Tables()[0]
		return tbl.Status == model.TableServing && tbl.CurrentOrderID != nil && *tbl.CurrentOrderID == orderID
	}, time.Second, 5*time.Millisecond)

	// Kitchen finishes both items.
	done := base.Add(10 * time.Minute)
	for id := uint64(1); id <= 2; id++ {
		require.NoError(t, feed.Publish(ctx, realtime.ChangeEvent{
			Collection: realtime.CollectionOrderItems,
			Type:       realtime.EventUpdate,
			New: realtime.Marshal(model.OrderItem{
				ID: id, OrderID: orderID, Quantity: 1,
				Status: model.ItemCompleted, CreatedAt: base, CompletedAt: &done,
			}),
		}))
	}
	require.Eventually(t, func() bool {
		return len(orders.Pending()) == 0
	}, time.Second, 5*time.Millisecond)

	// Order paid: the table is released.
	require.NoError(t, feed.Publish(ctx, realtime.ChangeEvent{
		Collection: realtime.CollectionTables,
		Type:       realtime.EventUpdate,
		New:        realtime.Marshal(model.Table{ID: 1, TableNumber: 1, Capacity: 4, Status: model.TableAvailable}),
	}))
	require.Eventually(t, func() bool {
		return tables.Tables()[0].Status == model.TableAvailable
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, tables.Tables()[0].CurrentOrderID)
}
