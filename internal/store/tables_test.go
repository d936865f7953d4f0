package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

type fakeTableData struct {
	tables []model.Table
	err    error
	nextID uint64
}

func (f *fakeTableData) ListTables(context.Context) ([]model.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Table, len(f.tables))
	copy(out, f.tables)
	return out, nil
}

func (f *fakeTableData) InsertTable(_ context.Context, t model.Table) (model.Table, error) {
	if f.err != nil {
		return model.Table{}, f.err
	}
	f.nextID++
	t.ID = f.nextID
	f.tables = append(f.tables, t)
	return t, nil
}

func (f *fakeTableData) UpdateTableStatus(_ context.Context, id uint64, status model.TableStatus, orderID *uint64) (model.Table, error) {
	if f.err != nil {
		return model.Table{}, f.err
	}
	for i := range f.tables {
		if f.tables[i].ID == id {
			f.tables[i].Status = status
			if orderID != nil {
				f.tables[i].CurrentOrderID = orderID
			}
			return f.tables[i], nil
		}
	}
	return model.Table{}, errors.New("not found")
}

func (f *fakeTableData) DeleteTable(_ context.Context, id uint64) error {
	if f.err != nil {
		return f.err
	}
	kept := f.tables[:0]
	for _, t := range f.tables {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tables = kept
	return nil
}

func sampleTables() *fakeTableData {
	return &fakeTableData{
		nextID: 3,
		tables: []model.Table{
			{ID: 1, TableNumber: 1, Capacity: 2, Status: model.TableAvailable},
			{ID: 2, TableNumber: 2, Capacity: 4, Status: model.TableServing},
			{ID: 3, TableNumber: 3, Capacity: 6, Status: model.TableReserved},
		},
	}
}

func TestTableStoreFetchIsIdempotent(t *testing.T) {
	data := sampleTables()
	s := NewTableStore(data, nil)
	ctx := context.Background()

	require.NoError(t, s.Fetch(ctx))
	first := s.Tables()
	require.NoError(t, s.Fetch(ctx))
	second := s.Tables()

	assert.Equal(t, first, second, "re-fetching must replace, not accumulate")
	assert.Len(t, second, 3)
}

func TestTableStoreFetchErrorKeepsPrevious(t *testing.T) {
	data := sampleTables()
	s := NewTableStore(data, nil)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	data.err = errors.New("timeout")
	require.Error(t, s.Fetch(ctx))
	assert.Len(t, s.Tables(), 3)
	assert.Equal(t, "timeout", s.Err())
}

func TestTableStoreUpdateStatusPatchesLocally(t *testing.T) {
	data := sampleTables()
	s := NewTableStore(data, nil)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	updated, err := s.UpdateStatus(ctx, 1, model.TableServing, u64p(9))
	require.NoError(t, err)
	assert.Equal(t, model.TableServing, updated.Status)

	for _, tbl := range s.Tables() {
		if tbl.ID == 1 {
			assert.Equal(t, model.TableServing, tbl.Status)
			require.NotNil(t, tbl.CurrentOrderID)
			assert.Equal(t, uint64(9), *tbl.CurrentOrderID)
		}
	}
}

func TestTableStoreUpdateStatusFailureLeavesMirror(t *testing.T) {
	data := sampleTables()
	s := NewTableStore(data, nil)
	ctx := context.Background()
	require.NoError(t, s.Fetch(ctx))

	data.err = errors.New("boom")
	_, err := s.UpdateStatus(ctx, 1, model.TableServing, nil)
	require.Error(t, err)

	for _, tbl := range s.Tables() {
		if tbl.ID == 1 {
			assert.Equal(t, model.TableAvailable, tbl.Status)
		}
	}
}

func TestTableStoreApply(t *testing.T) {
	s := NewTableStore(sampleTables(), nil)
	require.NoError(t, s.Fetch(context.Background()))

	t.Run("insert appends", func(t *testing.T) {
		s.Apply(realtime.ChangeEvent{
			Collection: realtime.CollectionTables,
			Type:       realtime.EventInsert,
			New:        realtime.Marshal(model.Table{ID: 4, TableNumber: 4, Capacity: 2, Status: model.TableAvailable}),
		})
		assert.Len(t, s.Tables(), 4)
	})

	t.Run("update replaces matching entry", func(t *testing.T) {
		s.Apply(realtime.ChangeEvent{
			Collection: realtime.CollectionTables,
			Type:       realtime.EventUpdate,
			New:        realtime.Marshal(model.Table{ID: 2, TableNumber: 2, Capacity: 4, Status: model.TableAvailable}),
		})
		for _, tbl := range s.Tables() {
			if tbl.ID == 2 {
				assert.Equal(t, model.TableAvailable, tbl.Status)
			}
		}
		assert.Len(t, s.Tables(), 4)
	})

	t.Run("delete removes by old row", func(t *testing.T) {
		s.Apply(realtime.ChangeEvent{
			Collection: realtime.CollectionTables,
			Type:       realtime.EventDelete,
			Old:        realtime.Marshal(model.Table{ID: 4}),
		})
		assert.Len(t, s.Tables(), 3)
	})

	t.Run("malformed payload is ignored", func(t *testing.T) {
		s.Apply(realtime.ChangeEvent{
			Collection: realtime.CollectionTables,
			Type:       realtime.EventUpdate,
			New:        []byte("{not json"),
		})
		assert.Len(t, s.Tables(), 3)
	})
}

func TestTableStoreSubscribeAppliesFeedEvents(t *testing.T) {
	feed := realtime.NewMemoryFeed()
	s := NewTableStore(sampleTables(), feed)
	require.NoError(t, s.Fetch(context.Background()))

	sub, err := s.Subscribe()
	require.NoError(t, err)
	defer sub.Cancel()

	require.NoError(t, feed.Publish(context.Background(), realtime.ChangeEvent{
		Collection: realtime.CollectionTables,
		Type:       realtime.EventUpdate,
		New:        realtime.Marshal(model.Table{ID: 3, TableNumber: 3, Capacity: 6, Status: model.TableAvailable}),
	}))

	require.Eventually(t, func() bool {
		for _, tbl := range s.Tables() {
			if tbl.ID == 3 && tbl.Status == model.TableAvailable {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}
