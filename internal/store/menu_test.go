package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/model"
)

type fakeMenuData struct {
	categories []model.Category
	items      []model.MenuItem
	err        error
	nextID     uint64
}

func (f *fakeMenuData) ListCategories(context.Context) ([]model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeMenuData) ListMenuItems(context.Context) ([]model.MenuItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.MenuItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeMenuData) InsertMenuItem(_ context.Context, m model.MenuItem) (model.MenuItem, error) {
	if f.err != nil {
		return model.MenuItem{}, f.err
	}
	f.nextID++
	m.ID = f.nextID
	f.items = append(f.items, m)
	return m, nil
}

func (f *fakeMenuData) UpdateMenuItem(_ context.Context, id uint64, upd model.MenuItemUpdate) (model.MenuItem, error) {
	if f.err != nil {
		return model.MenuItem{}, f.err
	}
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if upd.Name != nil {
			f.items[i].Name = *upd.Name
		}
		if upd.PriceCents != nil {
			f.items[i].PriceCents = *upd.PriceCents
		}
		if upd.IsAvailable != nil {
			f.items[i].IsAvailable = *upd.IsAvailable
		}
		return f.items[i], nil
	}
	return model.MenuItem{}, errors.New("not found")
}

func (f *fakeMenuData) DeleteMenuItem(_ context.Context, id uint64) error {
	if f.err != nil {
		return f.err
	}
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func strp(s string) *string { return &s }

func u64p(v uint64) *uint64 { return &v }

func sampleMenu() *fakeMenuData {
	return &fakeMenuData{
		nextID: 4,
		categories: []model.Category{
			{ID: 1, Name: "Mains", DisplayOrder: 1},
			{ID: 2, Name: "Drinks", DisplayOrder: 2},
		},
		items: []model.MenuItem{
			{ID: 1, CategoryID: 1, Name: "Pad Thai", Description: strp("rice noodles with tamarind"), PriceCents: 1250, IsAvailable: true},
			{ID: 2, CategoryID: 1, Name: "Green Curry", PriceCents: 1400, IsAvailable: false},
			{ID: 3, CategoryID: 2, Name: "Thai Iced Tea", Description: strp("sweet, with condensed milk"), PriceCents: 450, IsAvailable: true},
			{ID: 4, CategoryID: 2, Name: "Water", PriceCents: 100, IsAvailable: true},
		},
	}
}

func TestFilterItems(t *testing.T) {
	items := sampleMenu().items

	t.Run("excludes unavailable", func(t *testing.T) {
		got := FilterItems(items, nil, "")
		require.Len(t, got, 3)
		for _, it := range got {
			assert.True(t, it.IsAvailable)
		}
	})

	t.Run("category narrows to exact match", func(t *testing.T) {
		got := FilterItems(items, u64p(2), "")
		require.Len(t, got, 2)
		assert.Equal(t, "Thai Iced Tea", got[0].Name)
		assert.Equal(t, "Water", got[1].Name)
	})

	t.Run("search matches name case-insensitively", func(t *testing.T) {
		got := FilterItems(items, nil, "PAD")
		require.Len(t, got, 1)
		assert.Equal(t, "Pad Thai", got[0].Name)
	})

	t.Run("search matches description", func(t *testing.T) {
		got := FilterItems(items, nil, "condensed")
		require.Len(t, got, 1)
		assert.Equal(t, "Thai Iced Tea", got[0].Name)
	})

	t.Run("category and search compose", func(t *testing.T) {
		got := FilterItems(items, u64p(1), "water")
		assert.Empty(t, got)
	})

	t.Run("source order preserved", func(t *testing.T) {
		got := FilterItems(items, nil, "")
		assert.Equal(t, uint64(1), got[0].ID)
		assert.Equal(t, uint64(3), got[1].ID)
		assert.Equal(t, uint64(4), got[2].ID)
	})
}

func TestMenuStoreFetchJoinsCategories(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)
	ctx := context.Background()

	require.NoError(t, s.FetchCategories(ctx))
	require.NoError(t, s.FetchItems(ctx))

	items := s.Items()
	require.Len(t, items, 4)
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "Mains", items[0].Category.Name)
	require.NotNil(t, items[2].Category)
	assert.Equal(t, "Drinks", items[2].Category.Name)
	assert.Empty(t, s.Err())
}

func TestMenuStoreFetchWithoutCategories(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)

	require.NoError(t, s.FetchItems(context.Background()))
	for _, it := range s.Items() {
		assert.Nil(t, it.Category)
	}
}

func TestMenuStoreFetchErrorKeepsPreviousItems(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))

	data.err = errors.New("connection refused")
	require.Error(t, s.FetchItems(ctx))

	assert.Len(t, s.Items(), 4, "failed fetch must not clobber the mirror")
	assert.Equal(t, "connection refused", s.Err())
	assert.False(t, s.Loading())
}

func TestMenuStoreAddItem(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)
	ctx := context.Background()
	require.NoError(t, s.FetchCategories(ctx))
	require.NoError(t, s.FetchItems(ctx))

	stored, err := s.AddItem(ctx, model.MenuItem{CategoryID: 2, Name: "Lemonade", PriceCents: 350, IsAvailable: true})
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	require.NotNil(t, stored.Category)
	assert.Equal(t, "Drinks", stored.Category.Name)
	assert.Len(t, s.Items(), 5)
}

func TestMenuStoreAddItemFailureLeavesMirror(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))

	data.err = errors.New("duplicate")
	_, err := s.AddItem(ctx, model.MenuItem{CategoryID: 1, Name: "Pad Thai"})
	require.Error(t, err)
	assert.Len(t, s.Items(), 4)
}

func TestMenuStoreUpdateItem(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))

	avail := true
	stored, err := s.UpdateItem(ctx, 2, model.MenuItemUpdate{IsAvailable: &avail})
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)

	for _, it := range s.Items() {
		if it.ID == 2 {
			assert.True(t, it.IsAvailable)
		}
	}
}

func TestMenuStoreDeleteItem(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))

	require.NoError(t, s.DeleteItem(ctx, 1))
	items := s.Items()
	assert.Len(t, items, 3)
	for _, it := range items {
		assert.NotEqual(t, uint64(1), it.ID)
	}
}

func TestMenuStoreFiltered(t *testing.T) {
	data := sampleMenu()
	s := NewMenuStore(data)
	ctx := context.Background()
	require.NoError(t, s.FetchItems(ctx))

	s.SetCategory(u64p(2))
	s.SetSearch("tea")
	got := s.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, "Thai Iced Tea", got[0].Name)

	s.SetCategory(nil)
	s.SetSearch("")
	assert.Len(t, s.Filtered(), 3)
}
