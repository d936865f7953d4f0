package store

import (
	"context"
	"strings"
	"sync"

	"restaurant-pos/internal/model"
)

// MenuData is the remote interface the menu store works against.
type MenuData interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
	InsertMenuItem(ctx context.Context, m model.MenuItem) (model.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uint64, upd model.MenuItemUpdate) (model.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uint64) error
}

// MenuStore mirrors the categories and menu_items collections and owns the
// menu page's filter state (selected category, free-text search).
type MenuStore struct {
	data MenuData

	mu         sync.Mutex
	items      []model.MenuItem
	categories []model.Category
	selected   *uint64 // category filter, nil = all
	query      string
	loading    bool
	err        string
}

// NewMenuStore builds a menu store over the given remote interface.
func NewMenuStore(data MenuData) *MenuStore {
	return &MenuStore{data: data}
}

// FetchCategories replaces the local category list with the remote result,
// ordered by display order.
func (s *MenuStore) FetchCategories(ctx context.Context) error {
	cats, err := s.data.ListCategories(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.categories = cats
	s.err = ""
	return nil
}

// FetchItems replaces the local item list with the remote result and joins
// each item to its category from the already-fetched category list. When
// categories have not been fetched yet the Category field stays nil; the
// store does not enforce an ordering between the two fetches.
func (s *MenuStore) FetchItems(ctx context.Context) error {
	s.setLoading(true)
	items, err := s.data.ListMenuItems(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	for i := range items {
		items[i].Category = s.categoryByIDLocked(items[i].CategoryID)
	}
	s.items = items
	s.err = ""
	return nil
}

// AddItem inserts a menu item remotely and appends the stored row locally
// on success.
func (s *MenuStore) AddItem(ctx context.Context, m model.MenuItem) (model.MenuItem, error) {
	stored, err := s.data.InsertMenuItem(ctx, m)
	if err != nil {
		return model.MenuItem{}, err
	}
	s.mu.Lock()
	stored.Category = s.categoryByIDLocked(stored.CategoryID)
	s.items = append(s.items, stored)
	s.mu.Unlock()
	return stored, nil
}

// UpdateItem applies a partial update remotely and replaces the matching
// local entry on success.
func (s *MenuStore) UpdateItem(ctx context.Context, id uint64, upd model.MenuItemUpdate) (model.MenuItem, error) {
	stored, err := s.data.UpdateMenuItem(ctx, id, upd)
	if err != nil {
		return model.MenuItem{}, err
	}
	s.mu.Lock()
	stored.Category = s.categoryByIDLocked(stored.CategoryID)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = stored
			break
		}
	}
	s.mu.Unlock()
	return stored, nil
}

// DeleteItem removes a menu item remotely and drops it locally on success.
func (s *MenuStore) DeleteItem(ctx context.Context, id uint64) error {
	if err := s.data.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return nil
}

// SetCategory sets or clears (nil) the category filter.
func (s *MenuStore) SetCategory(id *uint64) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

// SetSearch sets the free-text search query.
func (s *MenuStore) SetSearch(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Items returns a snapshot of the full item list.
func (s *MenuStore) Items() []model.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MenuItem, len(s.items))
	copy(out, s.items)
	return out
}

// Categories returns a snapshot of the category list.
func (s *MenuStore) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Filtered returns the menu page's derived view: available items narrowed
// by the store's current category and search filters.
func (s *MenuStore) Filtered() []model.MenuItem {
	s.mu.Lock()
	items := make([]model.MenuItem, len(s.items))
	copy(items, s.items)
	selected := s.selected
	query := s.query
	s.mu.Unlock()
	return FilterItems(items, selected, query)
}

// Err returns the last recorded fetch error message.
func (s *MenuStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Loading reports whether an item fetch is in flight.
func (s *MenuStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *MenuStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *MenuStore) categoryByIDLocked(id uint64) *model.Category {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return &s.categories[i]
		}
	}
	return nil
}

// FilterItems is the pure filtering rule behind the menu view: only
// available items, narrowed by exact category match when a category is
// selected and by a case-insensitive substring match on name or description
// when a query is set. Source order is preserved.
func FilterItems(items []model.MenuItem, category *uint64, query string) []model.MenuItem {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		if !it.IsAvailable {
			continue
		}
		if category != nil && it.CategoryID != *category {
			continue
		}
		if q != "" {
			name := strings.ToLower(it.Name)
			desc := ""
			if it.Description != nil {
				desc = strings.ToLower(*it.Description)
			}
			if !strings.Contains(name, q) && !strings.Contains(desc, q) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}
