package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

// TableData is the remote interface the table store works against.
type TableData interface {
	ListTables(ctx context.Context) ([]model.Table, error)
	InsertTable(ctx context.Context, t model.Table) (model.Table, error)
	UpdateTableStatus(ctx context.Context, id uint64, status model.TableStatus, orderID *uint64) (model.Table, error)
	DeleteTable(ctx context.Context, id uint64) error
}

// TableStore mirrors the tables collection, ordered by table number. A feed
// subscription keeps the mirror in sync with writes made by other
// terminals.
type TableStore struct {
	data TableData
	feed realtime.Feed

	mu      sync.Mutex
	tables  []model.Table
	loading bool
	err     string
}

// NewTableStore builds a table store over the given remote interface and
// feed. The feed may be nil when realtime updates are not needed (tests,
// one-shot tools).
func NewTableStore(data TableData, feed realtime.Feed) *TableStore {
	return &TableStore{data: data, feed: feed}
}

// Fetch replaces the local array with the remote result.
func (s *TableStore) Fetch(ctx context.Context) error {
	s.setLoading(true)
	tables, err := s.data.ListTables(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.tables = tables
	s.err = ""
	return nil
}

// UpdateStatus updates a table's status (and optionally its current order
// reference) remotely, then patches the local entry on success.
func (s *TableStore) UpdateStatus(ctx context.Context, id uint64, status model.TableStatus, orderID *uint64) (model.Table, error) {
	stored, err := s.data.UpdateTableStatus(ctx, id, status, orderID)
	if err != nil {
		return model.Table{}, err
	}
	s.mu.Lock()
	s.replaceLocked(stored)
	s.mu.Unlock()
	return stored, nil
}

// Add inserts a table remotely and appends it locally on success.
func (s *TableStore) Add(ctx context.Context, t model.Table) (model.Table, error) {
	stored, err := s.data.InsertTable(ctx, t)
	if err != nil {
		return model.Table{}, err
	}
	s.mu.Lock()
	s.tables = append(s.tables, stored)
	s.mu.Unlock()
	return stored, nil
}

// Delete removes a table remotely and drops it locally on success.
func (s *TableStore) Delete(ctx context.Context, id uint64) error {
	if err := s.data.DeleteTable(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.removeLocked(id)
	s.mu.Unlock()
	return nil
}

// Tables returns a snapshot of the local array.
func (s *TableStore) Tables() []model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Table, len(s.tables))
	copy(out, s.tables)
	return out
}

// Err returns the last recorded fetch error message.
func (s *TableStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Subscribe opens a realtime subscription on the tables collection and
// applies every pushed event directly to the local array: insert appends,
// update replaces the matching entry, delete removes it. No re-fetch is
// issued. The returned handle cancels the subscription; the store is not
// responsible for teardown timing.
func (s *TableStore) Subscribe() (*realtime.Subscription, error) {
	sub, err := s.feed.Subscribe(realtime.CollectionTables)
	if err != nil {
		return nil, err
	}
	go func() {
		for ev := range sub.C {
			s.Apply(ev)
		}
	}()
	return sub, nil
}

// Apply patches the local array from one change event.
func (s *TableStore) Apply(ev realtime.ChangeEvent) {
	switch ev.Type {
	case realtime.EventInsert, realtime.EventUpdate:
		var t model.Table
		if err := json.Unmarshal(ev.New, &t); err != nil {
			log.Printf("tables: bad %s payload: %v", ev.Type, err)
			return
		}
		s.mu.Lock()
		if ev.Type == realtime.EventInsert {
			s.tables = append(s.tables, t)
		} else {
			s.replaceLocked(t)
		}
		s.mu.Unlock()
	case realtime.EventDelete:
		var t model.Table
		if err := json.Unmarshal(ev.Old, &t); err != nil {
			log.Printf("tables: bad delete payload: %v", err)
			return
		}
		s.mu.Lock()
		s.removeLocked(t.ID)
		s.mu.Unlock()
	}
}

func (s *TableStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *TableStore) replaceLocked(t model.Table) {
	for i := range s.tables {
		if s.tables[i].ID == t.ID {
			s.tables[i] = t
			return
		}
	}
}

func (s *TableStore) removeLocked(id uint64) {
	kept := s.tables[:0]
	for _, t := range s.tables {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tables = kept
}
