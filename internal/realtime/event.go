// Package realtime carries row-level change events from the repositories to
// any number of subscribers. Every successful mutation on a watched
// collection publishes one event; stores apply the events to their in-memory
// mirrors without re-querying the database.
package realtime

import "encoding/json"

// EventType classifies a change event.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Collection names used on the feed. These match the database table names.
const (
	CollectionTables     = "tables"
	CollectionOrderItems = "order_items"
	CollectionMenuItems  = "menu_items"
)

// ChangeEvent describes one row-level change. Old carries the previous row
// state for updates and deletes, New the resulting state for inserts and
// updates. Rows travel as raw JSON so the feed stays schema-agnostic.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	Type       EventType       `json:"type"`
	Old        json.RawMessage `json:"old,omitempty"`
	New        json.RawMessage `json:"new,omitempty"`
}

// Matches reports whether the event passes the given type filter. An empty
// filter matches every event type.
func (ev ChangeEvent) Matches(types []EventType) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if ev.Type == t {
			return true
		}
	}
	return false
}
