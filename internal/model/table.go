package model

import "time"

// TableStatus is the lifecycle state of a dining table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableServing   TableStatus = "serving"
	TableReserved  TableStatus = "reserved"
)

// Valid reports whether s is a known table status.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableServing, TableReserved:
		return true
	}
	return false
}

// Table is a numbered dining table. CurrentOrderID references the open order
// being served at the table, if any; it is set when an order is created
// against the table and cleared when that order is paid.
type Table struct {
	ID             uint64      `json:"id"`
	TableNumber    uint32      `json:"table_number"`
	Capacity       uint32      `json:"capacity"`
	Status         TableStatus `json:"status"`
	CurrentOrderID *uint64     `json:"current_order_id,omitempty"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
