package model

import "time"

// OrderStatus is the lifecycle state of a customer order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderPaid       OrderStatus = "paid"
)

// OrderItemStatus tracks a single line of an order through the kitchen.
// Status only advances pending -> cooking -> completed.
type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "pending"
	ItemCooking   OrderItemStatus = "cooking"
	ItemCompleted OrderItemStatus = "completed"
)

// Valid reports whether s is a known order item status.
func (s OrderItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemCooking, ItemCompleted:
		return true
	}
	return false
}

// Order groups the items a table ordered in one sitting. TotalCents is zero
// at creation and authoritative only once the order is paid. Table, Staff
// and Items are populated by the joined list queries and may be nil/empty on
// rows loaded without embedding.
type Order struct {
	ID         uint64      `json:"id"`
	TableID    uint64      `json:"table_id"`
	StaffID    uint64      `json:"staff_id"`
	OrderTime  time.Time   `json:"order_time"`
	Status     OrderStatus `json:"status"`
	TotalCents uint32      `json:"total_cents"`
	Notes      *string     `json:"notes,omitempty"`
	Table      *Table      `json:"table,omitempty"`
	Staff      *User       `json:"staff,omitempty"`
	Items      []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order. CompletedAt is stamped only on the
// transition to completed.
type OrderItem struct {
	ID          uint64          `json:"id"`
	OrderID     uint64          `json:"order_id"`
	MenuItemID  uint64          `json:"menu_item_id"`
	Quantity    uint32          `json:"quantity"`
	Status      OrderItemStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	MenuItem    *MenuItem       `json:"menu_item,omitempty"`
	Order       *Order          `json:"order,omitempty"`
}

// NewOrder is the request to open an order for a table.
type NewOrder struct {
	TableID uint64
	StaffID uint64
	Notes   *string
	Items   []NewOrderItem
}

// NewOrderItem is one requested line of a new order.
type NewOrderItem struct {
	MenuItemID uint64
	Quantity   uint32
}
