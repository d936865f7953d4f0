// Package queue defines the order events exchanged over the message broker
// and the background consumer that turns them into the kitchen ticket log.
package queue

// OrderPlacedEvent is published when an order is created. It carries enough
// for downstream consumers (ticket printer, notifications, analytics) to
// act without querying the database.
type OrderPlacedEvent struct {
	OrderID     uint64            `json:"order_id"`
	TableNumber uint32            `json:"table_number"`
	StaffName   string            `json:"staff_name"`
	Items       []OrderPlacedItem `json:"items"`
	Notes       string            `json:"notes,omitempty"`
	PlacedAt    string            `json:"placed_at"`
}

// OrderPlacedItem is one line of a placed order.
type OrderPlacedItem struct {
	Name     string `json:"name"`
	Quantity uint32 `json:"quantity"`
}

// OrderPaidEvent is published when an order is completed and paid.
type OrderPaidEvent struct {
	OrderID     uint64 `json:"order_id"`
	TableNumber uint32 `json:"table_number"`
	TotalCents  uint32 `json:"total_cents"`
	PaidAt      string `json:"paid_at"`
}
