package model

// RevenueDay is one row of the daily revenue report, aggregated over paid
// orders.
type RevenueDay struct {
	Date         string `json:"date"` // YYYY-MM-DD
	TotalOrders  uint32 `json:"total_orders"`
	RevenueCents uint64 `json:"revenue_cents"`
	PeakHour     *uint8 `json:"peak_hour,omitempty"`
}

// DishSales aggregates how often a menu item sold over a reporting window.
type DishSales struct {
	MenuItemID   uint64 `json:"menu_item_id"`
	Name         string `json:"name"`
	QuantitySold uint64 `json:"quantity_sold"`
	RevenueCents uint64 `json:"revenue_cents"`
}
