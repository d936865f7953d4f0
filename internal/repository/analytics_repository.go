package repository

import (
	"context"
	"database/sql"

	"restaurant-pos/internal/model"
)

// AnalyticsRepo derives the admin reports with aggregate queries over paid
// orders. Nothing is materialized; a POS installation is small enough to
// aggregate on demand.
type AnalyticsRepo struct{ DB *sql.DB }

func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{DB: db} }

// RevenuePerDay returns one row per day over the last `days` days, newest
// first: number of paid orders, revenue and the hour with the most orders.
func (r *AnalyticsRepo) RevenuePerDay(ctx context.Context, days int) ([]model.RevenueDay, error) {
	if days < 1 {
		days = 1
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DATE(order_time) AS d,
		       COUNT(*) AS total_orders,
		       COALESCE(SUM(total_cents), 0) AS revenue
		FROM orders
		WHERE status = ? AND order_time >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		GROUP BY d
		ORDER BY d DESC`, string(model.OrderPaid), days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RevenueDay
	for rows.Next() {
		var day model.RevenueDay
		if err := rows.Scan(&day.Date, &day.TotalOrders, &day.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		hour, err := r.peakHour(ctx, out[i].Date)
		if err != nil {
			return nil, err
		}
		out[i].PeakHour = hour
	}
	return out, nil
}

// peakHour returns the busiest hour of the given day, or nil when the day
// had no paid orders.
func (r *AnalyticsRepo) peakHour(ctx context.Context, date string) (*uint8, error) {
	var hour uint8
	err := r.DB.QueryRowContext(ctx, `
		SELECT HOUR(order_time) AS h
		FROM orders
		WHERE status = ? AND DATE(order_time) = ?
		GROUP BY h
		ORDER BY COUNT(*) DESC, h
		LIMIT 1`, string(model.OrderPaid), date).Scan(&hour)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hour, nil
}

// TopDishes returns the best selling menu items over the last `days` days.
func (r *AnalyticsRepo) TopDishes(ctx context.Context, days, limit int) ([]model.DishSales, error) {
	if days < 1 {
		days = 1
	}
	if limit < 1 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.name,
		       COALESCE(SUM(oi.quantity), 0) AS sold,
		       COALESCE(SUM(oi.quantity * m.price_cents), 0) AS revenue
		FROM order_items oi
		JOIN menu_items m ON m.id = oi.menu_item_id
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = ? AND o.order_time >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		GROUP BY m.id, m.name
		ORDER BY sold DESC, m.name
		LIMIT ?`, string(model.OrderPaid), days, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DishSales
	for rows.Next() {
		var d model.DishSales
		if err := rows.Scan(&d.MenuItemID, &d.Name, &d.QuantitySold, &d.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
