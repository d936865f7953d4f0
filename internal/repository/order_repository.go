package repository

import (
	"context"
	"database/sql"
	"errors"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

// OrderRepo provides persistence for the `orders` and `order_items` tables.
// Creating and completing orders are multi-step writes (order rows, item
// rows, table state); each runs inside a single transaction so a failed step
// never leaves a half-created order behind. Item mutations publish change
// events on the order_items collection, table side effects on tables.
type OrderRepo struct {
	DB   *sql.DB
	feed realtime.Feed
}

func NewOrderRepo(db *sql.DB, feed realtime.Feed) *OrderRepo {
	return &OrderRepo{DB: db, feed: feed}
}

func scanOrderRow(row interface{ Scan(...any) error }) (model.Order, error) {
	var (
		o      model.Order
		status string
		notes  sql.NullString
	)
	err := row.Scan(&o.ID, &o.TableID, &o.StaffID, &o.OrderTime, &status, &o.TotalCents, &notes)
	if err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatus(status)
	if notes.Valid {
		o.Notes = &notes.String
	}
	return o, nil
}

func scanOrderItemRow(row interface{ Scan(...any) error }) (model.OrderItem, error) {
	var (
		it        model.OrderItem
		status    string
		completed sql.NullTime
	)
	err := row.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &status, &it.CreatedAt, &completed)
	if err != nil {
		return model.OrderItem{}, err
	}
	it.Status = model.OrderItemStatus(status)
	if completed.Valid {
		t := completed.Time
		it.CompletedAt = &t
	}
	return it, nil
}

// ListOrders returns all orders newest first, each embedding its table, the
// staff member who took it and its items with menu item details.
func (r *OrderRepo) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT o.id, o.table_id, o.staff_id, o.order_time, o.status, o.total_cents, o.notes,
		       t.id, t.table_number, t.capacity, t.status, t.current_order_id, t.updated_at,
		       u.id, u.email, u.password_hash, u.role, u.full_name, u.phone, u.avatar_url, u.created_at
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		JOIN users u ON u.id = o.staff_id
		ORDER BY o.order_time DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out   []model.Order
		index = make(map[uint64]int)
	)
	for rows.Next() {
		var (
			o         model.Order
			oStatus   string
			notes     sql.NullString
			t         model.Table
			tStatus   string
			tOrderID  sql.NullInt64
			u         model.User
			uRole     string
			uPhone    sql.NullString
			uAvatar   sql.NullString
		)
		err := rows.Scan(
			&o.ID, &o.TableID, &o.StaffID, &o.OrderTime, &oStatus, &o.TotalCents, &notes,
			&t.ID, &t.TableNumber, &t.Capacity, &tStatus, &tOrderID, &t.UpdatedAt,
			&u.ID, &u.Email, &u.PasswordHash, &uRole, &u.FullName, &uPhone, &uAvatar, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		o.Status = model.OrderStatus(oStatus)
		if notes.Valid {
			o.Notes = &notes.String
		}
		t.Status = model.TableStatus(tStatus)
		if tOrderID.Valid {
			id := uint64(tOrderID.Int64)
			t.CurrentOrderID = &id
		}
		u.Role = model.ParseRole(uRole)
		u.PasswordHash = ""
		if uPhone.Valid {
			u.Phone = &uPhone.String
		}
		if uAvatar.Valid {
			u.AvatarURL = &uAvatar.String
		}
		o.Table = &t
		o.Staff = &u
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	items, err := r.listItemsWithMenu(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := index[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, nil
}

// listItemsWithMenu returns every order item joined with its menu item,
// oldest first.
func (r *OrderRepo) listItemsWithMenu(ctx context.Context) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.status, oi.created_at, oi.completed_at,
		       m.id, m.category_id, m.name, m.description, m.price_cents, m.image_url, m.is_available, m.badges, m.created_at
		FROM order_items oi
		JOIN menu_items m ON m.id = oi.menu_item_id
		ORDER BY oi.created_at, oi.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var (
			it        model.OrderItem
			status    string
			completed sql.NullTime
			m         model.MenuItem
			desc      sql.NullString
			img       sql.NullString
			badges    sql.NullString
		)
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &status, &it.CreatedAt, &completed,
			&m.ID, &m.CategoryID, &m.Name, &desc, &m.PriceCents, &img, &m.IsAvailable, &badges, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		it.Status = model.OrderItemStatus(status)
		if completed.Valid {
			t := completed.Time
			it.CompletedAt = &t
		}
		if desc.Valid {
			m.Description = &desc.String
		}
		if img.Valid {
			m.ImageURL = &img.String
		}
		if badges.Valid && badges.String != "" {
			unmarshalBadges(badges.String, &m)
		}
		it.MenuItem = &m
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListItems returns the flat, cross-order item list the kitchen works from:
// every order item with its menu item and parent order (including the
// order's table), oldest created_at first.
func (r *OrderRepo) ListItems(ctx context.Context) ([]model.OrderItem, error) {
	items, err := r.listItemsWithMenu(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT o.id, o.table_id, o.staff_id, o.order_time, o.status, o.total_cents, o.notes,
		       t.id, t.table_number, t.capacity, t.status, t.current_order_id, t.updated_at
		FROM orders o
		JOIN tables t ON t.id = o.table_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make(map[uint64]*model.Order)
	for rows.Next() {
		var (
			o        model.Order
			oStatus  string
			notes    sql.NullString
			t        model.Table
			tStatus  string
			tOrderID sql.NullInt64
		)
		err := rows.Scan(
			&o.ID, &o.TableID, &o.StaffID, &o.OrderTime, &oStatus, &o.TotalCents, &notes,
			&t.ID, &t.TableNumber, &t.Capacity, &tStatus, &tOrderID, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		o.Status = model.OrderStatus(oStatus)
		if notes.Valid {
			o.Notes = &notes.String
		}
		t.Status = model.TableStatus(tStatus)
		if tOrderID.Valid {
			id := uint64(tOrderID.Int64)
			t.CurrentOrderID = &id
		}
		o.Table = &t
		orders[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Order = orders[items[i].OrderID]
	}
	return items, nil
}

// Create opens an order for a table: inserts the order row with status
// pending and a zero total, bulk-inserts its items with status pending, and
// marks the table serving with current_order_id pointing at the new order.
// All three steps commit atomically. The returned order embeds table, staff
// and items.
func (r *OrderRepo) Create(ctx context.Context, req model.NewOrder) (model.Order, error) {
	if len(req.Items) == 0 {
		return model.Order{}, errors.New("order needs at least one item")
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (table_id, staff_id, order_time, status, total_cents, notes) VALUES (?,?,NOW(),?,0,?)",
		req.TableID, req.StaffID, string(model.OrderPending), req.Notes)
	if err != nil {
		if isForeignKeyErr(err) {
			return model.Order{}, ErrConflict
		}
		return model.Order{}, err
	}
	rawID, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	orderID := uint64(rawID)

	query := "INSERT INTO order_items (order_id, menu_item_id, quantity, status, created_at) VALUES "
	args := make([]any, 0, len(req.Items)*4)
	for i, it := range req.Items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,NOW())"
		args = append(args, orderID, it.MenuItemID, it.Quantity, string(model.ItemPending))
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyErr(err) {
			return model.Order{}, ErrConflict
		}
		return model.Order{}, err
	}

	if err := markServingTx(ctx, tx, req.TableID, orderID); err != nil {
		return model.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true

	order, err := r.GetJoined(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	for i := range order.Items {
		it := order.Items[i]
		it.MenuItem = nil
		it.Order = nil
		r.publishItem(ctx, realtime.EventInsert, nil, &it)
	}
	r.publishTable(ctx, order.Table)
	return order, nil
}

// UpdateItemStatus advances one order item through the kitchen. The
// completion timestamp is stamped only on the transition to completed.
func (r *OrderRepo) UpdateItemStatus(ctx context.Context, id uint64, status model.OrderItemStatus) (model.OrderItem, error) {
	prev, err := r.getItem(ctx, id)
	if err != nil {
		return model.OrderItem{}, err
	}
	if status == model.ItemCompleted {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE order_items SET status=?, completed_at=NOW() WHERE id=?", string(status), id)
	} else {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE order_items SET status=? WHERE id=?", string(status), id)
	}
	if err != nil {
		return model.OrderItem{}, err
	}
	stored, err := r.getItem(ctx, id)
	if err != nil {
		return model.OrderItem{}, err
	}
	r.publishItem(ctx, realtime.EventUpdate, &prev, &stored)
	return stored, nil
}

// Complete marks the order paid with its final total and frees the order's
// table. The returned order embeds table, staff and items.
func (r *OrderRepo) Complete(ctx context.Context, orderID uint64, totalCents uint32) (model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status=?, total_cents=? WHERE id=?",
		string(model.OrderPaid), totalCents, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM orders WHERE id=?)", orderID).Scan(&exists); err != nil {
			return model.Order{}, err
		}
		if !exists {
			return model.Order{}, ErrNotFound
		}
	}

	var tableID uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT table_id FROM orders WHERE id=?", orderID).Scan(&tableID); err != nil {
		return model.Order{}, err
	}
	if err := freeTableTx(ctx, tx, tableID); err != nil {
		return model.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true

	order, err := r.GetJoined(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	r.publishTable(ctx, order.Table)
	return order, nil
}

// GetJoined fetches one order with its table, staff and items embedded.
func (r *OrderRepo) GetJoined(ctx context.Context, id uint64) (model.Order, error) {
	o, err := scanOrderRow(r.DB.QueryRowContext(ctx,
		"SELECT id, table_id, staff_id, order_time, status, total_cents, notes FROM orders WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}

	t, err := scanTable(r.DB.QueryRowContext(ctx,
		"SELECT "+tableColumns+" FROM tables WHERE id=? LIMIT 1", o.TableID))
	if err == nil {
		o.Table = &t
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, err
	}

	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", o.StaffID))
	if err == nil {
		u.PasswordHash = ""
		o.Staff = &u
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, menu_item_id, quantity, status, created_at, completed_at FROM order_items WHERE order_id=? ORDER BY created_at, id", id)
	if err != nil {
		return model.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanOrderItemRow(rows)
		if err != nil {
			return model.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *OrderRepo) getItem(ctx context.Context, id uint64) (model.OrderItem, error) {
	it, err := scanOrderItemRow(r.DB.QueryRowContext(ctx,
		"SELECT id, order_id, menu_item_id, quantity, status, created_at, completed_at FROM order_items WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.OrderItem{}, ErrNotFound
	}
	return it, err
}

// publishItem emits a change event for a bare order item row. Joined menu
// and order details are not part of the payload; subscribers merge the row
// into what they already hold and the periodic reconcile fetch restores the
// embedding.
func (r *OrderRepo) publishItem(ctx context.Context, t realtime.EventType, old, cur *model.OrderItem) {
	if r.feed == nil {
		return
	}
	ev := realtime.ChangeEvent{Collection: realtime.CollectionOrderItems, Type: t}
	if old != nil {
		ev.Old = realtime.Marshal(old)
	}
	if cur != nil {
		ev.New = realtime.Marshal(cur)
	}
	_ = r.feed.Publish(ctx, ev)
}

func (r *OrderRepo) publishTable(ctx context.Context, t *model.Table) {
	if r.feed == nil || t == nil {
		return
	}
	_ = r.feed.Publish(ctx, realtime.ChangeEvent{
		Collection: realtime.CollectionTables,
		Type:       realtime.EventUpdate,
		New:        realtime.Marshal(t),
	})
}
