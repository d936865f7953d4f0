package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

// MenuRepo provides persistence for the `menu_items` table. Mutations
// publish change events so admin terminals see each other's edits.
type MenuRepo struct {
	DB   *sql.DB
	feed realtime.Feed
}

func NewMenuRepo(db *sql.DB, feed realtime.Feed) *MenuRepo {
	return &MenuRepo{DB: db, feed: feed}
}

const menuItemColumns = "id, category_id, name, description, price_cents, image_url, is_available, badges, created_at"

func scanMenuItem(row interface{ Scan(...any) error }) (model.MenuItem, error) {
	var (
		m      model.MenuItem
		desc   sql.NullString
		img    sql.NullString
		badges sql.NullString
	)
	err := row.Scan(&m.ID, &m.CategoryID, &m.Name, &desc, &m.PriceCents, &img, &m.IsAvailable, &badges, &m.CreatedAt)
	if err != nil {
		return model.MenuItem{}, err
	}
	if desc.Valid {
		m.Description = &desc.String
	}
	if img.Valid {
		m.ImageURL = &img.String
	}
	if badges.Valid && badges.String != "" {
		// Badges are stored as a JSON array in a TEXT column.
		_ = json.Unmarshal([]byte(badges.String), &m.Badges)
	}
	return m, nil
}

func unmarshalBadges(s string, m *model.MenuItem) {
	_ = json.Unmarshal([]byte(s), &m.Badges)
}

func marshalBadges(badges []string) any {
	if len(badges) == 0 {
		return nil
	}
	b, err := json.Marshal(badges)
	if err != nil {
		return nil
	}
	return string(b)
}

// ListItems returns all menu items ordered by name. Availability filtering
// is a client concern; admin screens need the unavailable rows too.
func (r *MenuRepo) ListItems(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+menuItemColumns+" FROM menu_items ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetItem fetches one menu item by id.
func (r *MenuRepo) GetItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	m, err := scanMenuItem(r.DB.QueryRowContext(ctx,
		"SELECT "+menuItemColumns+" FROM menu_items WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuItem{}, ErrNotFound
	}
	return m, err
}

// InsertItem creates a menu item and returns the stored row.
func (r *MenuRepo) InsertItem(ctx context.Context, m model.MenuItem) (model.MenuItem, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO menu_items (category_id, name, description, price_cents, image_url, is_available, badges) VALUES (?,?,?,?,?,?,?)",
		m.CategoryID, m.Name, m.Description, m.PriceCents, m.ImageURL, m.IsAvailable, marshalBadges(m.Badges))
	if err != nil {
		if isForeignKeyErr(err) {
			return model.MenuItem{}, ErrConflict
		}
		return model.MenuItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MenuItem{}, err
	}
	stored, err := r.GetItem(ctx, uint64(id))
	if err != nil {
		return model.MenuItem{}, err
	}
	r.publish(ctx, realtime.EventInsert, nil, &stored)
	return stored, nil
}

// UpdateItem applies a partial update and returns the stored row. Nil
// fields of upd are left untouched.
func (r *MenuRepo) UpdateItem(ctx context.Context, id uint64, upd model.MenuItemUpdate) (model.MenuItem, error) {
	prev, err := r.GetItem(ctx, id)
	if err != nil {
		return model.MenuItem{}, err
	}

	query := "UPDATE menu_items SET "
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		if len(args) > 0 {
			query += ", "
		}
		query += col + "=?"
		args = append(args, v)
	}
	if upd.CategoryID != nil {
		add("category_id", *upd.CategoryID)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.PriceCents != nil {
		add("price_cents", *upd.PriceCents)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.IsAvailable != nil {
		add("is_available", *upd.IsAvailable)
	}
	if upd.Badges != nil {
		add("badges", marshalBadges(upd.Badges))
	}
	if len(args) == 0 {
		return prev, nil
	}
	query += " WHERE id=?"
	args = append(args, id)

	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyErr(err) {
			return model.MenuItem{}, ErrConflict
		}
		return model.MenuItem{}, err
	}
	stored, err := r.GetItem(ctx, id)
	if err != nil {
		return model.MenuItem{}, err
	}
	r.publish(ctx, realtime.EventUpdate, &prev, &stored)
	return stored, nil
}

// DeleteItem removes a menu item.
func (r *MenuRepo) DeleteItem(ctx context.Context, id uint64) error {
	prev, err := r.GetItem(ctx, id)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM menu_items WHERE id=?", id)
	if err != nil {
		if isForeignKeyErr(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	r.publish(ctx, realtime.EventDelete, &prev, nil)
	return nil
}

func (r *MenuRepo) publish(ctx context.Context, t realtime.EventType, old, cur *model.MenuItem) {
	if r.feed == nil {
		return
	}
	ev := realtime.ChangeEvent{Collection: realtime.CollectionMenuItems, Type: t}
	if old != nil {
		ev.Old = realtime.Marshal(old)
	}
	if cur != nil {
		ev.New = realtime.Marshal(cur)
	}
	_ = r.feed.Publish(ctx, ev)
}
