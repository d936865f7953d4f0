package repository

import (
	"context"
	"database/sql"
	"errors"

	"restaurant-pos/internal/model"
)

// CategoryRepo provides persistence for the `categories` table.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// List returns all categories ordered by display order.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, display_order, icon, created_at FROM categories ORDER BY display_order, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		var (
			c    model.Category
			icon sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder, &icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		if icon.Valid {
			c.Icon = &icon.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Insert creates a category and returns the stored row.
func (r *CategoryRepo) Insert(ctx context.Context, c model.Category) (model.Category, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, display_order, icon) VALUES (?,?,?)",
		c.Name, c.DisplayOrder, c.Icon)
	if err != nil {
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return r.getByID(ctx, uint64(id))
}

// Delete removes a category. Deleting a category that still has menu items
// maps to ErrConflict via the foreign key.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		if isForeignKeyErr(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) getByID(ctx context.Context, id uint64) (model.Category, error) {
	var (
		c    model.Category
		icon sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, display_order, icon, created_at FROM categories WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.DisplayOrder, &icon, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	return c, nil
}
