package repository

import (
	"context"
	"database/sql"
	"errors"

	"restaurant-pos/internal/model"
	"restaurant-pos/internal/realtime"
)

// TableRepo provides persistence for the `tables` table. Every mutation
// publishes a change event; table state is what the floor dashboards watch.
type TableRepo struct {
	DB   *sql.DB
	feed realtime.Feed
}

func NewTableRepo(db *sql.DB, feed realtime.Feed) *TableRepo {
	return &TableRepo{DB: db, feed: feed}
}

const tableColumns = "id, table_number, capacity, status, current_order_id, updated_at"

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var (
		t       model.Table
		status  string
		orderID sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.TableNumber, &t.Capacity, &status, &orderID, &t.UpdatedAt)
	if err != nil {
		return model.Table{}, err
	}
	t.Status = model.TableStatus(status)
	if orderID.Valid {
		id := uint64(orderID.Int64)
		t.CurrentOrderID = &id
	}
	return t, nil
}

// List returns all tables ordered by table number.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tableColumns+" FROM tables ORDER BY table_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID fetches one table.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
	t, err := scanTable(r.DB.QueryRowContext(ctx,
		"SELECT "+tableColumns+" FROM tables WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Table{}, ErrNotFound
	}
	return t, err
}

// Insert creates a table and returns the stored row.
func (r *TableRepo) Insert(ctx context.Context, t model.Table) (model.Table, error) {
	if t.Status == "" {
		t.Status = model.TableAvailable
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tables (table_number, capacity, status) VALUES (?,?,?)",
		t.TableNumber, t.Capacity, string(t.Status))
	if err != nil {
		return model.Table{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Table{}, err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return model.Table{}, err
	}
	r.publish(ctx, realtime.EventInsert, nil, &stored)
	return stored, nil
}

// UpdateStatus sets the table status and refreshes updated_at. When orderID
// is non-nil the current_order_id reference is set as well; a nil orderID
// leaves the reference untouched.
func (r *TableRepo) UpdateStatus(ctx context.Context, id uint64, status model.TableStatus, orderID *uint64) (model.Table, error) {
	prev, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Table{}, err
	}
	if orderID != nil {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE tables SET status=?, current_order_id=?, updated_at=NOW() WHERE id=?",
			string(status), *orderID, id)
	} else {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE tables SET status=?, updated_at=NOW() WHERE id=?",
			string(status), id)
	}
	if err != nil {
		return model.Table{}, err
	}
	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Table{}, err
	}
	r.publish(ctx, realtime.EventUpdate, &prev, &stored)
	return stored, nil
}

// Delete removes a table. A table that is currently serving an order cannot
// be removed.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	prev, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if prev.Status == model.TableServing {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tables WHERE id=?", id)
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

// markServingTx and freeTableTx are used by OrderRepo inside its
// transactions; the change event is published by the caller after commit.
func markServingTx(ctx context.Context, tx *sql.Tx, tableID, orderID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE tables SET status=?, current_order_id=?, updated_at=NOW() WHERE id=?",
		string(model.TableServing), orderID, tableID)
	return err
}

func freeTableTx(ctx context.Context, tx *sql.Tx, tableID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE tables SET status=?, current_order_id=NULL, updated_at=NOW() WHERE id=?",
		string(model.TableAvailable), tableID)
	return err
}

func (r *TableRepo) publish(ctx context.Context, t realtime.EventType, old, cur *model.Table) {
	if r.feed == nil {
		return
	}
	ev := realtime.ChangeEvent{Collection: realtime.CollectionTables, Type: t}
	if old != nil {
		ev.Old = realtime.Marshal(old)
	}
	if cur != nil {
		ev.New = realtime.Marshal(cur)
	}
	_ = r.feed.Publish(ctx, ev)
}
