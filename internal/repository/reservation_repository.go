package repository

import (
	"context"
	"database/sql"
	"errors"

	"restaurant-pos/internal/model"
)

// ReservationRepo provides persistence for the `reservations` table.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationColumns = "r.id, r.table_id, r.customer_name, r.phone, r.reservation_time, r.guest_count, r.status, r.notes"

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res    model.Reservation
		status string
		notes  sql.NullString
	)
	err := row.Scan(&res.ID, &res.TableID, &res.CustomerName, &res.Phone,
		&res.ReservationTime, &res.GuestCount, &status, &notes)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationStatus(status)
	if notes.Valid {
		res.Notes = &notes.String
	}
	return res, nil
}

// List returns reservations soonest first, each embedding its table.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+reservationColumns+`,
		       t.id, t.table_number, t.capacity, t.status, t.current_order_id, t.updated_at
		FROM reservations r
		JOIN tables t ON t.id = r.table_id
		ORDER BY r.reservation_time, r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		var (
			res      model.Reservation
			status   string
			notes    sql.NullString
			t        model.Table
			tStatus  string
			tOrderID sql.NullInt64
		)
		err := rows.Scan(&res.ID, &res.TableID, &res.CustomerName, &res.Phone,
			&res.ReservationTime, &res.GuestCount, &status, &notes,
			&t.ID, &t.TableNumber, &t.Capacity, &tStatus, &tOrderID, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		res.Status = model.ReservationStatus(status)
		if notes.Valid {
			res.Notes = &notes.String
		}
		t.Status = model.TableStatus(tStatus)
		if tOrderID.Valid {
			id := uint64(tOrderID.Int64)
			t.CurrentOrderID = &id
		}
		res.Table = &t
		out = append(out, res)
	}
	return out, rows.Err()
}

// GetByID fetches one reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx, `
		SELECT `+reservationColumns+` FROM reservations r WHERE r.id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// Insert creates a reservation with status pending and returns the stored
// row.
func (r *ReservationRepo) Insert(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	if res.Status == "" {
		res.Status = model.ReservationPending
	}
	ins, err := r.DB.ExecContext(ctx,
		"INSERT INTO reservations (table_id, customer_name, phone, reservation_time, guest_count, status, notes) VALUES (?,?,?,?,?,?,?)",
		res.TableID, res.CustomerName, res.Phone, res.ReservationTime, res.GuestCount, string(res.Status), res.Notes)
	if err != nil {
		if isForeignKeyErr(err) {
			return model.Reservation{}, ErrConflict
		}
		return model.Reservation{}, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return model.Reservation{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// UpdateStatus moves a reservation through its lifecycle and returns the
// stored row. Table side effects (marking the table reserved or releasing
// it) are coordinated by the handler through the TableRepo so the change
// lands on the feed.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) (model.Reservation, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Reservation{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET status=? WHERE id=?", string(status), id); err != nil {
		return model.Reservation{}, err
	}
	return r.GetByID(ctx, id)
}
