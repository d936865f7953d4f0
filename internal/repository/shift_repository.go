package repository

import (
	"context"
	"database/sql"
	"errors"

	"restaurant-pos/internal/model"
)

// ShiftRepo provides persistence for the `work_shifts` table. A user has at
// most one shift row per date; CheckIn creates it, CheckOut closes it.
type ShiftRepo struct{ DB *sql.DB }

func NewShiftRepo(db *sql.DB) *ShiftRepo { return &ShiftRepo{DB: db} }

func scanShift(row interface{ Scan(...any) error }) (model.WorkShift, error) {
	var (
		s        model.WorkShift
		role     string
		checkIn  sql.NullTime
		checkOut sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.ShiftDate, &checkIn, &checkOut, &role)
	if err != nil {
		return model.WorkShift{}, err
	}
	s.Role = model.ParseRole(role)
	if checkIn.Valid {
		t := checkIn.Time
		s.CheckIn = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		s.CheckOut = &t
	}
	return s, nil
}

// ListByDate returns all shifts for the given date (YYYY-MM-DD), each
// embedding its user.
func (r *ShiftRepo) ListByDate(ctx context.Context, date string) ([]model.WorkShift, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.shift_date, s.check_in, s.check_out, s.role,
		       u.id, u.email, u.password_hash, u.role, u.full_name, u.phone, u.avatar_url, u.created_at
		FROM work_shifts s
		JOIN users u ON u.id = s.user_id
		WHERE s.shift_date = ?
		ORDER BY s.check_in, s.id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WorkShift
	for rows.Next() {
		var (
			s        model.WorkShift
			sRole    string
			checkIn  sql.NullTime
			checkOut sql.NullTime
			u        model.User
			uRole    string
			phone    sql.NullString
			avatar   sql.NullString
		)
		err := rows.Scan(&s.ID, &s.UserID, &s.ShiftDate, &checkIn, &checkOut, &sRole,
			&u.ID, &u.Email, &u.PasswordHash, &uRole, &u.FullName, &phone, &avatar, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		s.Role = model.ParseRole(sRole)
		if checkIn.Valid {
			t := checkIn.Time
			s.CheckIn = &t
		}
		if checkOut.Valid {
			t := checkOut.Time
			s.CheckOut = &t
		}
		u.Role = model.ParseRole(uRole)
		u.PasswordHash = ""
		if phone.Valid {
			u.Phone = &phone.String
		}
		if avatar.Valid {
			u.AvatarURL = &avatar.String
		}
		s.User = &u
		out = append(out, s)
	}
	return out, rows.Err()
}

// CheckIn opens today's shift for the user, recording the punch time and
// the role the user works the shift as. A second check-in on the same date
// maps to ErrConflict via the unique (user_id, shift_date) index.
func (r *ShiftRepo) CheckIn(ctx context.Context, userID uint64, role model.Role) (model.WorkShift, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO work_shifts (user_id, shift_date, check_in, role) VALUES (?, CURDATE(), NOW(), ?)",
		userID, string(role))
	if err != nil {
		if isDuplicateErr(err) {
			return model.WorkShift{}, ErrConflict
		}
		if isForeignKeyErr(err) {
			return model.WorkShift{}, ErrNotFound
		}
		return model.WorkShift{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.WorkShift{}, err
	}
	return r.getByID(ctx, uint64(id))
}

// CheckOut closes today's open shift for the user.
func (r *ShiftRepo) CheckOut(ctx context.Context, userID uint64) (model.WorkShift, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE work_shifts SET check_out=NOW() WHERE user_id=? AND shift_date=CURDATE() AND check_out IS NULL",
		userID)
	if err != nil {
		return model.WorkShift{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.WorkShift{}, ErrNotFound
	}
	var id uint64
	err = r.DB.QueryRowContext(ctx,
		"SELECT id FROM work_shifts WHERE user_id=? AND shift_date=CURDATE() LIMIT 1", userID).Scan(&id)
	if err != nil {
		return model.WorkShift{}, err
	}
	return r.getByID(ctx, id)
}

func (r *ShiftRepo) getByID(ctx context.Context, id uint64) (model.WorkShift, error) {
	s, err := scanShift(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, shift_date, check_in, check_out, role FROM work_shifts WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkShift{}, ErrNotFound
	}
	return s, err
}
