package model

import "time"

// WorkShift records one employee's working day. CheckIn/CheckOut are nil
// until the corresponding punch happens.
type WorkShift struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"user_id"`
	ShiftDate string     `json:"shift_date"` // YYYY-MM-DD
	CheckIn   *time.Time `json:"check_in,omitempty"`
	CheckOut  *time.Time `json:"check_out,omitempty"`
	Role      Role       `json:"role"`
	User      *User      `json:"user,omitempty"`
}
