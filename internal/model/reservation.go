package model

import "time"

// ReservationStatus is the lifecycle state of a table reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Valid reports whether s is a known reservation status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

// Reservation books a table for a walk-in customer ahead of time.
// Confirming a reservation marks the table reserved; completing or
// cancelling it releases the table again.
type Reservation struct {
	ID              uint64            `json:"id"`
	TableID         uint64            `json:"table_id"`
	CustomerName    string            `json:"customer_name"`
	Phone           string            `json:"phone"`
	ReservationTime time.Time         `json:"reservation_time"`
	GuestCount      uint32            `json:"guest_count"`
	Status          ReservationStatus `json:"status"`
	Notes           *string           `json:"notes,omitempty"`
	Table           *Table            `json:"table,omitempty"`
}
