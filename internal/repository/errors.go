// Package repository implements the data access layer over MySQL. Each
// collection gets its own repo; sentinel errors let handlers map failures to
// HTTP statuses without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested row does not exist. Handlers
// translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert collides on the unique email
// index. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an operation cannot proceed because of
// dependent state, such as deleting a table that is currently serving an
// order. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicateErr recognizes the MySQL duplicate key error (1062).
func isDuplicateErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isForeignKeyErr recognizes the MySQL error codes for foreign key
// violations (1451 row is referenced, 1452 referenced row missing).
func isForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1451") || strings.Contains(msg, "1452")
}
