// Package repository implements data access for the reservation
// service on top of database/sql. Sentinel errors declared here are
// shared across repositories so that handlers can translate failure
// scenarios into HTTP status codes: not-found sentinels become 404,
// validation sentinels 400 and conflict sentinels 409.
package repository

import "errors"

// ErrConflict is returned when a write cannot proceed because of
// existing dependent state, such as deleting a train that still has
// active bookings.
var ErrConflict = errors.New("conflict")

// Not-found sentinels. Lookup misses are expected and non-fatal.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrStationNotFound = errors.New("station not found")
	ErrTrainNotFound   = errors.New("train not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// Validation sentinels, detected before any write is attempted.
var (
	ErrNoPassengers     = errors.New("passenger list is empty")
	ErrInvalidPassenger = errors.New("passenger name, age and gender are required")
)

// Conflict sentinels for specific scenarios.
var (
	ErrUsernameExists    = errors.New("username already exists")
	ErrTrainNumberExists = errors.New("train number already exists")
	ErrHasActiveBookings = errors.New("train has active bookings")
	ErrAlreadyCancelled  = errors.New("booking already cancelled")
	ErrPNRExhausted      = errors.New("could not generate a unique pnr")
	ErrNoChange          = errors.New("no fields changed")
)
