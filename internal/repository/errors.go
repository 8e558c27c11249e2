// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed due to
// existing dependent records (e.g. deleting a run that still has
// confirmed reservations).
package repository

import "errors"

// ErrRouteNotFound indicates that a route was not located in the DB.
var ErrRouteNotFound = errors.New("route not found")

// ErrReservationNotFound indicates that a reservation was not located
// in the DB. Handlers should translate this into an HTTP 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a run whose segments
// are still referenced by confirmed reservations. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
