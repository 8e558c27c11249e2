// Package trip implements the multi-stop segmentation and shared-capacity
// engine: enumerating sellable sub-segments of a route, allocating times
// and fares to each, and keeping the seat counts of physically
// overlapping segments consistent under concurrent bookings.
package trip

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run id does not resolve to a stored
// run. Handlers should translate this into an HTTP 404 response.
var ErrRunNotFound = errors.New("run not found")

// ErrSegmentNotFound is returned when an origin/destination key is not
// sold on the referenced run.
var ErrSegmentNotFound = errors.New("segment not found")

// ErrCapacityViolation is returned when a seat delta would drive any
// overlapping segment's available seats outside [0, capacity]. The
// attempted mutation is rejected as a whole; nothing is clamped.
var ErrCapacityViolation = errors.New("capacity violation")

// ErrVersionConflict is returned by the run store when the stored
// segment array changed between load and write. The coordinator retries
// a bounded number of times before giving up.
var ErrVersionConflict = errors.New("run version conflict")

// InputError reports a malformed route or publish request. It is
// surfaced to the operator at publish time, never deferred.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "invalid input: " + e.Reason }

// ScheduleAmbiguityError reports a segment whose departure and arrival
// could not be resolved under any resolution tier. An unresolved
// segment is a published-trip defect, so publishing fails instead of
// defaulting silently.
type ScheduleAmbiguityError struct {
	Origin      string
	Destination string
	Reason      string
}

func (e *ScheduleAmbiguityError) Error() string {
	return fmt.Sprintf("cannot resolve schedule for %s-%s: %s", e.Origin, e.Destination, e.Reason)
}
