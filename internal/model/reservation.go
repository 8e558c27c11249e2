package model

import "time"

// Reservation records a passenger booking on one segment of a run.
// The seat delta it represents has always been applied to every
// overlapping segment of the run before the row becomes visible.
//
// Fields:
//  ID             – primary key identifier.
//  RunID          – run the booked segment belongs to.
//  SegmentID      – SyntheticID of the booked segment descriptor.
//  SegmentKey     – origin/destination key of the booked segment.
//  PassengerCount – number of seats taken, always positive.
//  PassengerName  – contact name for the booking.
//  PassengerPhone – contact phone, optional.
//  Status         – CONFIRMED or CANCELLED.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Reservation struct {
	ID             uint64    // reservations.id
	RunID          uint64    // reservations.run_id
	SegmentID      string    // reservations.segment_id
	SegmentKey     string    // reservations.segment_key
	PassengerCount int       // reservations.passenger_count
	PassengerName  string    // reservations.passenger_name
	PassengerPhone *string   // reservations.passenger_phone (nullable)
	Status         string    // reservations.status
	CreatedAt      time.Time // reservations.created_at
	UpdatedAt      time.Time // reservations.updated_at
}
