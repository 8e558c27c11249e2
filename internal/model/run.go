package model

import "time"

// SegmentDescriptor is one sellable origin→destination sub-trip inside a
// published run.  Every descriptor carries its own schedule, price and
// seat count; descriptors that overlap on the physical stop sequence
// move their seat counts in lockstep (see the trip package).
//
// Fields:
//  SyntheticID    – identifier unique within the owning run; reservations
//                   reference segments by this id, so republishing must
//                   preserve it for unchanged origin/destination pairs.
//  Origin         – boarding point of the sub-trip.
//  Destination    – alighting point of the sub-trip.
//  DepartureDate  – calendar date of the run ("2006-01-02").
//  DepartureTime  – 12-hour wall-clock departure ("03:04 PM").
//  ArrivalTime    – 12-hour wall-clock arrival.
//  DayOffset      – whole days added to DepartureDate before the arrival
//                   wall-clock time applies; never negative.
//  Price          – fare in currency units, never negative.
//  AvailableSeats – remaining seats, always within [0, run capacity].
//  IsMainSegment  – true for exactly one descriptor per run: the full
//                   origin→destination journey.
type SegmentDescriptor struct {
	SyntheticID    string  `json:"synthetic_id"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureDate  string  `json:"departure_date"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    string  `json:"arrival_time"`
	DayOffset      int     `json:"day_offset"`
	Price          float64 `json:"price"`
	AvailableSeats int     `json:"available_seats"`
	IsMainSegment  bool    `json:"is_main_segment"`
}

// Key returns the origin/destination key that identifies a segment
// within its run across republishes.
func (s *SegmentDescriptor) Key() string {
	return SegmentKey(s.Origin, s.Destination)
}

// SegmentKey builds the canonical "origin-destination" lookup key.
func SegmentKey(origin, destination string) string {
	return origin + "-" + destination
}

// Run is one published, date-stamped instance of a RoutePlan.  The
// Segments array is the single shared mutable resource of the booking
// engine; it is only ever rewritten as a whole under the run's lock and
// an optimistic version check.
//
// Fields:
//  ID          – primary key identifier.
//  RouteID     – route the run was published from.
//  CompanyID   – owning company.
//  ServiceDate – calendar date of the main departure ("2006-01-02").
//  Capacity    – seat capacity of the physical vehicle; every segment's
//                AvailableSeats respects [0, Capacity] independently.
//  Points      – snapshot of the route's ordered point list at publish
//                time; later route edits never touch an existing run.
//  Segments    – main segment plus every enumerated sub-segment.
//  Version     – optimistic-concurrency token, bumped on every write of
//                the segment array.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Run struct {
	ID          uint64              // runs.id
	RouteID     uint64              // runs.route_id
	CompanyID   uint64              // runs.company_id
	ServiceDate string              // runs.service_date
	Capacity    int                 // runs.capacity
	Points      []string            // runs.points (JSON column)
	Segments    []SegmentDescriptor // runs.segments (JSON column)
	Version     uint64              // runs.version
	CreatedAt   time.Time           // runs.created_at
	UpdatedAt   time.Time           // runs.updated_at
}

// MainSegment returns the descriptor flagged as the full journey, or nil
// when the run is malformed.
func (r *Run) MainSegment() *SegmentDescriptor {
	for i := range r.Segments {
		if r.Segments[i].IsMainSegment {
			return &r.Segments[i]
		}
	}
	return nil
}

// SegmentByKey returns the descriptor for an origin/destination key, or
// nil when the key is not sold on this run.
func (r *Run) SegmentByKey(key string) *SegmentDescriptor {
	for i := range r.Segments {
		if r.Segments[i].Key() == key {
			return &r.Segments[i]
		}
	}
	return nil
}
