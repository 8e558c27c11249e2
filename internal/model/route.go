package model

import "time"

// RoutePlan is the static stop sequence an operator configures once and
// then publishes runs against.  Location names are human readable
// "City - Landmark" strings; Stops never contains Origin or Destination.
//
// Fields:
//  ID          – primary key identifier.
//  CompanyID   – operating company that owns the route.
//  Origin      – first boarding point of the full journey.
//  Destination – final alighting point of the full journey.
//  Stops       – ordered intermediate stops between origin and destination.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type RoutePlan struct {
	ID          uint64    // routes.id
	CompanyID   uint64    // routes.company_id
	Origin      string    // routes.origin
	Destination string    // routes.destination
	Stops       []string  // routes.stops (JSON column)
	CreatedAt   time.Time // routes.created_at
	UpdatedAt   time.Time // routes.updated_at
}

// Points returns the full ordered point list of the route:
// origin, each intermediate stop in order, destination.
func (r *RoutePlan) Points() []string {
	pts := make([]string, 0, len(r.Stops)+2)
	pts = append(pts, r.Origin)
	pts = append(pts, r.Stops...)
	pts = append(pts, r.Destination)
	return pts
}
