// Package queue defines message payloads exchanged over the message broker.
package queue

// SeatsChangedEvent is published after every successful seat-count
// mutation on a run: booking, cancellation or transfer. It carries
// enough information for downstream consumers to log, reconcile, or
// trigger analytics without querying the primary database.
type SeatsChangedEvent struct {
	RunID          uint64 `json:"run_id"`
	RouteID        uint64 `json:"route_id"`
	CompanyID      uint64 `json:"company_id"`
	ServiceDate    string `json:"service_date"`
	SegmentID      string `json:"segment_id"`
	SegmentKey     string `json:"segment_key"`
	PassengerDelta int    `json:"passenger_delta"`
	SeatsRemaining int    `json:"seats_remaining"`
	Reason         string `json:"reason"` // BOOKED, CANCELLED or TRANSFERRED
	OccurredAt     string `json:"occurred_at"`
}
