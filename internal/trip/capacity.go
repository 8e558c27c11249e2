package trip

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/andariego/trip-reservation/internal/model"
)

// RunStore is the persistence contract the coordinator depends on.
type RunStore interface {
	// GetRun loads a run by id, failing with ErrRunNotFound when the
	// id does not resolve.
	GetRun(ctx context.Context, runID uint64) (*model.Run, error)
	// UpdateSegments writes run.Segments back conditionally: it fails
	// with ErrVersionConflict when the stored version changed since the
	// run was loaded. When then is non-nil it runs inside the same
	// transaction before commit, so a reservation outcome and its seat
	// delta become visible together or not at all.
	UpdateSegments(ctx context.Context, run *model.Run, then func(tx *sql.Tx) error) error
}

// Coordinator is the consistency engine of the booking flow: it applies
// a signed passenger delta to every segment of a run that physically
// overlaps a booked origin→destination interval, atomically and
// all-or-nothing.
type Coordinator struct {
	store      RunStore
	locks      *runLocks
	maxRetries int
}

// NewCoordinator builds a coordinator over the given store.
func NewCoordinator(store RunStore) *Coordinator {
	return &Coordinator{store: store, locks: newRunLocks(), maxRetries: 3}
}

// overlapping returns the indices of every descriptor in the run whose
// point-index interval overlaps [i, j]. Two intervals overlap when they
// share at least one physical stop-to-stop hop; touching at a single
// stop is not overlap, since no seat is occupied there by both.
func overlapping(run *model.Run, i, j int) []int {
	var out []int
	for idx := range run.Segments {
		seg := &run.Segments[idx]
		si := pointIndex(run.Points, seg.Origin)
		sj := pointIndex(run.Points, seg.Destination)
		if si < 0 || sj < 0 {
			continue
		}
		lo, hi := si, sj
		if lo > hi {
			lo, hi = hi, lo
		}
		if max(lo, i) < min(hi, j) {
			out = append(out, idx)
		}
	}
	return out
}

// applyToRun mutates the loaded run in memory: it locates the booked
// segment, collects every overlapping descriptor and adds delta to each
// one's available seats. If any single adjustment would leave a
// descriptor outside [0, capacity] nothing is changed and
// ErrCapacityViolation is returned; an over-sell must block the
// booking, not silently clamp.
func applyToRun(run *model.Run, segmentKey string, delta int) error {
	booked := run.SegmentByKey(segmentKey)
	if booked == nil {
		return ErrSegmentNotFound
	}
	i := pointIndex(run.Points, booked.Origin)
	j := pointIndex(run.Points, booked.Destination)
	if i < 0 || j < 0 || i >= j {
		return ErrSegmentNotFound
	}
	targets := overlapping(run, i, j)
	for _, idx := range targets {
		next := run.Segments[idx].AvailableSeats + delta
		if next < 0 || next > run.Capacity {
			return ErrCapacityViolation
		}
	}
	for _, idx := range targets {
		run.Segments[idx].AvailableSeats += delta
	}
	return nil
}

// ApplyDelta applies a signed passenger delta (negative on booking,
// positive on cancellation) to the segment identified by segmentKey and
// every segment overlapping it, then persists the run. The optional
// then callback runs inside the persistence transaction, letting the
// caller commit its reservation row in the same unit. The whole
// operation serializes per run and retries a bounded number of times on
// version conflicts from other processes.
func (c *Coordinator) ApplyDelta(ctx context.Context, runID uint64, segmentKey string, delta int, then func(tx *sql.Tx) error) (*model.Run, error) {
	mu := c.locks.get(runID)
	mu.Lock()
	defer mu.Unlock()
	return c.applyLocked(ctx, runID, segmentKey, delta, then)
}

// Locked runs fn while holding the run's lock, serializing it against
// every seat mutation on the same run. Republish and delete use this to
// avoid racing concurrent bookings.
func (c *Coordinator) Locked(runID uint64, fn func() error) error {
	mu := c.locks.get(runID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (c *Coordinator) applyLocked(ctx context.Context, runID uint64, segmentKey string, delta int, then func(tx *sql.Tx) error) (*model.Run, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		run, err := c.store.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if err := applyToRun(run, segmentKey, delta); err != nil {
			return nil, err
		}
		if err := c.store.UpdateSegments(ctx, run, then); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return run, nil
	}
	return nil, lastErr
}

// Transfer moves a booking of passengers seats from one run segment to
// another, possibly on a different run. Seats are taken on the target
// first, so the most likely failure (no space) happens before anything
// changes; the source release then carries the caller's reservation
// update in its transaction. If the release fails the target seats are
// handed back. Both run locks are held for the whole transfer, in
// ascending run-id order so concurrent transfers cannot deadlock.
func (c *Coordinator) Transfer(ctx context.Context, fromRun uint64, fromKey string, toRun uint64, toKey string, passengers int, then func(tx *sql.Tx) error) error {
	if passengers <= 0 {
		return &InputError{Reason: "passenger count must be positive"}
	}
	first, second := fromRun, toRun
	if first > second {
		first, second = second, first
	}
	mu1 := c.locks.get(first)
	mu1.Lock()
	defer mu1.Unlock()
	if second != first {
		mu2 := c.locks.get(second)
		mu2.Lock()
		defer mu2.Unlock()
	}

	if _, err := c.applyLocked(ctx, toRun, toKey, -passengers, nil); err != nil {
		return err
	}
	if _, err := c.applyLocked(ctx, fromRun, fromKey, passengers, then); err != nil {
		// Hand the target seats back; the transfer never happened.
		if _, compErr := c.applyLocked(ctx, toRun, toKey, passengers, nil); compErr != nil {
			log.Printf("transfer: compensation failed for run %d segment %s: %v", toRun, toKey, compErr)
		}
		return err
	}
	return nil
}
