package trip

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/andariego/trip-reservation/internal/model"
)

// BuildInput collects everything needed to build the segment array of
// one run on one service date.
type BuildInput struct {
	Points        []string // full ordered point list of the route
	ServiceDate   string   // calendar date of the main departure ("2006-01-02")
	MainDeparture model.ClockTime
	MainArrival   model.ClockTime
	Capacity      int
	TotalFare     float64
	Tariffs       []model.TariffEntry
	StopTimes     []model.StopTimeEntry
	Fare          *FareConfig // nil means DefaultFareConfig
}

// BuildResult carries the built segment array plus non-fatal warnings.
// Fare fallbacks are warnings: the operator can correct a price after
// publish, so they never block the run.
type BuildResult struct {
	Segments []model.SegmentDescriptor
	Warnings []string
}

// newSyntheticID generates a segment identifier unique within a run.
// crypto/rand keeps ids unguessable across republishes.
func newSyntheticID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// BuildSegments constructs the full descriptor array of a fresh run:
// the main segment first, flagged IsMainSegment, then one descriptor
// per enumerated pair, each with a fresh synthetic id and the full
// capacity available. Input and schedule errors abort the build.
func BuildSegments(in BuildInput) (BuildResult, error) {
	if err := ValidatePoints(in.Points); err != nil {
		return BuildResult{}, err
	}
	if in.Capacity <= 0 {
		return BuildResult{}, &InputError{Reason: "capacity must be positive"}
	}
	if in.TotalFare < 0 {
		return BuildResult{}, &InputError{Reason: "total fare cannot be negative"}
	}
	cfg := DefaultFareConfig()
	if in.Fare != nil {
		cfg = *in.Fare
	}

	sched, err := NewScheduleAllocator(in.Points, in.MainDeparture, in.MainArrival, in.Tariffs, in.StopTimes)
	if err != nil {
		return BuildResult{}, err
	}
	fares := NewFareAllocator(in.Points, in.TotalFare, in.Tariffs, cfg)

	mainTime, err := sched.MainTime()
	if err != nil {
		return BuildResult{}, err
	}
	origin := in.Points[0]
	destination := in.Points[len(in.Points)-1]

	var res BuildResult
	mainID, err := newSyntheticID()
	if err != nil {
		return BuildResult{}, err
	}
	res.Segments = append(res.Segments, model.SegmentDescriptor{
		SyntheticID:    mainID,
		Origin:         origin,
		Destination:    destination,
		DepartureDate:  in.ServiceDate,
		DepartureTime:  mainTime.Departure,
		ArrivalTime:    mainTime.Arrival,
		DayOffset:      mainTime.DayOffset,
		Price:          fares.MainFare(model.SegmentKey(origin, destination)),
		AvailableSeats: in.Capacity,
		IsMainSegment:  true,
	})

	for _, pair := range EnumeratePairs(in.Points) {
		st, err := sched.TimeFor(pair)
		if err != nil {
			return BuildResult{}, err
		}
		price, fellBack := fares.PriceFor(pair)
		if fellBack {
			res.Warnings = append(res.Warnings, fmt.Sprintf("fare fallback applied for %s", pair.Key()))
		}
		id, err := newSyntheticID()
		if err != nil {
			return BuildResult{}, err
		}
		res.Segments = append(res.Segments, model.SegmentDescriptor{
			SyntheticID:    id,
			Origin:         pair.Origin,
			Destination:    pair.Destination,
			DepartureDate:  in.ServiceDate,
			DepartureTime:  st.Departure,
			ArrivalTime:    st.Arrival,
			DayOffset:      st.DayOffset,
			Price:          price,
			AvailableSeats: in.Capacity,
		})
	}
	return res, nil
}

// RebuildSegments builds a replacement descriptor array for an existing
// run. Descriptors whose origin/destination key survives the edit keep
// their synthetic id, and their seat count is recomputed from what was
// already sold under the old capacity, so a capacity change carries the
// live bookings over instead of the stale count: seats sold stay sold,
// and available seats always land within [0, new capacity]. A capacity
// reduction below a segment's sold count rejects the whole republish.
// Only genuinely new pairs receive a fresh id and full capacity. This
// is what keeps existing reservations pointing at valid segments after
// a schedule, price or capacity edit.
func RebuildSegments(in BuildInput, oldCapacity int, existing []model.SegmentDescriptor) (BuildResult, error) {
	res, err := BuildSegments(in)
	if err != nil {
		return BuildResult{}, err
	}
	byKey := make(map[string]model.SegmentDescriptor, len(existing))
	for _, seg := range existing {
		byKey[seg.Key()] = seg
	}
	for i := range res.Segments {
		prev, ok := byKey[res.Segments[i].Key()]
		if !ok {
			continue
		}
		sold := oldCapacity - prev.AvailableSeats
		if sold < 0 {
			sold = 0
		}
		avail := in.Capacity - sold
		if avail < 0 {
			return BuildResult{}, &InputError{Reason: fmt.Sprintf(
				"capacity %d is below the %d seats already sold on %s", in.Capacity, sold, res.Segments[i].Key())}
		}
		res.Segments[i].SyntheticID = prev.SyntheticID
		res.Segments[i].AvailableSeats = avail
	}
	return res, nil
}
