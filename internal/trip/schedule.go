package trip

import (
	"math"

	"github.com/andariego/trip-reservation/internal/model"
)

// SegmentTime is the resolved schedule of one segment: formatted
// 12-hour departure and arrival plus the number of whole days the
// departure falls after the run's service date.
type SegmentTime struct {
	Departure string
	Arrival   string
	DayOffset int
}

// ScheduleAllocator resolves a departure/arrival time for every
// enumerated pair of one run. Three sources are consulted per pair,
// first match wins:
//
//  1. a tariff entry for the exact pair carrying its own times,
//  2. an explicit stop-time table covering both endpoints,
//  3. proportional interpolation of the main journey duration.
//
// All arithmetic is done in integer minutes since midnight of the
// service date; day offsets are always computed, on every tier.
type ScheduleAllocator struct {
	points      []string
	mainDep     model.ClockTime
	mainArr     model.ClockTime
	depMinutes  int
	arrMinutes  int // normalized so that arrMinutes >= depMinutes
	mainErr     error
	tariffs     map[string]model.TariffEntry
	stopTimes   map[string]model.StopTimeEntry
	stopOffsets map[string]int // running day offset per listed location
}

// NewScheduleAllocator prepares an allocator for one run. Stop-time
// entries may arrive in any order; they are matched to the point list by
// location and walked in point order to detect midnight crossings: the
// running offset increases whenever a listed location's wall-clock time
// regresses below its predecessor's. Entries for unknown locations are
// rejected. An unusable main time pair is not an immediate error: pairs
// fully covered by tier 1 or 2 still resolve, and only a pair that
// falls through to interpolation surfaces the ambiguity.
func NewScheduleAllocator(points []string, mainDep, mainArr model.ClockTime, tariffs []model.TariffEntry, stopTimes []model.StopTimeEntry) (*ScheduleAllocator, error) {
	a := &ScheduleAllocator{
		points:      points,
		mainDep:     mainDep,
		mainArr:     mainArr,
		tariffs:     make(map[string]model.TariffEntry, len(tariffs)),
		stopTimes:   make(map[string]model.StopTimeEntry, len(stopTimes)),
		stopOffsets: make(map[string]int, len(stopTimes)),
	}
	for _, t := range tariffs {
		a.tariffs[model.SegmentKey(t.Origin, t.Destination)] = t
	}
	for _, st := range stopTimes {
		if pointIndex(points, st.Location) < 0 {
			return nil, &InputError{Reason: "stop time given for unknown location " + st.Location}
		}
		if _, err := clockMinutes(st.Time); err != nil {
			return nil, err
		}
		a.stopTimes[st.Location] = st
	}

	dep, depErr := clockMinutes(mainDep)
	arr, arrErr := clockMinutes(mainArr)
	switch {
	case depErr != nil:
		a.mainErr = depErr
	case arrErr != nil:
		a.mainErr = arrErr
	default:
		if arr < dep {
			// The whole journey is assumed to finish within 48h of
			// departure, so a negative span means arrival next day.
			arr += minutesPerDay
		}
		a.depMinutes = dep
		a.arrMinutes = arr
	}

	// Walk the point list in order and accumulate a day offset per
	// location that has an explicit entry. A wall-clock regression
	// between consecutive listed locations marks a midnight crossing.
	offset := 0
	prev := -1
	for _, p := range points {
		st, ok := a.stopTimes[p]
		if !ok {
			continue
		}
		m, _ := clockMinutes(st.Time) // validated above
		if prev >= 0 && m < prev {
			offset++
		}
		a.stopOffsets[p] = offset
		prev = m
	}
	return a, nil
}

// MainTime returns the main segment's schedule: always the literal
// operator-supplied departure and arrival with offset 0, never the
// interpolation formula, so the one segment that must match operator
// input exactly carries no rounding drift.
func (a *ScheduleAllocator) MainTime() (SegmentTime, error) {
	if a.mainErr != nil {
		return SegmentTime{}, a.mainErr
	}
	depM, _ := clockMinutes(a.mainDep)
	arrM, _ := clockMinutes(a.mainArr)
	return SegmentTime{
		Departure: formatMinutes(depM),
		Arrival:   formatMinutes(arrM),
		DayOffset: 0,
	}, nil
}

// TimeFor resolves the schedule of the pair spanning point indices
// (i, j), i < j.
func (a *ScheduleAllocator) TimeFor(p Pair) (SegmentTime, error) {
	// Tier 1: the tariff entry for this exact pair carries its own times.
	if t, ok := a.tariffs[p.Key()]; ok && t.Departure != nil && t.Arrival != nil {
		depM, err := clockMinutes(*t.Departure)
		if err != nil {
			return SegmentTime{}, err
		}
		arrM, err := clockMinutes(*t.Arrival)
		if err != nil {
			return SegmentTime{}, err
		}
		return SegmentTime{Departure: formatMinutes(depM), Arrival: formatMinutes(arrM), DayOffset: 0}, nil
	}

	// Tier 2: both endpoints appear in the explicit stop-time table.
	depEntry, depOK := a.stopTimes[p.Origin]
	arrEntry, arrOK := a.stopTimes[p.Destination]
	if depOK && arrOK {
		depM, _ := clockMinutes(depEntry.Time)
		arrM, _ := clockMinutes(arrEntry.Time)
		return SegmentTime{
			Departure: formatMinutes(depM),
			Arrival:   formatMinutes(arrM),
			DayOffset: a.stopOffsets[p.Origin],
		}, nil
	}

	// Tier 3: proportional interpolation over the main journey.
	if a.mainErr != nil {
		return SegmentTime{}, &ScheduleAmbiguityError{
			Origin:      p.Origin,
			Destination: p.Destination,
			Reason:      a.mainErr.Error(),
		}
	}
	totalSegments := len(a.points) - 1
	totalMinutes := a.arrMinutes - a.depMinutes
	perSegment := float64(totalMinutes) / float64(totalSegments)
	start := a.depMinutes + int(math.Floor(float64(p.I)*perSegment))
	end := a.depMinutes + int(math.Floor(float64(p.J)*perSegment))
	return SegmentTime{
		Departure: formatMinutes(start),
		Arrival:   formatMinutes(end),
		DayOffset: dayOffsetOf(start),
	}, nil
}
