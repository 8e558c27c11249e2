package trip

import (
	"errors"
	"testing"

	"github.com/andariego/trip-reservation/internal/model"
)

func buildInput(points []string) BuildInput {
	return BuildInput{
		Points:        points,
		ServiceDate:   "2026-09-01",
		MainDeparture: ct(8, 0, "AM"),
		MainArrival:   ct(12, 0, "PM"),
		Capacity:      40,
		TotalFare:     100,
	}
}

func TestBuildSegments(t *testing.T) {
	points := fourPoints()
	res, err := BuildSegments(buildInput(points))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Main segment plus 5 candidate pairs.
	if len(res.Segments) != 6 {
		t.Fatalf("len(segments) = %d, want 6", len(res.Segments))
	}
	mains := 0
	ids := make(map[string]bool)
	for _, seg := range res.Segments {
		if seg.IsMainSegment {
			mains++
		}
		if seg.AvailableSeats != 40 {
			t.Errorf("segment %s seats = %d, want full capacity", seg.Key(), seg.AvailableSeats)
		}
		if seg.DepartureDate != "2026-09-01" {
			t.Errorf("segment %s date = %q", seg.Key(), seg.DepartureDate)
		}
		if seg.SyntheticID == "" || ids[seg.SyntheticID] {
			t.Errorf("segment %s has missing or duplicate synthetic id", seg.Key())
		}
		ids[seg.SyntheticID] = true
	}
	if mains != 1 {
		t.Fatalf("main segments = %d, want exactly 1", mains)
	}

	main := res.Segments[0]
	if !main.IsMainSegment {
		t.Fatal("first built segment is not the main segment")
	}
	if main.DepartureTime != "08:00 AM" || main.ArrivalTime != "12:00 PM" || main.DayOffset != 0 {
		t.Fatalf("main time = %q/%q offset %d, want literal operator input",
			main.DepartureTime, main.ArrivalTime, main.DayOffset)
	}
	if main.Price != 100 {
		t.Fatalf("main price = %v, want the operator fare verbatim", main.Price)
	}
}

func TestBuildSegmentsRejectsBadInput(t *testing.T) {
	in := buildInput(fourPoints())
	in.Capacity = 0
	if _, err := BuildSegments(in); err == nil {
		t.Error("expected error for zero capacity")
	}

	in = buildInput([]string{"Lima - Norte", "Ica - Terminal", "Lima - Norte"})
	if _, err := BuildSegments(in); err == nil {
		t.Error("expected error for a repeated point")
	}

	in = buildInput(fourPoints())
	in.MainDeparture = ct(0, 0, "AM")
	var inputErr *InputError
	if _, err := BuildSegments(in); !errors.As(err, &inputErr) {
		t.Errorf("err = %v, want InputError for an unusable main time", err)
	}
}

func TestRebuildPreservesLiveSegments(t *testing.T) {
	points := fourPoints()
	first, err := BuildSegments(buildInput(points))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate live bookings on one segment.
	bookedKey := model.SegmentKey(points[0], points[2])
	for i := range first.Segments {
		if first.Segments[i].Key() == bookedKey {
			first.Segments[i].AvailableSeats = 37
		}
	}

	in := buildInput(points)
	in.TotalFare = 150 // price edit
	second, err := RebuildSegments(in, 40, first.Segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prevByKey := make(map[string]model.SegmentDescriptor)
	for _, seg := range first.Segments {
		prevByKey[seg.Key()] = seg
	}
	for _, seg := range second.Segments {
		prev, ok := prevByKey[seg.Key()]
		if !ok {
			t.Fatalf("republish produced unknown pair %s", seg.Key())
		}
		if seg.SyntheticID != prev.SyntheticID {
			t.Errorf("segment %s changed synthetic id on republish", seg.Key())
		}
		if seg.AvailableSeats != prev.AvailableSeats {
			t.Errorf("segment %s seats = %d, want preserved %d", seg.Key(), seg.AvailableSeats, prev.AvailableSeats)
		}
	}
}

func TestRebuildNewPairGetsFreshCapacity(t *testing.T) {
	short := []string{"Lima - Norte", "Nazca - Centro", "Arequipa - Terrapuerto"}
	first, err := BuildSegments(buildInput(short))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The route gains a stop: pairs involving it are genuinely new.
	longer := []string{"Lima - Norte", "Ica - Terminal", "Nazca - Centro", "Arequipa - Terrapuerto"}
	second, err := RebuildSegments(buildInput(longer), 40, first.Segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	oldIDs := make(map[string]bool)
	for _, seg := range first.Segments {
		oldIDs[seg.SyntheticID] = true
	}
	fresh := 0
	for _, seg := range second.Segments {
		if seg.Origin == "Ica - Terminal" || seg.Destination == "Ica - Terminal" {
			fresh++
			if oldIDs[seg.SyntheticID] {
				t.Errorf("new pair %s reused an old synthetic id", seg.Key())
			}
			if seg.AvailableSeats != 40 {
				t.Errorf("new pair %s seats = %d, want full capacity", seg.Key(), seg.AvailableSeats)
			}
		}
	}
	if fresh == 0 {
		t.Fatal("expected pairs involving the added stop")
	}
}

func TestRebuildCapacityChangeCarriesSoldSeats(t *testing.T) {
	points := fourPoints()
	first, err := BuildSegments(buildInput(points))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 seats sold on A-C under the original capacity of 40.
	bookedKey := model.SegmentKey(points[0], points[2])
	for i := range first.Segments {
		if first.Segments[i].Key() == bookedKey {
			first.Segments[i].AvailableSeats = 37
		}
	}

	in := buildInput(points)
	in.Capacity = 30
	second, err := RebuildSegments(in, 40, first.Segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, seg := range second.Segments {
		if seg.AvailableSeats > 30 {
			t.Errorf("segment %s seats = %d, above the new capacity 30", seg.Key(), seg.AvailableSeats)
		}
		want := 30
		if seg.Key() == bookedKey {
			want = 27 // 30 minus the 3 seats already sold
		}
		if seg.AvailableSeats != want {
			t.Errorf("segment %s seats = %d, want %d", seg.Key(), seg.AvailableSeats, want)
		}
	}

	// Growing the vehicle hands the extra seats to every segment while
	// the sold count stays sold.
	in.Capacity = 50
	larger, err := RebuildSegments(in, 40, first.Segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, seg := range larger.Segments {
		want := 50
		if seg.Key() == bookedKey {
			want = 47
		}
		if seg.AvailableSeats != want {
			t.Errorf("segment %s seats = %d, want %d", seg.Key(), seg.AvailableSeats, want)
		}
	}

	// Shrinking below the sold count cannot produce a valid run.
	in.Capacity = 2
	var inputErr *InputError
	if _, err := RebuildSegments(in, 40, first.Segments); !errors.As(err, &inputErr) {
		t.Fatalf("err = %v, want InputError for capacity below seats sold", err)
	}
}

func TestBuildSegmentsFareFallbackWarns(t *testing.T) {
	// Same-city origin pairing cannot happen through enumeration, so a
	// fallback only fires via tariff-free inverted indices; exercise the
	// warning plumbing directly through the allocator instead.
	f := NewFareAllocator(fourPoints(), 100, nil, DefaultFareConfig())
	if _, fellBack := f.PriceFor(Pair{I: 2, J: 2}); !fellBack {
		t.Fatal("expected fallback for a zero-length pair")
	}
}
