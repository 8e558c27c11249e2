package handler

import (
	"testing"
	"time"

	"github.com/andariego/trip-reservation/internal/model"
)

func testRoute() *model.RoutePlan {
	return &model.RoutePlan{
		ID:          7,
		Origin:      "Lima - Plaza Norte",
		Destination: "Arequipa - Terrapuerto",
		Stops:       []string{"Ica - Terminal Terrestre", "Nazca - Centro"},
	}
}

func testPublishBody() publishBody {
	return publishBody{
		Departure: model.ClockTime{Hour: 8, Minute: 0, Meridiem: "AM"},
		Arrival:   model.ClockTime{Hour: 12, Minute: 0, Meridiem: "PM"},
		Capacity:  40,
		TotalFare: 100,
	}
}

func TestBuildRunRangeFansOutDates(t *testing.T) {
	start, _ := time.Parse(dateLayout, "2026-09-01")
	end, _ := time.Parse(dateLayout, "2026-09-03")

	runs, warnings, err := buildRunRange(testRoute(), 1, start, end, testPublishBody())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want one per date", len(runs))
	}
	for i, want := range []string{"2026-09-01", "2026-09-02", "2026-09-03"} {
		if runs[i].ServiceDate != want {
			t.Errorf("runs[%d].ServiceDate = %q, want %q", i, runs[i].ServiceDate, want)
		}
		if runs[i].RouteID != 7 || runs[i].CompanyID != 1 {
			t.Errorf("runs[%d] route/company = %d/%d, want 7/1", i, runs[i].RouteID, runs[i].CompanyID)
		}
		// Main segment plus 5 enumerated pairs for a 4-point route.
		if len(runs[i].Segments) != 6 {
			t.Errorf("runs[%d] has %d segments, want 6", i, len(runs[i].Segments))
		}
	}
}

func TestBuildRunRangeAllOrNothing(t *testing.T) {
	start, _ := time.Parse(dateLayout, "2026-09-01")
	end, _ := time.Parse(dateLayout, "2026-09-03")
	body := testPublishBody()
	body.Capacity = 0

	runs, _, err := buildRunRange(testRoute(), 1, start, end, body)
	if err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if runs != nil {
		t.Fatalf("runs = %v, want none when any date fails to build", runs)
	}
}
