package trip

import "testing"

func fourPoints() []string {
	return []string{
		"Lima - Plaza Norte",
		"Ica - Terminal Terrestre",
		"Nazca - Centro",
		"Arequipa - Terrapuerto",
	}
}

func TestCityOf(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Lima - Plaza Norte", "Lima"},
		{"Lima - Terminal Atocongo", "Lima"},
		{"Nazca", "Nazca"},
		{"  Cusco - Av. Sol  ", "Cusco"},
	}
	for _, tc := range cases {
		if got := CityOf(tc.in); got != tc.want {
			t.Errorf("CityOf(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnumeratePairsAllSubSegments(t *testing.T) {
	pairs := EnumeratePairs(fourPoints())

	// 2 intermediate stops: C(4,2) - 1 = 5 candidates, main excluded.
	if len(pairs) != 5 {
		t.Fatalf("len(pairs) = %d, want 5", len(pairs))
	}
	want := map[string]bool{
		"Lima - Plaza Norte-Ica - Terminal Terrestre":       true,
		"Lima - Plaza Norte-Nazca - Centro":                 true,
		"Ica - Terminal Terrestre-Nazca - Centro":           true,
		"Ica - Terminal Terrestre-Arequipa - Terrapuerto":   true,
		"Nazca - Centro-Arequipa - Terrapuerto":             true,
	}
	for _, p := range pairs {
		if !want[p.Key()] {
			t.Errorf("unexpected pair %q", p.Key())
		}
		if p.I >= p.J {
			t.Errorf("pair %q has indices %d >= %d", p.Key(), p.I, p.J)
		}
	}
}

func TestEnumeratePairsCount(t *testing.T) {
	// All-distinct cities: every (i, j) pair except the main one is
	// emitted, however short.
	names := []string{"A", "B", "C", "D", "E", "F"}
	for n := 0; n <= 4; n++ {
		points := names[:n+2]
		got := len(EnumeratePairs(points))
		total := (n + 2) * (n + 1) / 2
		if want := total - 1; got != want {
			t.Errorf("n=%d stops: len = %d, want %d", n, got, want)
		}
	}
}

func TestEnumeratePairsSameCityExcluded(t *testing.T) {
	points := []string{
		"Lima - Plaza Norte",
		"Lima - Terminal Atocongo",
		"Cusco - Terminal",
	}
	pairs := EnumeratePairs(points)
	if len(pairs) != 1 {
		t.Fatalf("len(pairs) = %d, want 1", len(pairs))
	}
	if got := pairs[0].Key(); got != "Lima - Terminal Atocongo-Cusco - Terminal" {
		t.Fatalf("pair = %q, want the stop-to-destination pair", got)
	}
}

func TestEnumeratePairsNoStops(t *testing.T) {
	if pairs := EnumeratePairs([]string{"Lima - Norte", "Cusco - Sur"}); len(pairs) != 0 {
		t.Fatalf("len(pairs) = %d, want 0", len(pairs))
	}
}

func TestValidatePoints(t *testing.T) {
	if err := ValidatePoints(fourPoints()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePoints([]string{"Lima - Norte"}); err == nil {
		t.Error("expected error for single point")
	}
	if err := ValidatePoints([]string{"Lima - Norte", "  ", "Cusco - Sur"}); err == nil {
		t.Error("expected error for blank point")
	}
	if err := ValidatePoints([]string{"Lima - Norte", "Ica - Terminal", "Lima - Norte"}); err == nil {
		t.Error("expected error for repeated point")
	}
}
