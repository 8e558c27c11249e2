package trip

import (
	"strings"

	"github.com/andariego/trip-reservation/internal/model"
)

// cityDelimiter separates the city from the landmark in location names
// such as "Lima - Terminal Norte".
const cityDelimiter = " - "

// CityOf extracts the city portion of a location name. Names without a
// delimiter are treated as plain city names.
func CityOf(location string) string {
	if idx := strings.Index(location, cityDelimiter); idx >= 0 {
		return strings.TrimSpace(location[:idx])
	}
	return strings.TrimSpace(location)
}

// SameCity reports whether two locations resolve to the same city.
// Location names themselves compare case-sensitively everywhere else;
// only this city-extraction rule is applied here.
func SameCity(a, b string) bool {
	return CityOf(a) == CityOf(b)
}

// Pair is one candidate origin/destination sub-segment, carrying the
// point-list indices it spans.
type Pair struct {
	Origin      string
	Destination string
	I           int // index of Origin in the point list
	J           int // index of Destination in the point list
}

// Key returns the canonical "origin-destination" key of the pair.
func (p Pair) Key() string {
	return model.SegmentKey(p.Origin, p.Destination)
}

// ValidatePoints checks a full point list before enumeration: at least
// origin and destination, no blank names, no repeated point. A repeated
// point would make index-based interval arithmetic ambiguous.
func ValidatePoints(points []string) error {
	if len(points) < 2 {
		return &InputError{Reason: "route needs an origin and a destination"}
	}
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if strings.TrimSpace(p) == "" {
			return &InputError{Reason: "route contains a blank location name"}
		}
		if _, ok := seen[p]; ok {
			return &InputError{Reason: "route lists location " + p + " more than once"}
		}
		seen[p] = struct{}{}
	}
	return nil
}

// EnumeratePairs produces every sellable sub-segment of the point list:
// all (i, j) pairs with i < j except the full origin→destination pair
// (built separately as the main segment) and pairs whose endpoints
// normalize to the same city. No minimum-length filter is applied, so
// the sellable fares match exactly what operators see when configuring
// tariffs. An empty stop list yields no candidate pairs.
func EnumeratePairs(points []string) []Pair {
	last := len(points) - 1
	pairs := make([]Pair, 0, len(points)*(len(points)-1)/2)
	for i := 0; i < last; i++ {
		for j := i + 1; j <= last; j++ {
			if i == 0 && j == last {
				continue // main segment
			}
			if SameCity(points[i], points[j]) {
				continue
			}
			pairs = append(pairs, Pair{Origin: points[i], Destination: points[j], I: i, J: j})
		}
	}
	return pairs
}

// pointIndex returns the position of a location in the point list, or
// -1 when absent.
func pointIndex(points []string, location string) int {
	for i, p := range points {
		if p == location {
			return i
		}
	}
	return -1
}
