package trip

import (
	"math"

	"github.com/andariego/trip-reservation/internal/model"
)

// FareConfig holds the tunable constants of proportional fare
// splitting. The defaults mirror long-standing operator policy; they
// are configuration, not invariants.
type FareConfig struct {
	// MinProportion floors the fraction of the full fare charged for
	// any sub-segment, preventing degenerate near-zero prices for
	// short hops.
	MinProportion float64
	// RoundUnit is the currency increment prices are rounded to for
	// display cleanliness.
	RoundUnit float64
	// FallbackProportion is the fraction of the full fare charged when
	// a pair's indices are inverted or unresolvable. Fare mistakes are
	// operator-correctable after publish, so pricing degrades instead
	// of blocking the whole run.
	FallbackProportion float64
}

// DefaultFareConfig returns the standard fare-splitting constants.
func DefaultFareConfig() FareConfig {
	return FareConfig{MinProportion: 0.25, RoundUnit: 25, FallbackProportion: 0.25}
}

// FareAllocator prices the enumerated pairs of one run: an exact tariff
// entry wins, everything else is split proportionally to stop-index
// distance.
type FareAllocator struct {
	totalFare     float64
	totalSegments int
	tariffs       map[string]model.TariffEntry
	cfg           FareConfig
}

// NewFareAllocator builds an allocator for a run with the given total
// main fare and point count.
func NewFareAllocator(points []string, totalFare float64, tariffs []model.TariffEntry, cfg FareConfig) *FareAllocator {
	byKey := make(map[string]model.TariffEntry, len(tariffs))
	for _, t := range tariffs {
		byKey[model.SegmentKey(t.Origin, t.Destination)] = t
	}
	return &FareAllocator{
		totalFare:     totalFare,
		totalSegments: len(points) - 1,
		tariffs:       byKey,
		cfg:           cfg,
	}
}

// MainFare returns the price of the full journey: the tariff entry for
// the main pair when one exists, otherwise the operator's total fare
// verbatim.
func (f *FareAllocator) MainFare(key string) float64 {
	if t, ok := f.tariffs[key]; ok {
		return t.Price
	}
	return f.totalFare
}

// PriceFor prices one enumerated pair. The second return value reports
// the degrade-not-fail case: an inverted or mis-indexed pair priced at
// the fallback proportion of the full fare instead of raising an error.
func (f *FareAllocator) PriceFor(p Pair) (float64, bool) {
	if t, ok := f.tariffs[p.Key()]; ok {
		return t.Price, false
	}
	covered := p.J - p.I
	if covered <= 0 {
		return f.cfg.FallbackProportion * f.totalFare, true
	}
	proportion := float64(covered) / float64(f.totalSegments)
	if proportion < f.cfg.MinProportion {
		proportion = f.cfg.MinProportion
	}
	return math.Round(proportion*f.totalFare/f.cfg.RoundUnit) * f.cfg.RoundUnit, false
}
