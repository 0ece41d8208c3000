// Package scoring ranks vehicles against a user's stated preference
// weights. Each attribute is min-max normalized against the candidate
// population, inverted for lower-is-better attributes, then combined as a
// weighted sum. Ranking is deterministic: ties break alphabetically by
// vehicle name.
package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/GearheadHQ/gearhead-mvp/pkg/fn"
)

// Vehicle is a named bag of raw comparable attributes (hp, zero_to_sixty,
// price, reliability, track_rating, ...).
type Vehicle struct {
	Name  string             `json:"name"`
	Attrs map[string]float64 `json:"attrs"`
}

// Profile carries the user's attribute weights. Weights are non-negative
// and need not sum to one; they are normalized internally. An empty profile
// means an equal split across the population's attributes.
type Profile struct {
	Weights map[string]float64 `json:"weights"`
}

// LowerIsBetter marks attributes where a smaller raw value normalizes
// higher.
var LowerIsBetter = map[string]bool{
	"zero_to_sixty":   true,
	"quarter_mile":    true,
	"braking_60_to_0": true,
	"price":           true,
	"weight":          true,
}

// Scored pairs a vehicle with its computed score.
type Scored struct {
	Vehicle Vehicle `json:"vehicle"`
	Score   float64 `json:"score"`
}

// Sentinel errors.
var (
	ErrEmptyPopulation = errors.New("scoring: empty population")
	ErrNegativeWeight  = errors.New("scoring: negative weight")
)

type bounds struct{ min, max float64 }

// Scorer normalizes against a fixed candidate population. Build one per
// ranking pass; it is read-only afterwards and safe for concurrent use.
type Scorer struct {
	bounds  map[string]bounds
	weights map[string]float64
}

// NewScorer observes the population's per-attribute min/max and normalizes
// the profile weights. Attributes are the union over all candidates;
// profile weights for attributes nobody has are ignored.
func NewScorer(population []Vehicle, p Profile) (*Scorer, error) {
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}
	for attr, w := range p.Weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: %s=%g", ErrNegativeWeight, attr, w)
		}
	}

	b := make(map[string]bounds)
	for _, v := range population {
		for attr, val := range v.Attrs {
			cur, seen := b[attr]
			if !seen {
				b[attr] = bounds{min: val, max: val}
				continue
			}
			if val < cur.min {
				cur.min = val
			}
			if val > cur.max {
				cur.max = val
			}
			b[attr] = cur
		}
	}

	// Missing weights default to an equal split: every observed attribute
	// the profile does not mention gets weight 1 when the profile is empty,
	// and weight 0 when the profile names at least one attribute.
	weights := make(map[string]float64, len(b))
	var total float64
	for attr := range b {
		w := 1.0
		if len(p.Weights) > 0 {
			w = p.Weights[attr]
		}
		weights[attr] = w
		total += w
	}
	if total > 0 {
		for attr := range weights {
			weights[attr] /= total
		}
	}
	return &Scorer{bounds: b, weights: weights}, nil
}

// Score computes the weighted sum of normalized attributes in [0, 1].
// Attributes the vehicle lacks contribute zero; an attribute with no spread
// across the population scores a neutral 0.5.
func (s *Scorer) Score(v Vehicle) float64 {
	var score float64
	for attr, w := range s.weights {
		if w == 0 {
			continue
		}
		val, ok := v.Attrs[attr]
		if !ok {
			continue
		}
		score += w * s.normalize(attr, val)
	}
	return score
}

func (s *Scorer) normalize(attr string, val float64) float64 {
	b := s.bounds[attr]
	if b.max == b.min {
		return 0.5
	}
	n := (val - b.min) / (b.max - b.min)
	if LowerIsBetter[attr] {
		n = 1 - n
	}
	return n
}

// Rank scores every vehicle against the population formed by the slice
// itself and returns them ordered best-first. Ordering is stable and
// reproducible: equal scores break alphabetically by name.
func Rank(vehicles []Vehicle, p Profile) ([]Scored, error) {
	scorer, err := NewScorer(vehicles, p)
	if err != nil {
		return nil, err
	}
	out := fn.Map(vehicles, func(v Vehicle) Scored {
		return Scored{Vehicle: v, Score: scorer.Score(v)}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Vehicle.Name < out[j].Vehicle.Name
	})
	return out, nil
}
