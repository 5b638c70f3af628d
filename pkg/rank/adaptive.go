package rank

import (
	"math"
	"time"
)

// Weights are the component weights of the adaptive composite score. The
// defaults sum to 1.0, but per-tenant adjustments may shift individual
// weights, so callers must not assume the sum stays 1.0.
type Weights struct {
	Confidence float64 `json:"confidence"`
	Relation   float64 `json:"relation"`
	Recency    float64 `json:"recency"`
	Hierarchy  float64 `json:"hierarchy"`
}

// DefaultWeights returns the stock weighting used when a tenant has no
// stored adjustments.
func DefaultWeights() Weights {
	return Weights{
		Confidence: 0.5,
		Relation:   0.2,
		Recency:    0.2,
		Hierarchy:  0.1,
	}
}

// WithDeltas applies additive per-component adjustments. Components are
// floored at zero; negative weights would invert a signal's meaning.
func (w Weights) WithDeltas(confidence, relation, recency, hierarchy float64) Weights {
	return Weights{
		Confidence: math.Max(0, w.Confidence+confidence),
		Relation:   math.Max(0, w.Relation+relation),
		Recency:    math.Max(0, w.Recency+recency),
		Hierarchy:  math.Max(0, w.Hierarchy+hierarchy),
	}
}

// AdaptiveScore computes the weighted composite used for "auto" ordering:
// extraction confidence, relation density, recency, and hierarchy importance,
// each clamped to [0,1] before weighting. A zero createdAt counts as a
// neutral 0.5 recency instead of decaying to zero. The result is rounded to
// three decimals for display stability.
func AdaptiveScore(
	confidence float64,
	relationCount int,
	createdAt time.Time,
	hierarchyLevel int,
	w Weights,
	now time.Time,
) float64 {
	relationScore := math.Min(float64(relationCount)/20, 1)

	recencyScore := 0.5
	if !createdAt.IsZero() {
		days := now.Sub(createdAt).Hours() / 24
		recencyScore = math.Max(0, 1-days/365)
	}

	hierarchyBonus := math.Max(0, 1-float64(hierarchyLevel)/4)

	composite := w.Confidence*clamp01(confidence) +
		w.Relation*relationScore +
		w.Recency*recencyScore +
		w.Hierarchy*hierarchyBonus

	return round3(composite)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
