// Package scorecard implements the rule-based parameter scoring engine:
// feature normalization, the closed set of scoring functions, per-category
// weighted scoring and the overall subscore aggregation.
package scorecard

import (
	"math"

	"github.com/opensource-finance/heron/internal/domain"
)

// HHI of a perfectly uniform 7-way daily split; the concentration score
// measures distance from this floor.
const (
	hhiUniformFloor = 0.14
	hhiRange        = 0.86
)

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Interpolate evaluates a piecewise-linear curve at x. Points must be
// ordered by ascending X; values outside the range clamp to the boundary Y.
func Interpolate(points []domain.CurvePoint, x float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if x <= points[0].X {
		return points[0].Y
	}
	last := points[len(points)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		if x >= a.X && x <= b.X {
			if b.X == a.X {
				return b.Y
			}
			t := (x - a.X) / (b.X - a.X)
			return a.Y + (b.Y-a.Y)*t
		}
	}
	return last.Y
}

// evaluate applies a scoring function to the normalized feature set and
// returns a score in [0,1]. Undefined inputs never escape as NaN or
// infinity; guards substitute the documented fallback instead.
func evaluate(fn domain.ScoringFunction, p domain.Parameter, features domain.FeatureSet) float64 {
	switch fn.Kind {
	case domain.FnCategoricalLookup:
		v, ok := features.Cat(p.Field)
		if !ok {
			v = p.DefaultCat
		}
		if score, ok := fn.Lookup[v]; ok {
			return Clip(score, 0, 1)
		}
		// Unknown category falls back; never an error.
		return Clip(fn.LookupDefault, 0, 1)

	case domain.FnPiecewiseLinear:
		x, _ := features.Num(p.Field)
		return Clip(Interpolate(fn.Points, x), 0, 1)

	case domain.FnThresholdLadder:
		x, _ := features.Num(p.Field)
		return Clip(ladder(fn.Ladder, x), 0, 1)

	case domain.FnSigmoid:
		x, _ := features.Num(p.Field)
		if fn.Scale == 0 {
			// Degenerate scale turns the sigmoid into a step at center.
			if x >= fn.Center {
				return 1
			}
			return 0
		}
		return Clip(1/(1+math.Exp(-(x-fn.Center)/fn.Scale)), 0, 1)

	case domain.FnGaussian:
		x, _ := features.Num(p.Field)
		if fn.Width == 0 {
			if x == fn.Optimal {
				return 1
			}
			return 0
		}
		d := (x - fn.Optimal) / fn.Width
		return Clip(math.Exp(-d*d), 0, 1)

	case domain.FnConcentrationHHI:
		return Clip(concentrationScore(fn, features), 0, 1)

	case domain.FnComposite:
		return Clip(compositeScore(fn, p, features), 0, 1)
	}

	// Unreachable for validated scorecards; validation rejects unknown kinds.
	return 0
}

// ladder returns the score of the first step whose threshold the value
// meets or exceeds. Steps are ordered by descending threshold.
func ladder(steps []domain.LadderStep, x float64) float64 {
	for _, s := range steps {
		if x >= s.Threshold {
			return s.Score
		}
	}
	if len(steps) == 0 {
		return 0
	}
	return steps[len(steps)-1].Score
}

// concentrationScore computes 1 - clip((HHI - floor) / range, 0, 1) over
// the configured revenue share fields. Shares are renormalized so callers
// may pass raw daily revenue amounts instead of exact shares.
func concentrationScore(fn domain.ScoringFunction, features domain.FeatureSet) float64 {
	var total float64
	values := make([]float64, 0, len(fn.Fields))
	for _, f := range fn.Fields {
		v, _ := features.Num(f)
		if v < 0 {
			v = 0
		}
		values = append(values, v)
		total += v
	}
	if total <= 0 {
		return fn.Fallback
	}

	var hhi float64
	for _, v := range values {
		share := v / total
		hhi += share * share
	}

	return 1 - Clip((hhi-hhiUniformFloor)/hhiRange, 0, 1)
}

// compositeScore derives an intermediate ratio from raw fields and applies
// the inner function to it. A zero denominator yields the documented
// fallback score rather than NaN.
func compositeScore(fn domain.ScoringFunction, p domain.Parameter, features domain.FeatureSet) float64 {
	if len(fn.Fields) < 2 || fn.Inner == nil {
		return fn.Fallback
	}

	num, _ := features.Num(fn.Fields[0])
	den, _ := features.Num(fn.Fields[1])
	if den == 0 {
		return fn.Fallback
	}

	derived := num / den
	if math.IsNaN(derived) || math.IsInf(derived, 0) {
		return fn.Fallback
	}

	inner := domain.Parameter{Name: p.Name, Field: "derived"}
	fs := domain.FeatureSet{Numeric: map[string]float64{"derived": derived}}
	return evaluate(*fn.Inner, inner, fs)
}
