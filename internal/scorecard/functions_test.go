package scorecard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opensource-finance/heron/internal/domain"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, Clip(-1, 0, 1))
	assert.Equal(t, 1.0, Clip(2, 0, 1))
	assert.Equal(t, 0.5, Clip(0.5, 0, 1))
	assert.Equal(t, 0.0, Clip(0, 0, 1))
	assert.Equal(t, 1.0, Clip(1, 0, 1))
}

func TestInterpolate(t *testing.T) {
	points := []domain.CurvePoint{
		{X: 0, Y: 0.1}, {X: 10, Y: 0.5}, {X: 20, Y: 1.0},
	}

	t.Run("AnchorsExact", func(t *testing.T) {
		assert.InDelta(t, 0.1, Interpolate(points, 0), 1e-9)
		assert.InDelta(t, 0.5, Interpolate(points, 10), 1e-9)
		assert.InDelta(t, 1.0, Interpolate(points, 20), 1e-9)
	})

	t.Run("LinearBetweenAnchors", func(t *testing.T) {
		assert.InDelta(t, 0.3, Interpolate(points, 5), 1e-9)
		assert.InDelta(t, 0.75, Interpolate(points, 15), 1e-9)
	})

	t.Run("ClampsOutsideRange", func(t *testing.T) {
		assert.InDelta(t, 0.1, Interpolate(points, -100), 1e-9)
		assert.InDelta(t, 1.0, Interpolate(points, 100), 1e-9)
	})

	t.Run("EmptyCurve", func(t *testing.T) {
		assert.Equal(t, 0.0, Interpolate(nil, 5))
	})
}

func TestLookupFunction(t *testing.T) {
	p := domain.Parameter{
		Name: "entity_type", Field: "entity_type", DefaultCat: "proprietorship",
		Fn: domain.ScoringFunction{
			Kind: domain.FnCategoricalLookup,
			Lookup: map[string]float64{
				"proprietorship":  0.5,
				"private_limited": 0.9,
			},
			LookupDefault: 0.4,
		},
	}

	t.Run("KnownCategory", func(t *testing.T) {
		fs := domain.FeatureSet{Categorical: map[string]string{"entity_type": "private_limited"}}
		assert.InDelta(t, 0.9, evaluate(p.Fn, p, fs), 1e-9)
	})

	t.Run("UnknownCategoryFallsBack", func(t *testing.T) {
		fs := domain.FeatureSet{Categorical: map[string]string{"entity_type": "trust"}}
		assert.InDelta(t, 0.4, evaluate(p.Fn, p, fs), 1e-9)
	})

	t.Run("MissingFieldUsesDefault", func(t *testing.T) {
		fs := domain.FeatureSet{Categorical: map[string]string{}}
		assert.InDelta(t, 0.5, evaluate(p.Fn, p, fs), 1e-9)
	})
}

func TestLadderFunction(t *testing.T) {
	p := domain.Parameter{
		Name: "bounced_cheques", Field: "bounced",
		Fn: domain.ScoringFunction{
			Kind: domain.FnThresholdLadder,
			Ladder: []domain.LadderStep{
				{Threshold: 6, Score: 0.10},
				{Threshold: 2, Score: 0.55},
				{Threshold: 0, Score: 1.00},
			},
		},
	}

	cases := []struct {
		value float64
		want  float64
	}{
		{0, 1.00},
		{1, 1.00},
		{2, 0.55},
		{5, 0.55},
		{6, 0.10},
		{50, 0.10},
	}
	for _, tc := range cases {
		fs := domain.FeatureSet{Numeric: map[string]float64{"bounced": tc.value}}
		assert.InDelta(t, tc.want, evaluate(p.Fn, p, fs), 1e-9, "value %v", tc.value)
	}
}

func TestSigmoidFunction(t *testing.T) {
	p := domain.Parameter{
		Name: "revenue_growth", Field: "growth",
		Fn:   domain.ScoringFunction{Kind: domain.FnSigmoid, Center: 0.04, Scale: 0.07},
	}

	t.Run("CenterScoresHalf", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{"growth": 0.04}}
		assert.InDelta(t, 0.5, evaluate(p.Fn, p, fs), 1e-9)
	})

	t.Run("Monotonic", func(t *testing.T) {
		prev := -1.0
		for _, x := range []float64{-0.5, -0.1, 0, 0.04, 0.1, 0.5, 2} {
			fs := domain.FeatureSet{Numeric: map[string]float64{"growth": x}}
			score := evaluate(p.Fn, p, fs)
			assert.Greater(t, score, prev)
			prev = score
		}
	})

	t.Run("ZeroScaleIsStep", func(t *testing.T) {
		step := p
		step.Fn.Scale = 0
		fs := domain.FeatureSet{Numeric: map[string]float64{"growth": 0.03}}
		assert.Equal(t, 0.0, evaluate(step.Fn, step, fs))
		fs.Numeric["growth"] = 0.04
		assert.Equal(t, 1.0, evaluate(step.Fn, step, fs))
	})
}

func TestGaussianFunction(t *testing.T) {
	p := domain.Parameter{
		Name: "owner_age", Field: "age",
		Fn:   domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 42, Width: 16},
	}

	t.Run("OptimalScoresOne", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{"age": 42}}
		assert.InDelta(t, 1.0, evaluate(p.Fn, p, fs), 1e-9)
	})

	t.Run("SymmetricDecay", func(t *testing.T) {
		lo := domain.FeatureSet{Numeric: map[string]float64{"age": 26}}
		hi := domain.FeatureSet{Numeric: map[string]float64{"age": 58}}
		assert.InDelta(t, evaluate(p.Fn, p, lo), evaluate(p.Fn, p, hi), 1e-9)
		assert.Less(t, evaluate(p.Fn, p, lo), 1.0)
	})

	t.Run("ZeroWidthExactMatchOnly", func(t *testing.T) {
		exact := p
		exact.Fn.Width = 0
		fs := domain.FeatureSet{Numeric: map[string]float64{"age": 42}}
		assert.Equal(t, 1.0, evaluate(exact.Fn, exact, fs))
		fs.Numeric["age"] = 43
		assert.Equal(t, 0.0, evaluate(exact.Fn, exact, fs))
	})
}

func TestConcentrationHHI(t *testing.T) {
	fields := []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
	p := domain.Parameter{
		Name: "daily_concentration", Field: "concentration",
		Fn: domain.ScoringFunction{
			Kind: domain.FnConcentrationHHI, Fields: fields, Fallback: 0.5,
		},
	}

	t.Run("UniformSplitScoresBest", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{}}
		for _, f := range fields {
			fs.Numeric[f] = 1.0 / 7.0
		}
		score := evaluate(p.Fn, p, fs)
		assert.Greater(t, score, 0.99)
	})

	t.Run("SingleDayScoresWorst", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{"mon": 1}}
		for _, f := range fields[1:] {
			fs.Numeric[f] = 0
		}
		assert.InDelta(t, 0.0, evaluate(p.Fn, p, fs), 1e-9)
	})

	t.Run("SharesRenormalized", func(t *testing.T) {
		// Raw revenue amounts instead of shares must produce the same score.
		shares := domain.FeatureSet{Numeric: map[string]float64{}}
		raw := domain.FeatureSet{Numeric: map[string]float64{}}
		weights := []float64{0.3, 0.2, 0.15, 0.1, 0.1, 0.1, 0.05}
		for i, f := range fields {
			shares.Numeric[f] = weights[i]
			raw.Numeric[f] = weights[i] * 84000
		}
		assert.InDelta(t, evaluate(p.Fn, p, shares), evaluate(p.Fn, p, raw), 1e-9)
	})

	t.Run("ZeroTotalUsesFallback", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{}}
		for _, f := range fields {
			fs.Numeric[f] = 0
		}
		assert.InDelta(t, 0.5, evaluate(p.Fn, p, fs), 1e-9)
	})
}

func TestCompositeFunction(t *testing.T) {
	p := domain.Parameter{
		Name: "balance_coverage", Field: "coverage",
		Fn: domain.ScoringFunction{
			Kind: domain.FnComposite, Op: "ratio",
			Fields: []string{"balance", "expenses"}, Fallback: 1.0,
			Inner: &domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
				{X: 0, Y: 0}, {X: 2, Y: 1},
			}},
		},
	}

	t.Run("RatioThroughInner", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{"balance": 100, "expenses": 100}}
		assert.InDelta(t, 0.5, evaluate(p.Fn, p, fs), 1e-9)
	})

	t.Run("ZeroDenominatorUsesFallback", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{"balance": 100, "expenses": 0}}
		assert.InDelta(t, 1.0, evaluate(p.Fn, p, fs), 1e-9)
	})

	t.Run("NeverNaN", func(t *testing.T) {
		fs := domain.FeatureSet{Numeric: map[string]float64{"balance": math.Inf(1), "expenses": math.Inf(1)}}
		score := evaluate(p.Fn, p, fs)
		assert.False(t, math.IsNaN(score))
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	})
}

// All scoring functions must stay inside [0,1] for any finite input.
func TestScoresAlwaysBounded(t *testing.T) {
	sc := DefaultScorecard()
	inputs := []float64{-1e12, -1, 0, 0.5, 1, 100, 1e12}

	for _, cat := range sc.Categories {
		for _, p := range cat.Parameters {
			for _, x := range inputs {
				fs := domain.FeatureSet{
					Numeric:     map[string]float64{p.Field: x},
					Categorical: map[string]string{p.Field: "anything"},
				}
				for _, f := range p.Fn.Fields {
					fs.Numeric[f] = x
				}
				score := evaluate(p.Fn, p, fs)
				assert.False(t, math.IsNaN(score), "%s NaN at %v", p.Name, x)
				assert.GreaterOrEqual(t, score, 0.0, "%s at %v", p.Name, x)
				assert.LessOrEqual(t, score, 1.0, "%s at %v", p.Name, x)
			}
		}
	}
}
