package scorecard

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/opensource-finance/heron/internal/domain"
)

// ErrValidation marks structurally malformed requests. Only a missing
// business segment or MSME category triggers it; every other missing or
// invalid field degrades gracefully via imputation.
var ErrValidation = errors.New("validation error")

// Normalize validates and normalizes a raw application feature set against
// the scorecard's parameter domains. Missing optional fields receive their
// configured neutral defaults; missing required fields receive the floor of
// their domain; both are recorded. Numeric fields are clipped to their
// documented domain; NaN and infinite inputs are treated as missing.
// The input feature set is never mutated.
func Normalize(sc *domain.Scorecard, app *domain.Application) (domain.FeatureSet, []string, error) {
	if app.BusinessSegment == "" {
		return domain.FeatureSet{}, nil, fmt.Errorf("%w: businessSegment is required", ErrValidation)
	}
	switch app.MSMECategory {
	case domain.MSMECategoryMicro, domain.MSMECategorySmall, domain.MSMECategoryMedium:
	default:
		return domain.FeatureSet{}, nil, fmt.Errorf("%w: msmeCategory must be micro, small or medium", ErrValidation)
	}

	features := app.Features.Clone()
	if features.Numeric == nil {
		features.Numeric = make(map[string]float64)
	}
	if features.Categorical == nil {
		features.Categorical = make(map[string]string)
	}

	// The segment participates in lookup scoring and policy evaluation.
	features.Categorical["business_segment"] = app.BusinessSegment

	imputed := make(map[string]bool)

	for _, cat := range sc.Categories {
		for _, p := range cat.Parameters {
			normalizeParameter(p, features, imputed)
		}
	}

	fields := make([]string, 0, len(imputed))
	for f := range imputed {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	return features, fields, nil
}

// normalizeParameter ensures every field a parameter reads is present and
// within domain.
func normalizeParameter(p domain.Parameter, features domain.FeatureSet, imputed map[string]bool) {
	switch p.Fn.Kind {
	case domain.FnCategoricalLookup:
		if _, ok := features.Cat(p.Field); !ok {
			features.Categorical[p.Field] = p.DefaultCat
			imputed[p.Field] = true
		}

	case domain.FnConcentrationHHI, domain.FnComposite:
		// Multi-field functions: missing operands default to zero and the
		// evaluator's guards take over (uniform fallback for HHI, ratio
		// fallback for composite).
		for _, f := range p.Fn.Fields {
			v, ok := features.Num(f)
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				features.Numeric[f] = 0
				imputed[f] = true
				continue
			}
			if v < 0 {
				features.Numeric[f] = 0
			}
		}

	default:
		v, ok := features.Num(p.Field)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			features.Numeric[p.Field] = imputeValue(p)
			imputed[p.Field] = true
			return
		}
		if p.Max > p.Min {
			features.Numeric[p.Field] = Clip(v, p.Min, p.Max)
		}
	}
}

// imputeValue picks the stand-in for a missing numeric field. Optional
// parameters degrade to their configured neutral default; required
// parameters degrade to the floor of their domain.
func imputeValue(p domain.Parameter) float64 {
	if p.Optional {
		return p.Default
	}
	return p.Min
}
