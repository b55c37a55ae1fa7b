package scorecard

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opensource-finance/heron/internal/domain"
)

// ErrConfig marks an inconsistent or malformed scorecard. It is always a
// fatal startup condition; the engine refuses to serve with bad tables.
var ErrConfig = errors.New("scorecard configuration error")

// Tolerance for weight-sum checks.
const weightEpsilon = 1e-6

// Load reads a scorecard from a YAML file. An empty path returns the
// built-in default tables. The result is validated either way.
func Load(path string) (*domain.Scorecard, error) {
	if path == "" {
		sc := DefaultScorecard()
		if err := Validate(sc); err != nil {
			return nil, err
		}
		return sc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	var sc domain.Scorecard
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
	}

	if err := Validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the invariants of a scorecard: category weights sum to
// 100, parameter weights sum to their category weight, breakpoints are
// strictly ordered, tiers tile [300,900] without gaps or overlaps, and
// every scoring function is well-formed.
func Validate(sc *domain.Scorecard) error {
	if sc == nil {
		return fmt.Errorf("%w: scorecard is nil", ErrConfig)
	}
	if sc.DefaultAlpha < 0 || sc.DefaultAlpha > 1 {
		return fmt.Errorf("%w: defaultAlpha %.3f outside [0,1]", ErrConfig, sc.DefaultAlpha)
	}

	if err := validateCategories(sc.Categories); err != nil {
		return err
	}
	if err := validateBreakpoints(sc.Breakpoints); err != nil {
		return err
	}
	if err := validateTiers(sc.Tiers); err != nil {
		return err
	}
	if err := validateLimits(sc); err != nil {
		return err
	}
	return nil
}

func validateCategories(categories []domain.Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("%w: no categories defined", ErrConfig)
	}

	var total float64
	for _, cat := range categories {
		if cat.Weight <= 0 {
			return fmt.Errorf("%w: category %s has non-positive weight", ErrConfig, cat.ID)
		}
		total += cat.Weight

		var paramTotal float64
		for _, p := range cat.Parameters {
			if p.Weight <= 0 {
				return fmt.Errorf("%w: parameter %s has non-positive weight", ErrConfig, p.Name)
			}
			paramTotal += p.Weight

			// Optional parameters impute their default on missing input,
			// so the default must live inside the scoring domain.
			if p.Optional && p.Max > p.Min && (p.Default < p.Min || p.Default > p.Max) {
				return fmt.Errorf("%w: optional parameter %s default %.4f outside domain [%.4f,%.4f]",
					ErrConfig, p.Name, p.Default, p.Min, p.Max)
			}

			if err := validateFunction(p.Name, p.Fn); err != nil {
				return err
			}
		}

		if diff := paramTotal - cat.Weight; diff > weightEpsilon || diff < -weightEpsilon {
			return fmt.Errorf("%w: category %s parameter weights sum to %.4f, want %.4f",
				ErrConfig, cat.ID, paramTotal, cat.Weight)
		}
	}

	if diff := total - 100; diff > weightEpsilon || diff < -weightEpsilon {
		return fmt.Errorf("%w: category weights sum to %.4f, want 100", ErrConfig, total)
	}
	return nil
}

func validateFunction(name string, fn domain.ScoringFunction) error {
	switch fn.Kind {
	case domain.FnCategoricalLookup:
		if len(fn.Lookup) == 0 {
			return fmt.Errorf("%w: parameter %s: empty lookup table", ErrConfig, name)
		}

	case domain.FnPiecewiseLinear:
		if len(fn.Points) < 2 {
			return fmt.Errorf("%w: parameter %s: piecewise needs at least 2 points", ErrConfig, name)
		}
		for i := 1; i < len(fn.Points); i++ {
			if fn.Points[i].X <= fn.Points[i-1].X {
				return fmt.Errorf("%w: parameter %s: piecewise points not strictly ascending", ErrConfig, name)
			}
		}

	case domain.FnThresholdLadder:
		if len(fn.Ladder) == 0 {
			return fmt.Errorf("%w: parameter %s: empty ladder", ErrConfig, name)
		}
		for i := 1; i < len(fn.Ladder); i++ {
			if fn.Ladder[i].Threshold >= fn.Ladder[i-1].Threshold {
				return fmt.Errorf("%w: parameter %s: ladder thresholds not strictly descending", ErrConfig, name)
			}
		}

	case domain.FnSigmoid:
		if fn.Scale < 0 {
			return fmt.Errorf("%w: parameter %s: negative sigmoid scale", ErrConfig, name)
		}

	case domain.FnGaussian:
		if fn.Width < 0 {
			return fmt.Errorf("%w: parameter %s: negative gaussian width", ErrConfig, name)
		}

	case domain.FnConcentrationHHI:
		if len(fn.Fields) < 2 {
			return fmt.Errorf("%w: parameter %s: hhi needs share fields", ErrConfig, name)
		}

	case domain.FnComposite:
		if len(fn.Fields) != 2 {
			return fmt.Errorf("%w: parameter %s: composite needs exactly 2 operand fields", ErrConfig, name)
		}
		if fn.Inner == nil {
			return fmt.Errorf("%w: parameter %s: composite missing inner function", ErrConfig, name)
		}
		if fn.Inner.Kind == domain.FnComposite {
			return fmt.Errorf("%w: parameter %s: composite functions do not nest", ErrConfig, name)
		}
		return validateFunction(name+".inner", *fn.Inner)

	default:
		return fmt.Errorf("%w: parameter %s: unknown function kind %q", ErrConfig, name, fn.Kind)
	}
	return nil
}

func validateBreakpoints(bps []domain.ScoreBreakpoint) error {
	if len(bps) < 2 {
		return fmt.Errorf("%w: breakpoint table needs at least 2 anchors", ErrConfig)
	}
	for i := 1; i < len(bps); i++ {
		if bps[i].Probability <= bps[i-1].Probability {
			return fmt.Errorf("%w: breakpoint probabilities not strictly ascending", ErrConfig)
		}
		if bps[i].Score >= bps[i-1].Score {
			return fmt.Errorf("%w: breakpoint scores not strictly descending", ErrConfig)
		}
	}
	return nil
}

// validateTiers requires tiers to be contiguous and non-overlapping over
// the full [300,900] score range.
func validateTiers(tiers []domain.RiskTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: no risk tiers defined", ErrConfig)
	}

	// Tiers are configured highest-score first.
	if tiers[0].MaxScore != 900 {
		return fmt.Errorf("%w: top tier must end at 900, got %d", ErrConfig, tiers[0].MaxScore)
	}
	if tiers[len(tiers)-1].MinScore != 300 {
		return fmt.Errorf("%w: bottom tier must start at 300, got %d", ErrConfig, tiers[len(tiers)-1].MinScore)
	}

	for i, t := range tiers {
		if t.MinScore > t.MaxScore {
			return fmt.Errorf("%w: tier %s has minScore > maxScore", ErrConfig, t.Name)
		}
		if t.RateMin > t.RateMax {
			return fmt.Errorf("%w: tier %s has rateMin > rateMax", ErrConfig, t.Name)
		}
		if t.BaseRate < t.RateMin || t.BaseRate > t.RateMax {
			return fmt.Errorf("%w: tier %s baseRate outside its rate band", ErrConfig, t.Name)
		}
		if i > 0 && t.MaxScore != tiers[i-1].MinScore-1 {
			return fmt.Errorf("%w: gap or overlap between tiers %s and %s",
				ErrConfig, tiers[i-1].Name, t.Name)
		}
	}
	return nil
}

func validateLimits(sc *domain.Scorecard) error {
	for _, cat := range []string{domain.MSMECategoryMicro, domain.MSMECategorySmall, domain.MSMECategoryMedium} {
		bounds, ok := sc.CategoryLimits[cat]
		if !ok {
			return fmt.Errorf("%w: missing limit bounds for MSME category %s", ErrConfig, cat)
		}
		if bounds.Min < 0 || bounds.Max < bounds.Min {
			return fmt.Errorf("%w: invalid limit bounds for MSME category %s", ErrConfig, cat)
		}
	}

	curves := []struct {
		name   string
		points []domain.CurvePoint
	}{
		{"limitCurves.vintage", sc.LimitCurves.Vintage},
		{"limitCurves.cashflowHealth", sc.LimitCurves.CashflowHealth},
		{"limitCurves.paymentDiscipline", sc.LimitCurves.PaymentDiscipline},
		{"pricingCurves.vintageAddOn", sc.PricingCurves.VintageAddOn},
		{"pricingCurves.behaviorDiscount", sc.PricingCurves.BehaviorDiscount},
	}
	for _, c := range curves {
		if len(c.points) < 2 {
			return fmt.Errorf("%w: curve %s needs at least 2 points", ErrConfig, c.name)
		}
		for i := 1; i < len(c.points); i++ {
			if c.points[i].X <= c.points[i-1].X {
				return fmt.Errorf("%w: curve %s points not strictly ascending", ErrConfig, c.name)
			}
		}
	}
	return nil
}
