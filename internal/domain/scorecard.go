package domain

// Scorecard is the complete immutable configuration for the scoring and
// limit engine: category/parameter weight tables, the scoring-function
// registry, the probability-to-score breakpoint table, the risk tier
// table, per-MSME-category limit bounds and the adjustment curves.
//
// A Scorecard is loaded once at startup (built-in default or YAML file),
// validated, and never mutated afterwards. Reconfiguration is a redeploy.
type Scorecard struct {
	Version string `json:"version" yaml:"version"`

	// DefaultAlpha is the blending weight applied when the caller does
	// not override it.
	DefaultAlpha float64 `json:"defaultAlpha" yaml:"defaultAlpha"`

	// Categories A-G in order. Weights must sum to exactly 100.
	Categories []Category `json:"categories" yaml:"categories"`

	// Breakpoints map blended probability to a 300-900 score, strictly
	// decreasing score as probability increases.
	Breakpoints []ScoreBreakpoint `json:"breakpoints" yaml:"breakpoints"`

	// Tiers must tile [300,900] without gaps or overlaps.
	Tiers []RiskTier `json:"tiers" yaml:"tiers"`

	// CategoryLimits bounds the recommended limit per MSME category.
	CategoryLimits map[string]LimitBounds `json:"categoryLimits" yaml:"categoryLimits"`

	// LimitCurves and PricingCurves are the adjustment policy tables.
	LimitCurves   LimitCurves   `json:"limitCurves" yaml:"limitCurves"`
	PricingCurves PricingCurves `json:"pricingCurves" yaml:"pricingCurves"`
}

// Category is one of the seven scoring categories.
type Category struct {
	ID     string  `json:"id" yaml:"id"`     // "A".."G"
	Name   string  `json:"name" yaml:"name"` // e.g. "Cash Flow & Banking"
	Weight float64 `json:"weight" yaml:"weight"`

	// Parameters' weights must sum to the category weight.
	Parameters []Parameter `json:"parameters" yaml:"parameters"`
}

// Parameter binds one applicant field to a scoring function and weight.
type Parameter struct {
	Name   string  `json:"name" yaml:"name"`
	Field  string  `json:"field" yaml:"field"`
	Weight float64 `json:"weight" yaml:"weight"`

	// Optional parameters degrade to Default when the field is missing;
	// required parameters degrade to the floor of their domain (Min), so
	// absent mandatory data scores conservatively rather than neutrally.
	// Either way the imputation is recorded, never an error.
	Optional   bool    `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default    float64 `json:"default" yaml:"default"`
	DefaultCat string  `json:"defaultCat,omitempty" yaml:"defaultCat,omitempty"`

	// Min/Max clip the numeric input domain before scoring.
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`

	Fn ScoringFunction `json:"fn" yaml:"fn"`

	// Critical parameters cap their category's score when breached:
	// if the parameter scores below CriticalBelow, the category score is
	// bounded by CapAt. Used for severe repayment events (write-offs,
	// heavy cheque bounces) that a weighted average would dilute.
	CriticalBelow float64 `json:"criticalBelow,omitempty" yaml:"criticalBelow,omitempty"`
	CapAt         float64 `json:"capAt,omitempty" yaml:"capAt,omitempty"`
}

// FunctionKind tags the closed set of scoring function variants.
type FunctionKind string

const (
	FnCategoricalLookup FunctionKind = "lookup"
	FnPiecewiseLinear   FunctionKind = "piecewise"
	FnThresholdLadder   FunctionKind = "ladder"
	FnSigmoid           FunctionKind = "sigmoid"
	FnGaussian          FunctionKind = "gaussian"
	FnConcentrationHHI  FunctionKind = "hhi"
	FnComposite         FunctionKind = "composite"
)

// ScoringFunction is a tagged variant. Exactly one variant's fields are
// meaningful depending on Kind; the evaluator handles every kind
// exhaustively and statically.
type ScoringFunction struct {
	Kind FunctionKind `json:"kind" yaml:"kind"`

	// lookup: exact-match table with a documented fallback for unknown
	// categories (never an error).
	Lookup        map[string]float64 `json:"lookup,omitempty" yaml:"lookup,omitempty"`
	LookupDefault float64            `json:"lookupDefault,omitempty" yaml:"lookupDefault,omitempty"`

	// piecewise: ordered breakpoints, linear interpolation between them,
	// clamped to boundary scores outside the range.
	Points []CurvePoint `json:"points,omitempty" yaml:"points,omitempty"`

	// ladder: ordered by descending threshold; the first step whose
	// threshold the value meets or exceeds wins.
	Ladder []LadderStep `json:"ladder,omitempty" yaml:"ladder,omitempty"`

	// sigmoid: 1 / (1 + exp(-(x-center)/scale)).
	Center float64 `json:"center,omitempty" yaml:"center,omitempty"`
	Scale  float64 `json:"scale,omitempty" yaml:"scale,omitempty"`

	// gaussian: exp(-((x-optimal)/width)^2), penalizing distance from an
	// industry-typical optimal value.
	Optimal float64 `json:"optimal,omitempty" yaml:"optimal,omitempty"`
	Width   float64 `json:"width,omitempty" yaml:"width,omitempty"`

	// hhi: Fields name the revenue share inputs; composite: Fields name
	// the numerator and denominator of the derived ratio.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// composite: derived-ratio operation ("ratio" is the only op today)
	// and the inner function applied to the derived value. Fallback is the
	// documented score substituted when the ratio is undefined.
	Op       string           `json:"op,omitempty" yaml:"op,omitempty"`
	Inner    *ScoringFunction `json:"inner,omitempty" yaml:"inner,omitempty"`
	Fallback float64          `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// CurvePoint is one (x, y) anchor of a piecewise-linear curve.
type CurvePoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// LadderStep maps a threshold to a score.
type LadderStep struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Score     float64 `json:"score" yaml:"score"`
}

// ScoreBreakpoint anchors the probability-to-score mapping.
type ScoreBreakpoint struct {
	Probability float64 `json:"probability" yaml:"probability"`
	Score       int     `json:"score" yaml:"score"`
}

// RiskTier buckets a score range with its lending terms.
type RiskTier struct {
	Name               string  `json:"name" yaml:"name"`
	MinScore           int     `json:"minScore" yaml:"minScore"`
	MaxScore           int     `json:"maxScore" yaml:"maxScore"`
	TurnoverMultiplier float64 `json:"turnoverMultiplier" yaml:"turnoverMultiplier"`
	BaseRate           float64 `json:"baseRate" yaml:"baseRate"`
	RateMin            float64 `json:"rateMin" yaml:"rateMin"`
	RateMax            float64 `json:"rateMax" yaml:"rateMax"`
	DSCRRequired       float64 `json:"dscrRequired" yaml:"dscrRequired"`
	MaxTenureMonths    int     `json:"maxTenureMonths" yaml:"maxTenureMonths"`
	Eligible           bool    `json:"eligible" yaml:"eligible"`
}

// LimitBounds bounds the recommended limit for one MSME category.
type LimitBounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// LimitCurves are the adjustment-multiplier tables for the limit stage.
// Curve outputs are bounded multipliers; interpolation is monotonic linear
// between the configured points.
type LimitCurves struct {
	Vintage           []CurvePoint       `json:"vintage" yaml:"vintage"`
	Industry          map[string]float64 `json:"industry" yaml:"industry"`
	IndustryDefault   float64            `json:"industryDefault" yaml:"industryDefault"`
	CashflowHealth    []CurvePoint       `json:"cashflowHealth" yaml:"cashflowHealth"`
	PaymentDiscipline []CurvePoint       `json:"paymentDiscipline" yaml:"paymentDiscipline"`
}

// PricingCurves are the rate adjustment tables for the pricing stage,
// expressed in percentage points.
type PricingCurves struct {
	VintageAddOn     []CurvePoint       `json:"vintageAddOn" yaml:"vintageAddOn"`
	IndustryAddOn    map[string]float64 `json:"industryAddOn" yaml:"industryAddOn"`
	IndustryDefault  float64            `json:"industryDefault" yaml:"industryDefault"`
	BehaviorDiscount []CurvePoint       `json:"behaviorDiscount" yaml:"behaviorDiscount"`
}
