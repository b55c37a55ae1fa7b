package domain

import (
	"time"
)

// ScoreResult is the explainable output of the scoring pipeline.
type ScoreResult struct {
	// FinalScore is the 300-900 credit score.
	FinalScore int `json:"finalScore"`

	// BlendedProbability combines the external model estimate with the
	// rule-based subscore via alpha.
	BlendedProbability float64 `json:"blendedProbability"`

	// Subscore is the 0-1 rule-based score before blending.
	Subscore float64 `json:"subscore"`

	// Alpha actually used for blending (default or caller override).
	Alpha float64 `json:"alpha"`

	RiskTier string `json:"riskTier"`

	// PerCategoryContribution maps category ID to its weighted contribution.
	PerCategoryContribution map[string]CategoryContribution `json:"perCategoryContribution"`

	// Explanations lists the strongest positive and negative parameter
	// contributions, sorted by impact.
	Explanations []ParameterExplanation `json:"explanations,omitempty"`

	// ImputedFields lists optional fields that were missing and received
	// their neutral default.
	ImputedFields []string `json:"imputedFields,omitempty"`
}

// CategoryContribution shows how one category contributed to the subscore.
type CategoryContribution struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`  // 0-1 category score
	Weight       float64 `json:"weight"` // category weight out of 100
	Contribution float64 `json:"contribution"`
	Capped       bool    `json:"capped,omitempty"`
	CapReason    string  `json:"capReason,omitempty"`
}

// ParameterExplanation shows how a single parameter contributed to its
// category score.
type ParameterExplanation struct {
	Parameter    string  `json:"parameter"`
	Category     string  `json:"category"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Imputed      bool    `json:"imputed,omitempty"`
}

// LimitAdjustments holds the bounded multipliers applied to the base limit.
type LimitAdjustments struct {
	Vintage           float64 `json:"vintage"`
	Industry          float64 `json:"industry"`
	CashflowHealth    float64 `json:"cashflowHealth"`
	PaymentDiscipline float64 `json:"paymentDiscipline"`
}

// RateBreakdown itemizes the priced interest rate for audit.
type RateBreakdown struct {
	Base             float64 `json:"base"`
	VintageAddOn     float64 `json:"vintageAddOn"`
	IndustryAddOn    float64 `json:"industryAddOn"`
	BehaviorDiscount float64 `json:"behaviorDiscount"`
}

// LoanLimitResult is the outcome of the three-method limit reconciliation.
// Every intermediate value is retained for explainability.
type LoanLimitResult struct {
	TurnoverMethodLimit float64 `json:"turnoverMethodLimit"`
	MPBFMethodLimit     float64 `json:"mpbfMethodLimit"`
	CashFlowMethodLimit float64 `json:"cashFlowMethodLimit"`

	BaseLimit        float64          `json:"baseLimit"`
	Adjustments      LimitAdjustments `json:"adjustments"`
	AdjustedLimit    float64          `json:"adjustedLimit"`
	RecommendedLimit float64          `json:"recommendedLimit"`

	InterestRate  float64       `json:"interestRate"`
	RateBreakdown RateBreakdown `json:"rateBreakdown"`

	DSCR           float64 `json:"dscr"`
	TenureMonths   int     `json:"tenureMonths"`
	Eligible       bool    `json:"eligible"`
	Conditions     []string `json:"conditions,omitempty"`
}

// Decision is the complete persisted outcome for one application.
type Decision struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenantId"`
	ApplicationID string    `json:"applicationId"`
	ApplicantID   string    `json:"applicantId"`
	Timestamp     time.Time `json:"timestamp"`

	Score ScoreResult     `json:"score"`
	Limit LoanLimitResult `json:"limit"`

	// Policy overlay results, if policy rules are configured.
	PolicyResults []PolicyResult `json:"policyResults,omitempty"`

	Metadata DecisionMetadata `json:"metadata"`
}

// DecisionMetadata contains processing information.
type DecisionMetadata struct {
	TraceID          string `json:"traceId"`
	ScoreMs          int64  `json:"scoreMs"`
	LimitMs          int64  `json:"limitMs"`
	TotalMs          int64  `json:"totalMs"`
	ParametersScored int    `json:"parametersScored"`
	EngineVersion    string `json:"engineVersion"`
}

// Machine-readable ineligibility and condition codes.
const (
	ConditionTierIneligible    = "TIER_INELIGIBLE"
	ConditionDSCRBelowRequired = "DSCR_BELOW_REQUIRED"
	ConditionPolicyDecline     = "POLICY_DECLINE"
	ConditionManualReview      = "MANUAL_REVIEW"
)
