package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/scorecard"
)

func newTestEngine(t *testing.T, policy PolicyEvaluator) *Engine {
	t.Helper()
	scorer, err := scorecard.NewEngine(scorecard.DefaultScorecard())
	require.NoError(t, err)
	return New(scorer, policy, nil)
}

// establishedKirana is a well-banked, compliant store with eight years of
// history and a clean repayment record.
func establishedKirana() *domain.Application {
	app := &domain.Application{
		ID:                  "app-001",
		TenantID:            "tenant-001",
		ApplicantID:         "merchant-001",
		BusinessSegment:     "kirana_store",
		MSMECategory:        domain.MSMECategorySmall,
		ExternalProbability: 0.04,
		Features:            domain.NewFeatureSet(),
		Financials: domain.BusinessFinancials{
			AnnualTurnover:     9_000_000,
			MonthlySurplus:     120_000,
			CurrentAssets:      2_500_000,
			CurrentLiabilities: 900_000,
			ExistingDebt:       300_000,
		},
	}
	app.Features.Categorical["entity_type"] = "private_limited"
	for k, v := range map[string]float64{
		"business_age_years":         8,
		"udyam_registered":           1,
		"gst_registered":             1,
		"shop_license":               1,
		"owner_age_years":            42,
		"owner_experience_years":     12,
		"premises_owned":             1,
		"location_vintage_years":     6,
		"weekly_gtv":                 600_000,
		"monthly_revenue":            2_500_000,
		"revenue_growth_rate":        0.15,
		"revenue_volatility":         0.10,
		"revenue_share_mon":          0.14,
		"revenue_share_tue":          0.14,
		"revenue_share_wed":          0.14,
		"revenue_share_thu":          0.14,
		"revenue_share_fri":          0.15,
		"revenue_share_sat":          0.16,
		"revenue_share_sun":          0.13,
		"avg_transaction_value":      450,
		"monthly_transaction_count":  5000,
		"digital_payment_share":      0.85,
		"weekend_activity_ratio":     0.30,
		"seasonality_index":          1.0,
		"avg_bank_balance":           800_000,
		"monthly_expenses":           300_000,
		"monthly_inflow":             2_600_000,
		"monthly_outflow":            2_100_000,
		"min_balance_breaches":       0,
		"negative_balance_days":      0,
		"banking_vintage_months":     84,
		"cash_deposit_ratio":         0.15,
		"od_utilization_ratio":       0.45,
		"deposit_frequency_per_week": 6,
		"statement_months_available": 12,
		"bureau_score":               780,
		"bounced_cheques_count":      0,
		"previous_writeoffs_count":   0,
		"dpd_30_plus_count":          0,
		"emi_bounced_count":          0,
		"emi_due_count":              24,
		"credit_utilization_ratio":   0.30,
		"active_loan_count":          1,
		"repayment_track_months":     40,
		"recent_enquiries_6m":        1,
		"gst_filing_regularity":      1,
		"gst_turnover_match":         1,
		"itr_filed_years":            3,
		"tax_dues_pending":           0,
		"epf_esi_compliant":          1,
		"trade_license_valid":        1,
		"regulatory_penalties_count": 0,
		"kyc_verified":               1,
		"bank_statement_verified":    1,
		"address_verified":           1,
		"phone_vintage_months":       60,
		"device_risk_flag":           0,
		"data_consistency_score":     0.95,
		"circular_transaction_flag":  0,
		"marketplace_rating":         4.6,
		"review_count":               300,
		"social_media_presence":      1,
		"customer_sentiment_score":   0.7,
		"utility_payment_regularity": 0.95,
	} {
		app.Features.Numeric[k] = v
	}
	return app
}

func TestEvaluateEstablishedBusiness(t *testing.T) {
	eng := newTestEngine(t, nil)

	decision, err := eng.Evaluate(context.Background(), establishedKirana())
	require.NoError(t, err)

	assert.Greater(t, decision.Score.BlendedProbability, 0.02)
	assert.Less(t, decision.Score.BlendedProbability, 0.12)
	assert.Contains(t, []string{"Near Prime", "Standard"}, decision.Score.RiskTier)
	assert.True(t, decision.Limit.Eligible)
	assert.Greater(t, decision.Limit.RecommendedLimit, 0.0)
	assert.GreaterOrEqual(t, decision.Limit.InterestRate, 10.5)
	assert.LessOrEqual(t, decision.Limit.InterestRate, 26.0)
	assert.Empty(t, decision.Score.ImputedFields)

	assert.NotEmpty(t, decision.ID)
	assert.Equal(t, "tenant-001", decision.TenantID)
	assert.Equal(t, "heron-1.0", decision.Metadata.EngineVersion)
	assert.Greater(t, decision.Metadata.ParametersScored, 50)
}

func TestEvaluateHighRiskApplicant(t *testing.T) {
	eng := newTestEngine(t, nil)

	app := establishedKirana()
	app.ExternalProbability = 0.85
	app.Features.Numeric["bureau_score"] = 410
	app.Features.Numeric["bounced_cheques_count"] = 9
	app.Features.Numeric["previous_writeoffs_count"] = 2
	app.Features.Numeric["negative_balance_days"] = 25
	app.Features.Numeric["kyc_verified"] = 0

	decision, err := eng.Evaluate(context.Background(), app)
	require.NoError(t, err)

	assert.Less(t, decision.Score.FinalScore, 420)
	assert.False(t, decision.Limit.Eligible)
	assert.Contains(t, decision.Limit.Conditions, domain.ConditionTierIneligible)
	assert.Equal(t, 0.0, decision.Limit.RecommendedLimit)
	assert.Equal(t, 0, decision.Limit.TenureMonths)
}

func TestEvaluateZeroDebtApplicant(t *testing.T) {
	eng := newTestEngine(t, nil)

	app := establishedKirana()
	app.Financials.ExistingDebt = 0

	decision, err := eng.Evaluate(context.Background(), app)
	require.NoError(t, err)

	assert.True(t, decision.Limit.Eligible)
	assert.InDelta(t, 99.0, decision.Limit.DSCR, 1e-9)
	assert.NotContains(t, decision.Limit.Conditions, domain.ConditionDSCRBelowRequired)
}

func TestEvaluateSmallTraderAcceptanceBand(t *testing.T) {
	eng := newTestEngine(t, nil)

	// A strong trading profile with the documented acceptance inputs:
	// five years of vintage, 350k weekly GTV and a 0.07 external estimate
	// blended at the default 0.7 weight.
	app := establishedKirana()
	app.BusinessSegment = "small_trading"
	app.Features.Numeric["business_age_years"] = 5
	app.Features.Numeric["weekly_gtv"] = 350_000
	app.ExternalProbability = 0.07
	alpha := 0.7
	app.Alpha = &alpha

	decision, err := eng.Evaluate(context.Background(), app)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, decision.Score.BlendedProbability, 0.049)
	assert.LessOrEqual(t, decision.Score.BlendedProbability, 0.12)
	assert.Contains(t, []string{"Near Prime", "Standard"}, decision.Score.RiskTier)
}

func TestEvaluateZeroMethodLimitsClipsToFloor(t *testing.T) {
	eng := newTestEngine(t, nil)

	// A creditworthy applicant whose balance sheet gives every limit
	// method zero: no turnover, no surplus, assets offset by liabilities,
	// no existing debt. The recommendation clips up to the category floor
	// rather than staying at zero.
	app := establishedKirana()
	app.Financials = domain.BusinessFinancials{
		CurrentAssets:      600_000,
		CurrentLiabilities: 600_000,
	}

	decision, err := eng.Evaluate(context.Background(), app)
	require.NoError(t, err)

	assert.True(t, decision.Limit.Eligible)
	assert.Equal(t, 0.0, decision.Limit.BaseLimit)
	assert.InDelta(t, 99.0, decision.Limit.DSCR, 1e-9)
	assert.InDelta(t, 100_000, decision.Limit.RecommendedLimit, 1e-6)
}

func TestEvaluateThinFileApplicant(t *testing.T) {
	eng := newTestEngine(t, nil)

	full, err := eng.Evaluate(context.Background(), establishedKirana())
	require.NoError(t, err)

	thin := establishedKirana()
	delete(thin.Features.Numeric, "bureau_score")
	delete(thin.Features.Numeric, "repayment_track_months")
	delete(thin.Features.Numeric, "itr_filed_years")

	decision, err := eng.Evaluate(context.Background(), thin)
	require.NoError(t, err)

	assert.Contains(t, decision.Score.ImputedFields, "bureau_score")
	assert.Contains(t, decision.Score.ImputedFields, "itr_filed_years")
	// Missing history degrades the score, it never errors.
	assert.Less(t, decision.Score.FinalScore, full.Score.FinalScore)
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := newTestEngine(t, nil)
	app := establishedKirana()

	first, err := eng.Evaluate(context.Background(), app)
	require.NoError(t, err)
	second, err := eng.Evaluate(context.Background(), app)
	require.NoError(t, err)

	assert.Equal(t, first.Score.FinalScore, second.Score.FinalScore)
	assert.Equal(t, first.Score.BlendedProbability, second.Score.BlendedProbability)
	assert.Equal(t, first.Score.RiskTier, second.Score.RiskTier)
	assert.Equal(t, first.Limit.RecommendedLimit, second.Limit.RecommendedLimit)
	assert.Equal(t, first.Limit.InterestRate, second.Limit.InterestRate)
}

func TestEvaluateAlphaOverride(t *testing.T) {
	eng := newTestEngine(t, nil)

	app := establishedKirana()
	alpha := 1.0
	app.Alpha = &alpha

	decision, err := eng.Evaluate(context.Background(), app)
	require.NoError(t, err)

	// With alpha 1 the blend follows the external model exactly.
	assert.InDelta(t, 1.0, decision.Score.Alpha, 1e-9)
	assert.InDelta(t, app.ExternalProbability, decision.Score.BlendedProbability, 1e-9)
}

func TestEvaluateValidation(t *testing.T) {
	eng := newTestEngine(t, nil)

	t.Run("ExternalProbabilityOutOfRange", func(t *testing.T) {
		app := establishedKirana()
		app.ExternalProbability = 1.5
		_, err := eng.Evaluate(context.Background(), app)
		require.Error(t, err)
		assert.ErrorIs(t, err, scorecard.ErrValidation)
	})

	t.Run("AlphaOutOfRange", func(t *testing.T) {
		app := establishedKirana()
		alpha := -0.1
		app.Alpha = &alpha
		_, err := eng.Evaluate(context.Background(), app)
		require.Error(t, err)
		assert.ErrorIs(t, err, scorecard.ErrValidation)
	})

	t.Run("MissingSegment", func(t *testing.T) {
		app := establishedKirana()
		app.BusinessSegment = ""
		_, err := eng.Evaluate(context.Background(), app)
		require.Error(t, err)
		assert.ErrorIs(t, err, scorecard.ErrValidation)
	})
}

type stubPolicy struct {
	results []domain.PolicyResult
}

func (s *stubPolicy) Evaluate(ctx context.Context, app *domain.Application, decision *domain.Decision) []domain.PolicyResult {
	return s.results
}

func TestEvaluatePolicyDecline(t *testing.T) {
	policy := &stubPolicy{results: []domain.PolicyResult{
		{RuleID: "max-exposure", Triggered: true, Severity: domain.PolicySeverityDecline},
	}}
	eng := newTestEngine(t, policy)

	decision, err := eng.Evaluate(context.Background(), establishedKirana())
	require.NoError(t, err)

	assert.False(t, decision.Limit.Eligible)
	assert.Equal(t, 0.0, decision.Limit.RecommendedLimit)
	assert.Equal(t, 0, decision.Limit.TenureMonths)
	assert.Contains(t, decision.Limit.Conditions, domain.ConditionPolicyDecline)
	assert.Len(t, decision.PolicyResults, 1)
}

func TestEvaluatePolicyReviewAndCondition(t *testing.T) {
	policy := &stubPolicy{results: []domain.PolicyResult{
		{RuleID: "velocity", Triggered: true, Severity: domain.PolicySeverityReview},
		{RuleID: "collateral", Triggered: true, Severity: domain.PolicySeverityCondition, Code: "COLLATERAL_REQUIRED"},
		{RuleID: "dormant", Triggered: false, Severity: domain.PolicySeverityDecline},
	}}
	eng := newTestEngine(t, policy)

	decision, err := eng.Evaluate(context.Background(), establishedKirana())
	require.NoError(t, err)

	// Review and condition severities never flip eligibility.
	assert.True(t, decision.Limit.Eligible)
	assert.Contains(t, decision.Limit.Conditions, domain.ConditionManualReview)
	assert.Contains(t, decision.Limit.Conditions, "COLLATERAL_REQUIRED")
	assert.NotContains(t, decision.Limit.Conditions, domain.ConditionPolicyDecline)
}
