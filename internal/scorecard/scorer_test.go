package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensource-finance/heron/internal/domain"
)

// strongProfile fills in the features of a well-run, established
// business with clean repayment history.
func strongProfile() *domain.Application {
	app := testApplication()
	app.BusinessSegment = "kirana_store"
	app.Features.Categorical["entity_type"] = "private_limited"
	for k, v := range map[string]float64{
		"business_age_years":          8,
		"udyam_registered":            1,
		"gst_registered":              1,
		"shop_license":                1,
		"owner_age_years":             42,
		"owner_experience_years":      12,
		"premises_owned":              1,
		"location_vintage_years":      6,
		"weekly_gtv":                  600_000,
		"monthly_revenue":             2_500_000,
		"revenue_growth_rate":         0.15,
		"revenue_volatility":          0.10,
		"revenue_share_mon":           0.14,
		"revenue_share_tue":           0.14,
		"revenue_share_wed":           0.14,
		"revenue_share_thu":           0.14,
		"revenue_share_fri":           0.15,
		"revenue_share_sat":           0.16,
		"revenue_share_sun":           0.13,
		"avg_transaction_value":       450,
		"monthly_transaction_count":   5000,
		"digital_payment_share":       0.85,
		"weekend_activity_ratio":      0.30,
		"seasonality_index":           1.0,
		"avg_bank_balance":            800_000,
		"monthly_expenses":            300_000,
		"monthly_inflow":              2_600_000,
		"monthly_outflow":             2_100_000,
		"min_balance_breaches":        0,
		"negative_balance_days":       0,
		"banking_vintage_months":      84,
		"cash_deposit_ratio":          0.15,
		"od_utilization_ratio":        0.45,
		"deposit_frequency_per_week":  6,
		"statement_months_available":  12,
		"bureau_score":                780,
		"bounced_cheques_count":       0,
		"previous_writeoffs_count":    0,
		"dpd_30_plus_count":           0,
		"emi_bounced_count":           0,
		"emi_due_count":               24,
		"credit_utilization_ratio":    0.30,
		"active_loan_count":           1,
		"repayment_track_months":      40,
		"recent_enquiries_6m":         1,
		"gst_filing_regularity":       1,
		"gst_turnover_match":          1,
		"itr_filed_years":             3,
		"tax_dues_pending":            0,
		"epf_esi_compliant":           1,
		"trade_license_valid":         1,
		"regulatory_penalties_count":  0,
		"kyc_verified":                1,
		"bank_statement_verified":     1,
		"address_verified":            1,
		"phone_vintage_months":        60,
		"device_risk_flag":            0,
		"data_consistency_score":      0.95,
		"circular_transaction_flag":   0,
		"marketplace_rating":          4.6,
		"review_count":                300,
		"social_media_presence":       1,
		"customer_sentiment_score":    0.7,
		"utility_payment_regularity":  0.95,
	} {
		app.Features.Numeric[k] = v
	}
	return app
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(DefaultScorecard())
	require.NoError(t, err)
	return eng
}

func TestScoreStrongProfile(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Score(strongProfile())
	require.NoError(t, err)

	assert.Greater(t, result.Subscore, 0.75)
	assert.LessOrEqual(t, result.Subscore, 1.0)
	assert.Len(t, result.Categories, 7)
	assert.Empty(t, result.ImputedFields)
}

func TestScoreWeakProfile(t *testing.T) {
	eng := newTestEngine(t)

	app := testApplication()
	app.Features.Numeric["bounced_cheques_count"] = 9
	app.Features.Numeric["negative_balance_days"] = 25
	app.Features.Numeric["bureau_score"] = 420
	app.Features.Numeric["kyc_verified"] = 0

	result, err := eng.Score(app)
	require.NoError(t, err)

	strong, err := eng.Score(strongProfile())
	require.NoError(t, err)

	assert.Less(t, result.Subscore, strong.Subscore)
}

func TestCriticalParameterCapsCategory(t *testing.T) {
	eng := newTestEngine(t)

	app := strongProfile()
	app.Features.Numeric["previous_writeoffs_count"] = 1

	result, err := eng.Score(app)
	require.NoError(t, err)

	credit := result.Contributions["D"]
	assert.True(t, credit.Capped)
	assert.Contains(t, credit.CapReason, "previous_writeoffs")
	// Write-off scores 0.05 < CriticalBelow 0.10, so the cap at 0.15 binds
	// regardless of the otherwise clean credit category.
	assert.LessOrEqual(t, credit.Score, 0.15)
}

func TestCriticalCapNotAppliedWhenClean(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Score(strongProfile())
	require.NoError(t, err)

	credit := result.Contributions["D"]
	assert.False(t, credit.Capped)
	assert.Greater(t, credit.Score, 0.5)
}

func TestCategoryContributionsSumToSubscore(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Score(strongProfile())
	require.NoError(t, err)

	var sum, weight float64
	for _, c := range result.Contributions {
		sum += c.Contribution
		weight += c.Weight
	}
	assert.InDelta(t, 100.0, weight, 1e-9)
	assert.InDelta(t, result.Subscore, sum/weight, 1e-9)
}

func TestScoreIsDeterministic(t *testing.T) {
	eng := newTestEngine(t)
	app := strongProfile()

	first, err := eng.Score(app)
	require.NoError(t, err)
	second, err := eng.Score(app)
	require.NoError(t, err)

	assert.Equal(t, first.Subscore, second.Subscore)
	assert.Equal(t, first.Contributions, second.Contributions)
}

func TestExplanationsMarkImputedFields(t *testing.T) {
	eng := newTestEngine(t)

	app := strongProfile()
	delete(app.Features.Numeric, "bureau_score")

	result, err := eng.Score(app)
	require.NoError(t, err)
	assert.Contains(t, result.ImputedFields, "bureau_score")

	for _, c := range result.Categories {
		if c.ID != "D" {
			continue
		}
		for _, p := range c.Parameters {
			if p.Parameter == "bureau_score" {
				assert.True(t, p.Imputed)
			}
		}
	}
}

func TestExplanationsSortedByImpact(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Score(strongProfile())
	require.NoError(t, err)
	require.NotEmpty(t, result.Explanations)

	// Explanations list the strongest positive contributions first.
	first := result.Explanations[0]
	assert.Greater(t, (first.Score-0.5)*first.Weight, 0.0)
}
