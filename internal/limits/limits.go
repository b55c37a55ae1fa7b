package limits

import (
	"math"

	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/scorecard"
)

// Working-capital margin retained by the borrower under the MPBF method.
const mpbfBankFinanceShare = 0.75

// Input carries everything the limit stage needs from the scoring stage.
type Input struct {
	App  *domain.Application
	Tier domain.RiskTier

	// CategoryScores maps category ID to its 0-1 score; the cash flow and
	// payment discipline adjustments read C and D.
	CategoryScores map[string]float64
}

// Calculate reconciles the three limit estimation methods, applies the
// bounded adjustment multipliers, clips to the MSME category bounds and
// prices the facility. Ineligible applicants get a zero recommended limit
// with machine-readable condition codes.
func Calculate(sc *domain.Scorecard, in Input) domain.LoanLimitResult {
	fin := in.App.Financials

	turnover := turnoverMethod(fin, in.Tier)
	mpbf := mpbfMethod(fin)
	cashflow := cashFlowMethod(fin, in.Tier)

	base := math.Min(turnover, math.Min(mpbf, cashflow))
	if base < 0 || math.IsNaN(base) || math.IsInf(base, 0) {
		base = 0
	}

	adj := adjustments(sc, in)
	adjusted := base * adj.Vintage * adj.Industry * adj.CashflowHealth * adj.PaymentDiscipline

	dscr := DSCR(fin.MonthlySurplus, fin.ExistingDebt)

	result := domain.LoanLimitResult{
		TurnoverMethodLimit: turnover,
		MPBFMethodLimit:     mpbf,
		CashFlowMethodLimit: cashflow,
		BaseLimit:           base,
		Adjustments:         adj,
		AdjustedLimit:       adjusted,
		DSCR:                dscr,
		TenureMonths:        in.Tier.MaxTenureMonths,
		Eligible:            true,
	}

	if !in.Tier.Eligible {
		result.Eligible = false
		result.Conditions = append(result.Conditions, domain.ConditionTierIneligible)
	}
	if dscr < in.Tier.DSCRRequired {
		result.Eligible = false
		result.Conditions = append(result.Conditions, domain.ConditionDSCRBelowRequired)
	}
	if !result.Eligible {
		result.RecommendedLimit = 0
		result.TenureMonths = 0
		return result
	}

	bounds := sc.CategoryLimits[in.App.MSMECategory]
	result.RecommendedLimit = scorecard.Clip(adjusted, bounds.Min, bounds.Max)

	return result
}

// turnoverMethod scales annual turnover by the tier's multiplier.
func turnoverMethod(fin domain.BusinessFinancials, tier domain.RiskTier) float64 {
	if fin.AnnualTurnover <= 0 {
		return 0
	}
	return fin.AnnualTurnover * tier.TurnoverMultiplier
}

// mpbfMethod is the maximum permissible bank finance on working capital:
// 75% of the net working capital gap, less debt already drawn.
func mpbfMethod(fin domain.BusinessFinancials) float64 {
	gap := fin.CurrentAssets - fin.CurrentLiabilities
	if gap <= 0 {
		return 0
	}
	return math.Max(0, mpbfBankFinanceShare*gap-fin.ExistingDebt)
}

// cashFlowMethod sizes the limit so that servicing it from monthly surplus
// keeps the tier's required DSCR.
func cashFlowMethod(fin domain.BusinessFinancials, tier domain.RiskTier) float64 {
	if fin.MonthlySurplus <= 0 || tier.DSCRRequired <= 0 {
		return 0
	}
	serviceable := fin.MonthlySurplus / tier.DSCRRequired
	return serviceable / monthlyDebtServiceRate
}

func adjustments(sc *domain.Scorecard, in Input) domain.LimitAdjustments {
	vintage, _ := in.App.Features.Num("business_age_years")

	industry, ok := sc.LimitCurves.Industry[in.App.BusinessSegment]
	if !ok {
		industry = sc.LimitCurves.IndustryDefault
	}

	return domain.LimitAdjustments{
		Vintage:           scorecard.Interpolate(sc.LimitCurves.Vintage, vintage),
		Industry:          industry,
		CashflowHealth:    scorecard.Interpolate(sc.LimitCurves.CashflowHealth, in.CategoryScores["C"]),
		PaymentDiscipline: scorecard.Interpolate(sc.LimitCurves.PaymentDiscipline, in.CategoryScores["D"]),
	}
}
