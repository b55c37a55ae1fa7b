// Package limits implements the loan limit and pricing stage: three
// independent limit estimation methods reconciled conservatively, bounded
// adjustment multipliers, MSME category bounds and risk-based pricing.
package limits

import (
	"math"
)

const (
	// Assumed monthly debt service on outstanding debt, as a fraction of
	// the principal. Covers a blended EMI on typical MSME tenures.
	monthlyDebtServiceRate = 0.03

	// DSCR reported when the applicant has no existing debt service.
	maxDSCR = 99
)

// EMI computes the equated monthly installment for a principal at an
// annual percentage rate over n months. A zero rate degenerates to simple
// division.
func EMI(principal, annualRatePct float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	r := annualRatePct / 12 / 100
	if r == 0 {
		return principal / float64(months)
	}
	factor := math.Pow(1+r, float64(months))
	return principal * r * factor / (factor - 1)
}

// DSCR is the ratio of monthly surplus to the monthly service on existing
// debt. With no existing debt there is no service obligation to fail, so
// maxDSCR is reported regardless of surplus and downstream comparisons
// stay finite.
func DSCR(monthlySurplus, existingDebt float64) float64 {
	debtService := existingDebt * monthlyDebtServiceRate
	if debtService <= 0 {
		return maxDSCR
	}
	if monthlySurplus <= 0 {
		return 0
	}
	return math.Min(monthlySurplus/debtService, maxDSCR)
}
