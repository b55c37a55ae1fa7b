package limits

import (
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/scorecard"
)

// Price computes the annual interest rate for a tier and applicant:
// tier base rate, plus vintage and industry add-ons, minus the behavior
// discount earned by repayment discipline. The result is clipped to the
// tier's rate band and itemized for audit.
func Price(sc *domain.Scorecard, in Input) (float64, domain.RateBreakdown) {
	vintage, _ := in.App.Features.Num("business_age_years")

	industryAddOn, ok := sc.PricingCurves.IndustryAddOn[in.App.BusinessSegment]
	if !ok {
		industryAddOn = sc.PricingCurves.IndustryDefault
	}

	breakdown := domain.RateBreakdown{
		Base:             in.Tier.BaseRate,
		VintageAddOn:     scorecard.Interpolate(sc.PricingCurves.VintageAddOn, vintage),
		IndustryAddOn:    industryAddOn,
		BehaviorDiscount: scorecard.Interpolate(sc.PricingCurves.BehaviorDiscount, in.CategoryScores["D"]),
	}

	rate := breakdown.Base + breakdown.VintageAddOn + breakdown.IndustryAddOn - breakdown.BehaviorDiscount
	return scorecard.Clip(rate, in.Tier.RateMin, in.Tier.RateMax), breakdown
}
