package scorecard

import (
	"github.com/opensource-finance/heron/internal/domain"
)

// DefaultScorecard returns the built-in scoring and limit tables for the
// Indian MSME segment. Category weights: identity 10, revenue 20, cash
// flow 25, credit 22, compliance 12, fraud 7, external 4.
func DefaultScorecard() *domain.Scorecard {
	return &domain.Scorecard{
		Version:      "2026.08",
		DefaultAlpha: 0.7,
		Categories: []domain.Category{
			categoryIdentity(),
			categoryRevenue(),
			categoryCashFlow(),
			categoryCredit(),
			categoryCompliance(),
			categoryFraud(),
			categoryExternal(),
		},
		Breakpoints: []domain.ScoreBreakpoint{
			{Probability: 0.00, Score: 900},
			{Probability: 0.02, Score: 750},
			{Probability: 0.05, Score: 650},
			{Probability: 0.12, Score: 550},
			{Probability: 0.25, Score: 450},
			{Probability: 0.40, Score: 400},
			{Probability: 0.60, Score: 350},
			{Probability: 1.00, Score: 300},
		},
		Tiers: []domain.RiskTier{
			{Name: "Prime", MinScore: 740, MaxScore: 900, TurnoverMultiplier: 0.30, BaseRate: 11.0, RateMin: 10.5, RateMax: 12.5, DSCRRequired: 1.25, MaxTenureMonths: 48, Eligible: true},
			{Name: "Near Prime", MinScore: 660, MaxScore: 739, TurnoverMultiplier: 0.25, BaseRate: 13.0, RateMin: 12.5, RateMax: 14.5, DSCRRequired: 1.35, MaxTenureMonths: 36, Eligible: true},
			{Name: "Standard", MinScore: 560, MaxScore: 659, TurnoverMultiplier: 0.20, BaseRate: 15.5, RateMin: 14.5, RateMax: 17.0, DSCRRequired: 1.50, MaxTenureMonths: 24, Eligible: true},
			{Name: "Watch", MinScore: 480, MaxScore: 559, TurnoverMultiplier: 0.12, BaseRate: 18.0, RateMin: 17.0, RateMax: 19.5, DSCRRequired: 1.75, MaxTenureMonths: 18, Eligible: true},
			{Name: "Subprime", MinScore: 420, MaxScore: 479, TurnoverMultiplier: 0.08, BaseRate: 20.5, RateMin: 19.5, RateMax: 22.0, DSCRRequired: 2.00, MaxTenureMonths: 12, Eligible: true},
			{Name: "High Risk", MinScore: 300, MaxScore: 419, TurnoverMultiplier: 0, BaseRate: 24.0, RateMin: 22.0, RateMax: 26.0, DSCRRequired: 2.50, MaxTenureMonths: 0, Eligible: false},
		},
		CategoryLimits: map[string]domain.LimitBounds{
			domain.MSMECategoryMicro:  {Min: 25_000, Max: 1_000_000},
			domain.MSMECategorySmall:  {Min: 100_000, Max: 5_000_000},
			domain.MSMECategoryMedium: {Min: 250_000, Max: 20_000_000},
		},
		LimitCurves: domain.LimitCurves{
			Vintage: []domain.CurvePoint{
				{X: 0, Y: 0.50}, {X: 1, Y: 0.70}, {X: 3, Y: 0.95}, {X: 5, Y: 1.05}, {X: 10, Y: 1.20},
			},
			Industry: map[string]float64{
				"kirana_store":        1.00,
				"small_trading":       0.95,
				"retail_trading":      0.95,
				"food_service":        0.85,
				"light_manufacturing": 1.05,
				"services":            1.00,
				"transport":           0.80,
				"ecommerce_seller":    1.10,
			},
			IndustryDefault: 0.90,
			CashflowHealth: []domain.CurvePoint{
				{X: 0, Y: 0.70}, {X: 1, Y: 1.10},
			},
			PaymentDiscipline: []domain.CurvePoint{
				{X: 0, Y: 0.80}, {X: 1, Y: 1.10},
			},
		},
		PricingCurves: domain.PricingCurves{
			VintageAddOn: []domain.CurvePoint{
				{X: 0, Y: 1.5}, {X: 2, Y: 1.0}, {X: 5, Y: 0.25}, {X: 10, Y: 0},
			},
			IndustryAddOn: map[string]float64{
				"kirana_store":        0,
				"small_trading":       0.25,
				"retail_trading":      0.25,
				"food_service":        0.75,
				"light_manufacturing": -0.25,
				"services":            0,
				"transport":           1.0,
				"ecommerce_seller":    -0.5,
			},
			IndustryDefault: 0.5,
			BehaviorDiscount: []domain.CurvePoint{
				{X: 0, Y: 0}, {X: 0.6, Y: 0.25}, {X: 0.85, Y: 1.0}, {X: 1, Y: 1.5},
			},
		},
	}
}

func categoryIdentity() domain.Category {
	return domain.Category{
		ID:     "A",
		Name:   "Business Identity & Stability",
		Weight: 10,
		Parameters: []domain.Parameter{
			{
				Name: "entity_type", Field: "entity_type", Weight: 1.5, DefaultCat: "proprietorship",
				Fn: domain.ScoringFunction{Kind: domain.FnCategoricalLookup, Lookup: map[string]float64{
					"proprietorship":  0.50,
					"partnership":     0.60,
					"llp":             0.75,
					"private_limited": 0.90,
					"public_limited":  1.00,
				}, LookupDefault: 0.40},
			},
			{
				Name: "business_age", Field: "business_age_years", Weight: 2.0, Min: 0, Max: 50,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.05}, {X: 1, Y: 0.30}, {X: 3, Y: 0.60}, {X: 5, Y: 0.80}, {X: 10, Y: 1.00},
				}},
			},
			{
				Name: "business_segment", Field: "business_segment", Weight: 1.0, DefaultCat: "services",
				Fn: domain.ScoringFunction{Kind: domain.FnCategoricalLookup, Lookup: map[string]float64{
					"kirana_store":        0.80,
					"small_trading":       0.70,
					"retail_trading":      0.70,
					"food_service":        0.55,
					"light_manufacturing": 0.75,
					"services":            0.75,
					"transport":           0.60,
					"ecommerce_seller":    0.85,
				}, LookupDefault: 0.60},
			},
			{
				Name: "udyam_registered", Field: "udyam_registered", Weight: 1.0,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.25},
				}},
			},
			{
				Name: "gst_registered", Field: "gst_registered", Weight: 1.0,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.30},
				}},
			},
			{
				Name: "shop_license", Field: "shop_license", Weight: 0.5, Optional: true,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.45},
				}},
			},
			{
				Name: "owner_age", Field: "owner_age_years", Weight: 1.0, Optional: true, Default: 40, Min: 18, Max: 80,
				Fn: domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 42, Width: 16},
			},
			{
				Name: "owner_experience", Field: "owner_experience_years", Weight: 1.0, Optional: true, Default: 3, Min: 0, Max: 60,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.20}, {X: 2, Y: 0.50}, {X: 5, Y: 0.80}, {X: 15, Y: 1.00},
				}},
			},
			{
				Name: "premises_owned", Field: "premises_owned", Weight: 0.5, Optional: true,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.55},
				}},
			},
			{
				Name: "location_vintage", Field: "location_vintage_years", Weight: 0.5, Optional: true, Default: 2, Min: 0, Max: 50,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.30}, {X: 2, Y: 0.60}, {X: 5, Y: 1.00},
				}},
			},
		},
	}
}

func categoryRevenue() domain.Category {
	return domain.Category{
		ID:     "B",
		Name:   "Revenue Performance",
		Weight: 20,
		Parameters: []domain.Parameter{
			{
				Name: "weekly_gtv", Field: "weekly_gtv", Weight: 3.0, Min: 0, Max: 50_000_000,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.05}, {X: 25_000, Y: 0.30}, {X: 100_000, Y: 0.55},
					{X: 250_000, Y: 0.75}, {X: 500_000, Y: 0.90}, {X: 1_500_000, Y: 1.00},
				}},
			},
			{
				Name: "monthly_revenue", Field: "monthly_revenue", Weight: 2.5, Min: 0, Max: 200_000_000,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.05}, {X: 100_000, Y: 0.35}, {X: 400_000, Y: 0.60},
					{X: 1_000_000, Y: 0.80}, {X: 4_000_000, Y: 1.00},
				}},
			},
			{
				Name: "revenue_growth", Field: "revenue_growth_rate", Weight: 2.5, Optional: true, Default: 0, Min: -1, Max: 3,
				Fn: domain.ScoringFunction{Kind: domain.FnSigmoid, Center: 0.04, Scale: 0.07},
			},
			{
				Name: "revenue_volatility", Field: "revenue_volatility", Weight: 2.0, Optional: true, Default: 0.3, Min: 0, Max: 2,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0.05, Y: 1.00}, {X: 0.15, Y: 0.80}, {X: 0.30, Y: 0.55}, {X: 0.50, Y: 0.30}, {X: 0.80, Y: 0.10},
				}},
			},
			{
				Name: "daily_concentration", Field: "daily_revenue_concentration", Weight: 2.0,
				Fn: domain.ScoringFunction{Kind: domain.FnConcentrationHHI, Fields: []string{
					"revenue_share_mon", "revenue_share_tue", "revenue_share_wed",
					"revenue_share_thu", "revenue_share_fri", "revenue_share_sat", "revenue_share_sun",
				}, Fallback: 0.5},
			},
			{
				Name: "avg_transaction_value", Field: "avg_transaction_value", Weight: 1.5, Optional: true, Default: 450, Min: 0, Max: 1_000_000,
				Fn: domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 450, Width: 600},
			},
			{
				Name: "transaction_count", Field: "monthly_transaction_count", Weight: 2.0, Min: 0, Max: 1_000_000,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.05}, {X: 200, Y: 0.40}, {X: 800, Y: 0.70}, {X: 2500, Y: 0.90}, {X: 6000, Y: 1.00},
				}},
			},
			{
				Name: "digital_share", Field: "digital_payment_share", Weight: 1.5, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.20}, {X: 0.3, Y: 0.50}, {X: 0.6, Y: 0.80}, {X: 0.9, Y: 1.00},
				}},
			},
			{
				Name: "weekend_activity", Field: "weekend_activity_ratio", Weight: 1.0, Optional: true, Default: 0.30, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 0.30, Width: 0.25},
			},
			{
				Name: "seasonality", Field: "seasonality_index", Weight: 2.0, Optional: true, Default: 1.0, Min: 0, Max: 5,
				Fn: domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 1.0, Width: 0.6},
			},
		},
	}
}

func categoryCashFlow() domain.Category {
	return domain.Category{
		ID:     "C",
		Name:   "Cash Flow & Banking",
		Weight: 25,
		Parameters: []domain.Parameter{
			{
				Name: "avg_bank_balance", Field: "avg_bank_balance", Weight: 3.0, Min: 0, Max: 500_000_000,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.05}, {X: 25_000, Y: 0.35}, {X: 100_000, Y: 0.60},
					{X: 300_000, Y: 0.80}, {X: 1_000_000, Y: 1.00},
				}},
			},
			{
				Name: "balance_coverage", Field: "balance_coverage_months", Weight: 3.5,
				Fn: domain.ScoringFunction{Kind: domain.FnComposite, Op: "ratio",
					Fields: []string{"avg_bank_balance", "monthly_expenses"}, Fallback: 1.0,
					Inner: &domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
						{X: 0, Y: 0.05}, {X: 0.5, Y: 0.30}, {X: 1, Y: 0.55}, {X: 2, Y: 0.80}, {X: 4, Y: 1.00},
					}},
				},
			},
			{
				Name: "inflow_outflow", Field: "inflow_outflow_ratio", Weight: 3.0,
				Fn: domain.ScoringFunction{Kind: domain.FnComposite, Op: "ratio",
					Fields: []string{"monthly_inflow", "monthly_outflow"}, Fallback: 1.0,
					Inner: &domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
						{X: 0.5, Y: 0.05}, {X: 0.8, Y: 0.30}, {X: 1.0, Y: 0.55}, {X: 1.2, Y: 0.80}, {X: 1.5, Y: 1.00},
					}},
				},
			},
			{
				Name: "min_balance_breaches", Field: "min_balance_breaches", Weight: 2.5, Min: 0, Max: 100,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 10, Score: 0.05}, {Threshold: 6, Score: 0.20}, {Threshold: 3, Score: 0.45},
					{Threshold: 1, Score: 0.70}, {Threshold: 0, Score: 1.00},
				}},
			},
			{
				Name: "negative_balance_days", Field: "negative_balance_days", Weight: 2.5, Min: 0, Max: 366,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 20, Score: 0}, {Threshold: 10, Score: 0.20}, {Threshold: 5, Score: 0.45},
					{Threshold: 1, Score: 0.70}, {Threshold: 0, Score: 1.00},
				}},
			},
			{
				Name: "banking_vintage", Field: "banking_vintage_months", Weight: 2.5, Min: 0, Max: 600,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.10}, {X: 6, Y: 0.35}, {X: 12, Y: 0.60}, {X: 36, Y: 0.85}, {X: 72, Y: 1.00},
				}},
			},
			{
				Name: "cash_deposit_ratio", Field: "cash_deposit_ratio", Weight: 2.0, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 1.00}, {X: 0.25, Y: 0.85}, {X: 0.5, Y: 0.60}, {X: 0.75, Y: 0.35}, {X: 1, Y: 0.15},
				}},
			},
			{
				Name: "od_utilization", Field: "od_utilization_ratio", Weight: 2.0, Optional: true, Default: 0.45, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 0.45, Width: 0.35},
			},
			{
				Name: "deposit_frequency", Field: "deposit_frequency_per_week", Weight: 2.0, Min: 0, Max: 50,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.10}, {X: 1, Y: 0.40}, {X: 3, Y: 0.70}, {X: 6, Y: 1.00},
				}},
			},
			{
				Name: "statement_depth", Field: "statement_months_available", Weight: 2.0, Min: 0, Max: 120,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.10}, {X: 3, Y: 0.50}, {X: 6, Y: 0.80}, {X: 12, Y: 1.00},
				}},
			},
		},
	}
}

func categoryCredit() domain.Category {
	return domain.Category{
		ID:     "D",
		Name:   "Credit History & Repayment",
		Weight: 22,
		Parameters: []domain.Parameter{
			{
				Name: "bureau_score", Field: "bureau_score", Weight: 5.0, Optional: true, Default: 650, Min: 300, Max: 900,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 300, Y: 0.02}, {X: 550, Y: 0.25}, {X: 650, Y: 0.55},
					{X: 700, Y: 0.75}, {X: 750, Y: 0.90}, {X: 850, Y: 1.00},
				}},
			},
			{
				Name: "bounced_cheques", Field: "bounced_cheques_count", Weight: 4.0, Min: 0, Max: 100,
				CriticalBelow: 0.15, CapAt: 0.20,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 8, Score: 0.02}, {Threshold: 6, Score: 0.10}, {Threshold: 4, Score: 0.30},
					{Threshold: 2, Score: 0.55}, {Threshold: 1, Score: 0.75}, {Threshold: 0, Score: 1.00},
				}},
			},
			{
				Name: "previous_writeoffs", Field: "previous_writeoffs_count", Weight: 3.0, Min: 0, Max: 20,
				CriticalBelow: 0.10, CapAt: 0.15,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 2, Score: 0}, {Threshold: 1, Score: 0.05}, {Threshold: 0, Score: 1.00},
				}},
			},
			{
				Name: "dpd_30_plus", Field: "dpd_30_plus_count", Weight: 2.5, Min: 0, Max: 50,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 6, Score: 0.05}, {Threshold: 3, Score: 0.25}, {Threshold: 1, Score: 0.55}, {Threshold: 0, Score: 1.00},
				}},
			},
			{
				Name: "emi_bounce_ratio", Field: "emi_bounce_ratio", Weight: 2.0,
				Fn: domain.ScoringFunction{Kind: domain.FnComposite, Op: "ratio",
					Fields: []string{"emi_bounced_count", "emi_due_count"}, Fallback: 1.0,
					Inner: &domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
						{X: 0, Y: 1.00}, {X: 0.1, Y: 0.70}, {X: 0.25, Y: 0.40}, {X: 0.5, Y: 0.10},
					}},
				},
			},
			{
				Name: "credit_utilization", Field: "credit_utilization_ratio", Weight: 1.5, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.90}, {X: 0.3, Y: 1.00}, {X: 0.6, Y: 0.60}, {X: 0.9, Y: 0.30}, {X: 1, Y: 0.15},
				}},
			},
			{
				Name: "active_loans", Field: "active_loan_count", Weight: 1.0, Optional: true, Default: 1, Min: 0, Max: 50,
				Fn: domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 1.5, Width: 2.5},
			},
			{
				Name: "repayment_track", Field: "repayment_track_months", Weight: 1.5, Min: 0, Max: 600,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.30}, {X: 6, Y: 0.55}, {X: 12, Y: 0.75}, {X: 36, Y: 1.00},
				}},
			},
			{
				Name: "recent_enquiries", Field: "recent_enquiries_6m", Weight: 1.5, Min: 0, Max: 100,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 8, Score: 0.10}, {Threshold: 5, Score: 0.35}, {Threshold: 3, Score: 0.60},
					{Threshold: 1, Score: 0.85}, {Threshold: 0, Score: 1.00},
				}},
			},
		},
	}
}

func categoryCompliance() domain.Category {
	return domain.Category{
		ID:     "E",
		Name:   "Compliance & Taxation",
		Weight: 12,
		Parameters: []domain.Parameter{
			{
				Name: "gst_filing_regularity", Field: "gst_filing_regularity", Weight: 3.0, Optional: true, Default: 0.5, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.05}, {X: 0.5, Y: 0.35}, {X: 0.8, Y: 0.70}, {X: 1, Y: 1.00},
				}},
			},
			{
				Name: "gst_turnover_match", Field: "gst_turnover_match", Weight: 2.5, Optional: true, Default: 1, Min: 0, Max: 3,
				Fn: domain.ScoringFunction{Kind: domain.FnGaussian, Optimal: 1.0, Width: 0.35},
			},
			{
				Name: "itr_filed_years", Field: "itr_filed_years", Weight: 2.0, Min: 0, Max: 10,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 3, Score: 1.00}, {Threshold: 2, Score: 0.80}, {Threshold: 1, Score: 0.55}, {Threshold: 0, Score: 0.15},
				}},
			},
			{
				Name: "tax_dues_pending", Field: "tax_dues_pending", Weight: 1.5,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 0.15}, {Threshold: 0, Score: 1.00},
				}},
			},
			{
				Name: "epf_esi_compliant", Field: "epf_esi_compliant", Weight: 1.0, Optional: true,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.50},
				}},
			},
			{
				Name: "trade_license_valid", Field: "trade_license_valid", Weight: 1.0,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.40},
				}},
			},
			{
				Name: "regulatory_penalties", Field: "regulatory_penalties_count", Weight: 1.0, Min: 0, Max: 50,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 3, Score: 0.05}, {Threshold: 1, Score: 0.35}, {Threshold: 0, Score: 1.00},
				}},
			},
		},
	}
}

func categoryFraud() domain.Category {
	return domain.Category{
		ID:     "F",
		Name:   "Fraud & Verification",
		Weight: 7,
		Parameters: []domain.Parameter{
			{
				Name: "kyc_verified", Field: "kyc_verified", Weight: 1.5,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.10},
				}},
			},
			{
				Name: "bank_statement_verified", Field: "bank_statement_verified", Weight: 1.0,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.30},
				}},
			},
			{
				Name: "address_verified", Field: "address_verified", Weight: 1.0,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.40},
				}},
			},
			{
				Name: "phone_vintage", Field: "phone_vintage_months", Weight: 0.5, Optional: true, Default: 12, Min: 0, Max: 600,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.30}, {X: 6, Y: 0.60}, {X: 24, Y: 1.00},
				}},
			},
			{
				Name: "device_risk_flag", Field: "device_risk_flag", Weight: 1.0,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 0.10}, {Threshold: 0, Score: 1.00},
				}},
			},
			{
				Name: "data_consistency", Field: "data_consistency_score", Weight: 1.0, Optional: true, Default: 0.8, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.05}, {X: 0.5, Y: 0.50}, {X: 0.8, Y: 0.80}, {X: 1, Y: 1.00},
				}},
			},
			{
				Name: "circular_transactions", Field: "circular_transaction_flag", Weight: 1.0,
				CriticalBelow: 0.10, CapAt: 0.30,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 0.05}, {Threshold: 0, Score: 1.00},
				}},
			},
		},
	}
}

func categoryExternal() domain.Category {
	return domain.Category{
		ID:     "G",
		Name:   "External Signals",
		Weight: 4,
		Parameters: []domain.Parameter{
			{
				Name: "marketplace_rating", Field: "marketplace_rating", Weight: 1.0, Optional: true, Default: 3.5, Min: 0, Max: 5,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.20}, {X: 3, Y: 0.45}, {X: 4, Y: 0.75}, {X: 4.8, Y: 1.00},
				}},
			},
			{
				Name: "review_count", Field: "review_count", Weight: 0.5, Optional: true, Default: 10, Min: 0, Max: 1_000_000,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.30}, {X: 20, Y: 0.60}, {X: 100, Y: 0.90}, {X: 500, Y: 1.00},
				}},
			},
			{
				Name: "social_presence", Field: "social_media_presence", Weight: 0.5, Optional: true,
				Fn: domain.ScoringFunction{Kind: domain.FnThresholdLadder, Ladder: []domain.LadderStep{
					{Threshold: 1, Score: 1.00}, {Threshold: 0, Score: 0.50},
				}},
			},
			{
				Name: "customer_sentiment", Field: "customer_sentiment_score", Weight: 1.0, Optional: true, Default: 0, Min: -1, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: -1, Y: 0.10}, {X: 0, Y: 0.50}, {X: 0.5, Y: 0.80}, {X: 1, Y: 1.00},
				}},
			},
			{
				Name: "utility_payment_regularity", Field: "utility_payment_regularity", Weight: 1.0, Optional: true, Default: 0.7, Min: 0, Max: 1,
				Fn: domain.ScoringFunction{Kind: domain.FnPiecewiseLinear, Points: []domain.CurvePoint{
					{X: 0, Y: 0.10}, {X: 0.5, Y: 0.45}, {X: 0.8, Y: 0.75}, {X: 1, Y: 1.00},
				}},
			},
		},
	}
}
