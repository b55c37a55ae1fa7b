// Package rating converts the rule-based subscore and the external model
// probability into a final 300-900 credit score and a risk tier.
package rating

import (
	"math"

	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/scorecard"
)

// ResolveAlpha returns the blending weight for an application: the
// caller's override when present, the scorecard default otherwise. Values
// outside [0,1] clamp.
func ResolveAlpha(sc *domain.Scorecard, app *domain.Application) float64 {
	alpha := sc.DefaultAlpha
	if app.Alpha != nil {
		alpha = *app.Alpha
	}
	return scorecard.Clip(alpha, 0, 1)
}

// Blend combines the external default probability with the rule-based
// subscore:
//
//	blended = alpha*external + (1-alpha)*(1-subscore)
//
// The subscore is inverted first because a high subscore means low risk.
// The result is always in [0,1].
func Blend(external, subscore, alpha float64) float64 {
	if math.IsNaN(external) || math.IsInf(external, 0) {
		external = 1 // treat a broken model input as worst case
	}
	external = scorecard.Clip(external, 0, 1)
	subscore = scorecard.Clip(subscore, 0, 1)
	alpha = scorecard.Clip(alpha, 0, 1)

	return scorecard.Clip(alpha*external+(1-alpha)*(1-subscore), 0, 1)
}

// MapScore converts a blended probability to a 300-900 score using linear
// interpolation between the breakpoint anchors. Probabilities below the
// first anchor or above the last clamp to the boundary scores; anchor
// probabilities map to their anchor scores exactly.
func MapScore(bps []domain.ScoreBreakpoint, probability float64) int {
	if len(bps) == 0 {
		return 300
	}
	if math.IsNaN(probability) {
		return bps[len(bps)-1].Score
	}
	if probability <= bps[0].Probability {
		return bps[0].Score
	}
	last := bps[len(bps)-1]
	if probability >= last.Probability {
		return last.Score
	}

	for i := 0; i < len(bps)-1; i++ {
		a, b := bps[i], bps[i+1]
		if probability >= a.Probability && probability <= b.Probability {
			t := (probability - a.Probability) / (b.Probability - a.Probability)
			return int(math.Round(float64(a.Score) + t*float64(b.Score-a.Score)))
		}
	}
	return last.Score
}

// ClassifyTier finds the tier whose [MinScore, MaxScore] range contains
// the score. Scores outside [300,900] clamp into the boundary tiers; a
// validated tier table tiles the range, so a tier always exists.
func ClassifyTier(tiers []domain.RiskTier, score int) domain.RiskTier {
	if len(tiers) == 0 {
		return domain.RiskTier{}
	}
	for _, t := range tiers {
		if score >= t.MinScore && score <= t.MaxScore {
			return t
		}
	}
	if score > tiers[0].MaxScore {
		return tiers[0]
	}
	return tiers[len(tiers)-1]
}
