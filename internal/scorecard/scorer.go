package scorecard

import (
	"fmt"
	"sort"

	"github.com/opensource-finance/heron/internal/domain"
)

// CategoryResult holds one category's score with its per-parameter
// contributions retained for explanation.
type CategoryResult struct {
	ID         string
	Name       string
	Weight     float64
	Score      float64
	Capped     bool
	CapReason  string
	Parameters []domain.ParameterExplanation
}

// Result is the output of the rule-based scoring stage.
type Result struct {
	// Subscore is the weighted combination of the seven category scores,
	// in [0,1], where higher means lower risk.
	Subscore float64

	Categories    []CategoryResult
	Contributions map[string]domain.CategoryContribution
	Explanations  []domain.ParameterExplanation
	ImputedFields []string
}

// Engine scores applications against an immutable scorecard. It holds no
// request-scoped state and is safe for concurrent use.
type Engine struct {
	sc *domain.Scorecard
}

// NewEngine validates the scorecard and returns a scoring engine.
// Validation failures are configuration errors: the caller must treat
// them as fatal at startup, never as per-request errors.
func NewEngine(sc *domain.Scorecard) (*Engine, error) {
	if err := Validate(sc); err != nil {
		return nil, err
	}
	return &Engine{sc: sc}, nil
}

// Scorecard returns the active configuration tables.
func (e *Engine) Scorecard() *domain.Scorecard {
	return e.sc
}

// Score normalizes the application's features and computes the rule-based
// subscore with full per-category and per-parameter explanations.
func (e *Engine) Score(app *domain.Application) (*Result, error) {
	features, imputedFields, err := Normalize(e.sc, app)
	if err != nil {
		return nil, err
	}

	imputed := make(map[string]bool, len(imputedFields))
	for _, f := range imputedFields {
		imputed[f] = true
	}

	categories := make([]CategoryResult, 0, len(e.sc.Categories))
	for _, cat := range e.sc.Categories {
		categories = append(categories, scoreCategory(cat, features, imputed))
	}

	subscore, contributions := aggregate(categories)

	return &Result{
		Subscore:      subscore,
		Categories:    categories,
		Contributions: contributions,
		Explanations:  topExplanations(categories, 5),
		ImputedFields: imputedFields,
	}, nil
}

// scoreCategory computes the weighted-average score for one category.
//
// Critical parameters cap the category score when breached: a severe
// repayment event (a write-off, heavy cheque bounces) must not be diluted
// by an otherwise clean profile.
func scoreCategory(cat domain.Category, features domain.FeatureSet, imputed map[string]bool) CategoryResult {
	result := CategoryResult{
		ID:         cat.ID,
		Name:       cat.Name,
		Weight:     cat.Weight,
		Parameters: make([]domain.ParameterExplanation, 0, len(cat.Parameters)),
	}

	var weightedSum, totalWeight float64
	scoreCap := 1.0
	capReason := ""

	for _, p := range cat.Parameters {
		score := evaluate(p.Fn, p, features)

		weightedSum += score * p.Weight
		totalWeight += p.Weight

		if p.CapAt > 0 && score < p.CriticalBelow && p.CapAt < scoreCap {
			scoreCap = p.CapAt
			capReason = p.Name
		}

		result.Parameters = append(result.Parameters, domain.ParameterExplanation{
			Parameter:    p.Name,
			Category:     cat.ID,
			Score:        score,
			Weight:       p.Weight,
			Contribution: score * p.Weight,
			Imputed:      imputedField(p, imputed),
		})
	}

	if totalWeight > 0 {
		result.Score = weightedSum / totalWeight
	}
	if result.Score > scoreCap {
		result.Score = scoreCap
		result.Capped = true
		result.CapReason = fmt.Sprintf("critical parameter %s breached", capReason)
	}
	result.Score = Clip(result.Score, 0, 1)

	return result
}

// aggregate combines category scores into the overall subscore:
// sum(categoryScore * categoryWeight) / 100.
func aggregate(categories []CategoryResult) (float64, map[string]domain.CategoryContribution) {
	var weightedSum, totalWeight float64
	contributions := make(map[string]domain.CategoryContribution, len(categories))

	for _, c := range categories {
		contribution := c.Score * c.Weight
		weightedSum += contribution
		totalWeight += c.Weight

		contributions[c.ID] = domain.CategoryContribution{
			Name:         c.Name,
			Score:        c.Score,
			Weight:       c.Weight,
			Contribution: contribution,
			Capped:       c.Capped,
			CapReason:    c.CapReason,
		}
	}

	if totalWeight == 0 {
		return 0, contributions
	}
	return Clip(weightedSum/totalWeight, 0, 1), contributions
}

// topExplanations returns the n strongest positive and n strongest
// negative parameter contributions, measured as weighted deviation from a
// neutral 0.5 score.
func topExplanations(categories []CategoryResult, n int) []domain.ParameterExplanation {
	all := make([]domain.ParameterExplanation, 0, 64)
	for _, c := range categories {
		all = append(all, c.Parameters...)
	}

	impact := func(p domain.ParameterExplanation) float64 {
		return (p.Score - 0.5) * p.Weight
	}

	sort.SliceStable(all, func(i, j int) bool {
		return impact(all[i]) > impact(all[j])
	})

	out := make([]domain.ParameterExplanation, 0, 2*n)
	for i := 0; i < n && i < len(all); i++ {
		out = append(out, all[i])
	}
	for i := len(all) - n; i < len(all); i++ {
		if i < n || i < 0 {
			continue // already included or out of range
		}
		out = append(out, all[i])
	}
	return out
}

func imputedField(p domain.Parameter, imputed map[string]bool) bool {
	if imputed[p.Field] {
		return true
	}
	for _, f := range p.Fn.Fields {
		if imputed[f] {
			return true
		}
	}
	return false
}
