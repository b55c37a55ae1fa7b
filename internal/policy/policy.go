// Package policy provides the CEL-based lender policy overlay. Policy
// rules run after scoring and can decline, flag for review or attach
// condition codes independent of the score.
package policy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/opensource-finance/heron/internal/domain"
)

// Default lookback for the recent-application velocity signal.
const activityWindow = 30 * 24 * time.Hour

// ActivityGetter returns the number of applications an applicant filed
// within the window. Used to expose recent_applications to expressions.
type ActivityGetter func(ctx context.Context, tenantID, applicantID string, window time.Duration) (int64, error)

// Engine compiles and evaluates policy rules. Safe for concurrent use;
// reloads swap the rule set atomically.
type Engine struct {
	mu             sync.RWMutex
	env            *cel.Env
	compiled       map[string]*compiledRule
	activityGetter ActivityGetter
}

type compiledRule struct {
	rule    *domain.PolicyRule
	program cel.Program
}

// NewEngine creates a policy engine. activityGetter may be nil; the
// recent_applications variable then evaluates to zero.
func NewEngine(activityGetter ActivityGetter) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("features", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("business_segment", cel.StringType),
		cel.Variable("msme_category", cel.StringType),
		cel.Variable("external_probability", cel.DoubleType),
		cel.Variable("annual_turnover", cel.DoubleType),
		cel.Variable("monthly_surplus", cel.DoubleType),
		cel.Variable("existing_debt", cel.DoubleType),
		cel.Variable("score", cel.IntType),
		cel.Variable("blended_probability", cel.DoubleType),
		cel.Variable("subscore", cel.DoubleType),
		cel.Variable("tier", cel.StringType),
		cel.Variable("recommended_limit", cel.DoubleType),
		cel.Variable("dscr", cel.DoubleType),
		cel.Variable("recent_applications", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:            env,
		compiled:       make(map[string]*compiledRule),
		activityGetter: activityGetter,
	}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(rule *domain.PolicyRule) error {
	if rule == nil {
		return fmt.Errorf("policy rule is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compile(rule)
	return err
}

// LoadRule compiles and loads a single rule into the engine.
func (e *Engine) LoadRule(rule *domain.PolicyRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compile(rule)
	if err != nil {
		return err
	}

	e.compiled[rule.ID] = compiled
	return nil
}

// ReloadRules replaces the loaded rule set atomically. Disabled rules are
// skipped; a compile error leaves the current set untouched.
func (e *Engine) ReloadRules(rules []*domain.PolicyRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[string]*compiledRule)
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		compiled, err := e.compile(rule)
		if err != nil {
			return err
		}
		next[rule.ID] = compiled
	}

	e.compiled = next
	return nil
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// LoadedRules returns the currently loaded rule definitions.
func (e *Engine) LoadedRules() []*domain.PolicyRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.PolicyRule, 0, len(e.compiled))
	for _, c := range e.compiled {
		rules = append(rules, c.rule)
	}
	return rules
}

// Evaluate runs every loaded rule against a provisional decision. Rule
// errors are recorded in the result and never abort the decision.
func (e *Engine) Evaluate(ctx context.Context, app *domain.Application, decision *domain.Decision) []domain.PolicyResult {
	e.mu.RLock()
	rules := make([]*compiledRule, 0, len(e.compiled))
	for _, c := range e.compiled {
		rules = append(rules, c)
	}
	e.mu.RUnlock()

	if len(rules) == 0 {
		return nil
	}

	var recentApplications int64
	if e.activityGetter != nil && app.ApplicantID != "" {
		if count, err := e.activityGetter(ctx, app.TenantID, app.ApplicantID, activityWindow); err == nil {
			recentApplications = count
		}
	}

	activation := e.activation(app, decision, recentApplications)

	results := make([]domain.PolicyResult, 0, len(rules))
	for _, c := range rules {
		results = append(results, evaluateRule(c, activation))
	}
	return results
}

func (e *Engine) activation(app *domain.Application, decision *domain.Decision, recentApplications int64) map[string]any {
	features := make(map[string]any, len(app.Features.Numeric)+len(app.Features.Categorical))
	for k, v := range app.Features.Numeric {
		features[k] = v
	}
	for k, v := range app.Features.Categorical {
		features[k] = v
	}

	return map[string]any{
		"features":             features,
		"business_segment":     app.BusinessSegment,
		"msme_category":        app.MSMECategory,
		"external_probability": app.ExternalProbability,
		"annual_turnover":      app.Financials.AnnualTurnover,
		"monthly_surplus":      app.Financials.MonthlySurplus,
		"existing_debt":        app.Financials.ExistingDebt,
		"score":                int64(decision.Score.FinalScore),
		"blended_probability":  decision.Score.BlendedProbability,
		"subscore":             decision.Score.Subscore,
		"tier":                 decision.Score.RiskTier,
		"recommended_limit":    decision.Limit.RecommendedLimit,
		"dscr":                 decision.Limit.DSCR,
		"recent_applications":  recentApplications,
	}
}

func evaluateRule(c *compiledRule, activation map[string]any) domain.PolicyResult {
	result := domain.PolicyResult{
		RuleID:   c.rule.ID,
		Severity: c.rule.Severity,
		Code:     c.rule.Code,
	}

	out, _, err := c.program.Eval(activation)
	if err != nil {
		result.Err = fmt.Sprintf("evaluation error: %v", err)
		return result
	}

	result.Triggered = toBool(out)
	if result.Triggered {
		result.Reason = c.rule.Description
	}
	return result
}

// toBool converts a CEL value to a trigger decision. Numeric results
// trigger when positive.
func toBool(val ref.Val) bool {
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Double:
		return float64(v) > 0
	case types.Int:
		return int64(v) > 0
	default:
		return false
	}
}

func (e *Engine) compile(rule *domain.PolicyRule) (*compiledRule, error) {
	ast, issues := e.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile policy rule %s: %w", rule.ID, issues.Err())
	}

	outputType := ast.OutputType()
	if outputType != cel.BoolType && outputType != cel.DoubleType && outputType != cel.IntType {
		return nil, fmt.Errorf("policy rule %s: expression must return bool, int, or double, got %s", rule.ID, outputType)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for policy rule %s: %w", rule.ID, err)
	}

	return &compiledRule{rule: rule, program: program}, nil
}

// Close clears the loaded rule set.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = make(map[string]*compiledRule)
	return nil
}
