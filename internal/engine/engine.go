// Package engine orchestrates the decisioning pipeline: feature scoring,
// probability blending, score mapping, tier classification, loan limit
// calculation, pricing and the policy overlay.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/limits"
	"github.com/opensource-finance/heron/internal/rating"
	"github.com/opensource-finance/heron/internal/scorecard"
)

const engineVersion = "heron-1.0"

// PolicyEvaluator runs the configured policy rules against a provisional
// decision. Implementations must never fail the pipeline; rule errors are
// recorded inside the results.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, app *domain.Application, decision *domain.Decision) []domain.PolicyResult
}

// Engine is the full decisioning pipeline. It is safe for concurrent use.
type Engine struct {
	scorer *scorecard.Engine
	policy PolicyEvaluator
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a decisioning engine. policy may be nil when no overlay is
// configured.
func New(scorer *scorecard.Engine, policy PolicyEvaluator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		scorer: scorer,
		policy: policy,
		logger: logger,
		tracer: otel.Tracer("heron-engine"),
	}
}

// Scorecard returns the active configuration tables.
func (e *Engine) Scorecard() *domain.Scorecard {
	return e.scorer.Scorecard()
}

// Evaluate runs the complete pipeline for one application and returns the
// decision. Validation failures return scorecard.ErrValidation wrapped
// with detail; the same inputs always produce the same decision apart
// from IDs and timestamps.
func (e *Engine) Evaluate(ctx context.Context, app *domain.Application) (*domain.Decision, error) {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate")
	defer span.End()

	start := time.Now()

	if app.ExternalProbability < 0 || app.ExternalProbability > 1 {
		return nil, fmt.Errorf("%w: externalProbability %.4f outside [0,1]",
			scorecard.ErrValidation, app.ExternalProbability)
	}
	if app.Alpha != nil && (*app.Alpha < 0 || *app.Alpha > 1) {
		return nil, fmt.Errorf("%w: alpha %.4f outside [0,1]", scorecard.ErrValidation, *app.Alpha)
	}

	scoreStart := time.Now()
	scored, err := e.scorer.Score(app)
	if err != nil {
		return nil, err
	}

	sc := e.scorer.Scorecard()
	alpha := rating.ResolveAlpha(sc, app)
	blended := rating.Blend(app.ExternalProbability, scored.Subscore, alpha)
	finalScore := rating.MapScore(sc.Breakpoints, blended)
	tier := rating.ClassifyTier(sc.Tiers, finalScore)
	scoreMs := time.Since(scoreStart).Milliseconds()

	limitStart := time.Now()
	input := limits.Input{
		App:            app,
		Tier:           tier,
		CategoryScores: categoryScores(scored),
	}
	limitResult := limits.Calculate(sc, input)
	limitResult.InterestRate, limitResult.RateBreakdown = limits.Price(sc, input)
	limitMs := time.Since(limitStart).Milliseconds()

	decision := &domain.Decision{
		ID:            uuid.New().String(),
		TenantID:      app.TenantID,
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		Timestamp:     time.Now().UTC(),
		Score: domain.ScoreResult{
			FinalScore:              finalScore,
			BlendedProbability:      blended,
			Subscore:                scored.Subscore,
			Alpha:                   alpha,
			RiskTier:                tier.Name,
			PerCategoryContribution: scored.Contributions,
			Explanations:            scored.Explanations,
			ImputedFields:           scored.ImputedFields,
		},
		Limit: limitResult,
	}

	if e.policy != nil {
		decision.PolicyResults = e.policy.Evaluate(ctx, app, decision)
		applyPolicy(decision)
	}

	decision.Metadata = domain.DecisionMetadata{
		TraceID:          span.SpanContext().TraceID().String(),
		ScoreMs:          scoreMs,
		LimitMs:          limitMs,
		TotalMs:          time.Since(start).Milliseconds(),
		ParametersScored: countParameters(scored),
		EngineVersion:    engineVersion,
	}

	e.logger.InfoContext(ctx, "application evaluated",
		"tenant_id", app.TenantID,
		"applicant_id", app.ApplicantID,
		"score", finalScore,
		"tier", tier.Name,
		"eligible", decision.Limit.Eligible,
		"recommended_limit", decision.Limit.RecommendedLimit,
		"total_ms", decision.Metadata.TotalMs,
	)

	return decision, nil
}

// applyPolicy folds triggered policy results into the decision. A decline
// zeroes the limit; a review adds a condition without changing eligibility.
func applyPolicy(d *domain.Decision) {
	for _, r := range d.PolicyResults {
		if !r.Triggered {
			continue
		}
		switch r.Severity {
		case domain.PolicySeverityDecline:
			d.Limit.Eligible = false
			d.Limit.RecommendedLimit = 0
			d.Limit.TenureMonths = 0
			d.Limit.Conditions = appendCondition(d.Limit.Conditions, domain.ConditionPolicyDecline)
		case domain.PolicySeverityReview:
			d.Limit.Conditions = appendCondition(d.Limit.Conditions, domain.ConditionManualReview)
		case domain.PolicySeverityCondition:
			if r.Code != "" {
				d.Limit.Conditions = appendCondition(d.Limit.Conditions, r.Code)
			}
		}
	}
}

func appendCondition(conditions []string, code string) []string {
	for _, c := range conditions {
		if c == code {
			return conditions
		}
	}
	return append(conditions, code)
}

func categoryScores(r *scorecard.Result) map[string]float64 {
	scores := make(map[string]float64, len(r.Categories))
	for _, c := range r.Categories {
		scores[c.ID] = c.Score
	}
	return scores
}

func countParameters(r *scorecard.Result) int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Parameters)
	}
	return n
}
