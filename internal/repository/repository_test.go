package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/opensource-finance/heron/internal/domain"
)

func TestSQLiteRepository(t *testing.T) {
	// Create temp database file
	tmpFile, err := os.CreateTemp("", "heron-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	cfg := domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	}

	repo, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetApplication", func(t *testing.T) {
		alpha := 0.6
		app := &domain.Application{
			ID:              "app-001",
			ApplicantID:     "merchant-001",
			BusinessSegment: "kirana_store",
			MSMECategory:    domain.MSMECategoryMicro,
			Features: domain.FeatureSet{
				Numeric:     map[string]float64{"bureau_score": 720, "weekly_gtv": 85000},
				Categorical: map[string]string{"entity_type": "proprietorship"},
			},
			Financials: domain.BusinessFinancials{
				AnnualTurnover: 3_600_000,
				MonthlySurplus: 45_000,
				ExistingDebt:   150_000,
			},
			ExternalProbability: 0.07,
			Alpha:               &alpha,
			CreatedAt:           time.Now().UTC(),
			Metadata:            map[string]any{"source": "api"},
		}

		if err := repo.SaveApplication(ctx, tenantID, app); err != nil {
			t.Fatalf("SaveApplication failed: %v", err)
		}

		retrieved, err := repo.GetApplication(ctx, tenantID, app.ID)
		if err != nil {
			t.Fatalf("GetApplication failed: %v", err)
		}

		if retrieved.ID != app.ID {
			t.Errorf("expected ID %s, got %s", app.ID, retrieved.ID)
		}
		if retrieved.TenantID != tenantID {
			t.Errorf("expected TenantID %s, got %s", tenantID, retrieved.TenantID)
		}
		if retrieved.BusinessSegment != "kirana_store" {
			t.Errorf("expected segment kirana_store, got %s", retrieved.BusinessSegment)
		}
		if retrieved.ExternalProbability != 0.07 {
			t.Errorf("expected externalProbability 0.07, got %v", retrieved.ExternalProbability)
		}
		if retrieved.Alpha == nil || *retrieved.Alpha != 0.6 {
			t.Errorf("expected alpha 0.6, got %v", retrieved.Alpha)
		}
		if retrieved.Features.Numeric["bureau_score"] != 720 {
			t.Errorf("features not round-tripped: %v", retrieved.Features.Numeric)
		}
		if retrieved.Financials.AnnualTurnover != 3_600_000 {
			t.Errorf("financials not round-tripped: %v", retrieved.Financials)
		}
	})

	t.Run("NullAlpha", func(t *testing.T) {
		app := &domain.Application{
			ID:              "app-002",
			ApplicantID:     "merchant-001",
			BusinessSegment: "transport",
			MSMECategory:    domain.MSMECategorySmall,
			CreatedAt:       time.Now().UTC(),
		}
		if err := repo.SaveApplication(ctx, tenantID, app); err != nil {
			t.Fatalf("SaveApplication failed: %v", err)
		}

		retrieved, err := repo.GetApplication(ctx, tenantID, app.ID)
		if err != nil {
			t.Fatalf("GetApplication failed: %v", err)
		}
		if retrieved.Alpha != nil {
			t.Errorf("expected nil alpha, got %v", *retrieved.Alpha)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		_, err := repo.GetApplication(ctx, "tenant-002", "app-001")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound for different tenant, got: %v", err)
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		err := repo.SaveApplication(ctx, "", &domain.Application{ID: "app-x"})
		if err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("CountApplicationsByApplicant", func(t *testing.T) {
		base := time.Now().UTC()
		for i, offset := range []time.Duration{-40 * 24 * time.Hour, -5 * 24 * time.Hour, -time.Hour} {
			app := &domain.Application{
				ID:              "app-count-" + string(rune('a'+i)),
				ApplicantID:     "merchant-velocity",
				BusinessSegment: "services",
				MSMECategory:    domain.MSMECategoryMicro,
				CreatedAt:       base.Add(offset),
			}
			if err := repo.SaveApplication(ctx, tenantID, app); err != nil {
				t.Fatalf("SaveApplication failed: %v", err)
			}
		}

		count, err := repo.CountApplicationsByApplicant(ctx, tenantID, "merchant-velocity", base.Add(-30*24*time.Hour))
		if err != nil {
			t.Fatalf("CountApplicationsByApplicant failed: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 applications inside window, got %d", count)
		}

		count, err = repo.CountApplicationsByApplicant(ctx, "tenant-002", "merchant-velocity", base.Add(-30*24*time.Hour))
		if err != nil {
			t.Fatalf("CountApplicationsByApplicant failed: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 for other tenant, got %d", count)
		}
	})

	t.Run("SaveAndGetDecision", func(t *testing.T) {
		decision := &domain.Decision{
			ID:            "dec-001",
			ApplicationID: "app-001",
			ApplicantID:   "merchant-001",
			Timestamp:     time.Now().UTC(),
			Score: domain.ScoreResult{
				FinalScore:         612,
				BlendedProbability: 0.078,
				Subscore:           0.74,
				Alpha:              0.7,
				RiskTier:           "Standard",
			},
			Limit: domain.LoanLimitResult{
				BaseLimit:        500_000,
				RecommendedLimit: 480_000,
				InterestRate:     15.75,
				DSCR:             2.4,
				TenureMonths:     24,
				Eligible:         true,
			},
			PolicyResults: []domain.PolicyResult{
				{RuleID: "velocity", Triggered: false, Severity: domain.PolicySeverityReview},
			},
			Metadata: domain.DecisionMetadata{
				EngineVersion:    "heron-1.0",
				ParametersScored: 57,
			},
		}

		if err := repo.SaveDecision(ctx, tenantID, decision); err != nil {
			t.Fatalf("SaveDecision failed: %v", err)
		}

		retrieved, err := repo.GetDecision(ctx, tenantID, "dec-001")
		if err != nil {
			t.Fatalf("GetDecision failed: %v", err)
		}

		if retrieved.Score.FinalScore != 612 {
			t.Errorf("expected final score 612, got %d", retrieved.Score.FinalScore)
		}
		if retrieved.Score.RiskTier != "Standard" {
			t.Errorf("expected tier Standard, got %s", retrieved.Score.RiskTier)
		}
		if retrieved.Limit.RecommendedLimit != 480_000 {
			t.Errorf("expected limit 480000, got %v", retrieved.Limit.RecommendedLimit)
		}
		if !retrieved.Limit.Eligible {
			t.Error("expected eligible decision")
		}
		if len(retrieved.PolicyResults) != 1 {
			t.Errorf("expected 1 policy result, got %d", len(retrieved.PolicyResults))
		}
		if retrieved.Metadata.EngineVersion != "heron-1.0" {
			t.Errorf("metadata not round-tripped: %+v", retrieved.Metadata)
		}
	})

	t.Run("GetDecisionNotFound", func(t *testing.T) {
		_, err := repo.GetDecision(ctx, tenantID, "dec-missing")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("PolicyRuleCRUD", func(t *testing.T) {
		rule := &domain.PolicyRule{
			ID:         "max-velocity",
			Name:       "Max application velocity",
			Version:    "1.0.0",
			Expression: "recent_applications >= 3",
			Severity:   domain.PolicySeverityReview,
			Enabled:    true,
		}

		if err := repo.SavePolicyRule(ctx, tenantID, rule); err != nil {
			t.Fatalf("SavePolicyRule failed: %v", err)
		}

		retrieved, err := repo.GetPolicyRule(ctx, tenantID, "max-velocity")
		if err != nil {
			t.Fatalf("GetPolicyRule failed: %v", err)
		}
		if retrieved.Expression != rule.Expression {
			t.Errorf("expected expression %q, got %q", rule.Expression, retrieved.Expression)
		}
		if retrieved.Severity != domain.PolicySeverityReview {
			t.Errorf("expected severity review, got %s", retrieved.Severity)
		}

		// Upsert on same (id, version) replaces the expression.
		rule.Expression = "recent_applications >= 5"
		if err := repo.SavePolicyRule(ctx, tenantID, rule); err != nil {
			t.Fatalf("SavePolicyRule upsert failed: %v", err)
		}
		retrieved, err = repo.GetPolicyRule(ctx, tenantID, "max-velocity")
		if err != nil {
			t.Fatalf("GetPolicyRule failed: %v", err)
		}
		if retrieved.Expression != "recent_applications >= 5" {
			t.Errorf("upsert did not replace expression: %q", retrieved.Expression)
		}

		rules, err := repo.ListPolicyRules(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListPolicyRules failed: %v", err)
		}
		if len(rules) != 1 {
			t.Errorf("expected 1 rule, got %d", len(rules))
		}

		// Soft delete hides the rule from reads.
		if err := repo.DeletePolicyRule(ctx, tenantID, "max-velocity"); err != nil {
			t.Fatalf("DeletePolicyRule failed: %v", err)
		}
		if _, err := repo.GetPolicyRule(ctx, tenantID, "max-velocity"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound after delete, got: %v", err)
		}

		if err := repo.DeletePolicyRule(ctx, tenantID, "no-such-rule"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound deleting unknown rule, got: %v", err)
		}
	})
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := New(domain.RepositoryConfig{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
