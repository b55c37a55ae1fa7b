package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/opensource-finance/heron/internal/bus"
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/engine"
	"github.com/opensource-finance/heron/internal/scorecard"
)

// fakeRepo captures saved decisions.
type fakeRepo struct {
	domain.Repository

	mu        sync.Mutex
	decisions []*domain.Decision
}

func (f *fakeRepo) SaveDecision(ctx context.Context, tenantID string, decision *domain.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, decision)
	return nil
}

func (f *fakeRepo) saved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.decisions)
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	scorer, err := scorecard.NewEngine(scorecard.DefaultScorecard())
	if err != nil {
		t.Fatalf("failed to create scoring engine: %v", err)
	}
	return engine.New(scorer, nil, nil)
}

func testApplication(tenantID string) *domain.Application {
	return &domain.Application{
		ID:              "app-001",
		TenantID:        tenantID,
		ApplicantID:     "merchant-001",
		BusinessSegment: "kirana_store",
		MSMECategory:    domain.MSMECategoryMicro,
		Features: domain.FeatureSet{
			Numeric: map[string]float64{
				"bureau_score": 720,
				"weekly_gtv":   150_000,
			},
		},
		Financials: domain.BusinessFinancials{
			AnnualTurnover: 3_000_000,
			MonthlySurplus: 60_000,
			CurrentAssets:  900_000,
		},
		ExternalProbability: 0.06,
		CreatedAt:           time.Now().UTC(),
	}
}

func TestWorkerProcessesApplications(t *testing.T) {
	eventBus := bus.NewChannelBus(100)
	defer eventBus.Close()

	repo := &fakeRepo{}
	w := NewWorker(eventBus, repo, newTestEngine(t))

	tenantID := "tenant-001"
	if err := w.Start(Config{TenantIDs: []string{tenantID}}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	ctx := context.Background()

	// Listen for the published decision.
	decisionCh := make(chan *domain.Decision, 1)
	sub, err := eventBus.Subscribe(ctx, tenantID, domain.TopicDecision, func(ctx context.Context, msg *domain.Message) error {
		var d domain.Decision
		if err := json.Unmarshal(msg.Payload, &d); err != nil {
			return err
		}
		select {
		case decisionCh <- &d:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	payload, _ := json.Marshal(testApplication(tenantID))
	if err := eventBus.Publish(ctx, tenantID, domain.TopicApplicationReceived, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case decision := <-decisionCh:
		if decision.ApplicationID != "app-001" {
			t.Errorf("expected application app-001, got %s", decision.ApplicationID)
		}
		if decision.Score.FinalScore < 300 || decision.Score.FinalScore > 900 {
			t.Errorf("score %d outside [300,900]", decision.Score.FinalScore)
		}
		if decision.Score.RiskTier == "" {
			t.Error("expected a risk tier")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for decision")
	}

	// Decision is persisted as well as published.
	deadline := time.After(time.Second)
	for repo.saved() == 0 {
		select {
		case <-deadline:
			t.Fatal("decision never saved")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorkerIgnoresMalformedPayload(t *testing.T) {
	eventBus := bus.NewChannelBus(100)
	defer eventBus.Close()

	repo := &fakeRepo{}
	w := NewWorker(eventBus, repo, newTestEngine(t))

	if err := w.Start(Config{TenantIDs: []string{"tenant-001"}}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	ctx := context.Background()
	if err := eventBus.Publish(ctx, "tenant-001", domain.TopicApplicationReceived, []byte("not json")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if repo.saved() != 0 {
		t.Error("malformed payload must not produce a decision")
	}
}

func TestWorkerStats(t *testing.T) {
	eventBus := bus.NewChannelBus(10)
	defer eventBus.Close()

	w := NewWorker(eventBus, nil, newTestEngine(t))
	if err := w.Start(Config{TenantIDs: []string{"tenant-a", "tenant-b"}}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stats := w.GetStats()
	if stats.SubscriptionCount != 2 {
		t.Errorf("expected 2 subscriptions, got %d", stats.SubscriptionCount)
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if w.GetStats().SubscriptionCount != 0 {
		t.Error("expected no subscriptions after stop")
	}
}
