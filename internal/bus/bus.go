package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opensource-finance/heron/internal/domain"
)

// New creates a new event bus based on configuration.
// For Community tier: returns ChannelBus.
// For Pro tier: returns NATSBus.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}

// newMessage wraps a payload in the bus envelope.
func newMessage(tenantID, topic string, payload []byte) *domain.Message {
	return &domain.Message{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Topic:     topic,
		Payload:   payload,
		Metadata:  make(map[string]string),
		Timestamp: time.Now().UnixNano(),
	}
}

// publishApplication marshals an application and announces it on the
// received topic. Shared by both bus implementations.
func publishApplication(ctx context.Context, b domain.EventBus, tenantID string, app *domain.Application) error {
	payload, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to marshal application %s: %w", app.ID, err)
	}
	return b.Publish(ctx, tenantID, domain.TopicApplicationReceived, payload)
}

// publishDecision marshals a decision and fans it out: every decision
// goes to the decision topic, ineligible ones additionally to the
// declined topic. Shared by both bus implementations.
func publishDecision(ctx context.Context, b domain.EventBus, tenantID string, decision *domain.Decision) error {
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to marshal decision %s: %w", decision.ID, err)
	}

	topics := []string{domain.TopicDecision}
	if !decision.Limit.Eligible {
		topics = append(topics, domain.TopicDeclined)
	}

	for _, topic := range topics {
		if err := b.Publish(ctx, tenantID, topic, payload); err != nil {
			return err
		}
	}
	return nil
}
