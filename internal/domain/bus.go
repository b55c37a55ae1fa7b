package domain

import (
	"context"
)

// EventBus moves pipeline events between the API, the async worker and
// external consumers. Implemented over Go channels (Community) or NATS
// (Pro). All methods require tenantID for strict multi-tenancy isolation.
type EventBus interface {
	// Publish sends a raw payload to a topic.
	Publish(ctx context.Context, tenantID string, topic string, payload []byte) error

	// PublishApplication announces a received application on
	// TopicApplicationReceived.
	PublishApplication(ctx context.Context, tenantID string, app *Application) error

	// PublishDecision announces a completed decision on TopicDecision.
	// Ineligible decisions are additionally announced on TopicDeclined so
	// decline consumers need not filter the full decision stream.
	PublishDecision(ctx context.Context, tenantID string, decision *Decision) error

	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, tenantID string, topic string, handler MessageHandler) (Subscription, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenantId"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string

	// Channel settings (Community tier)
	ChannelBufferSize int

	// NATS settings (Pro tier)
	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds
}

// Standard topic names for the decisioning pipeline.
const (
	TopicApplicationReceived = "heron.application.received"
	TopicDecision            = "heron.decision"
	TopicDeclined            = "heron.declined"
)
