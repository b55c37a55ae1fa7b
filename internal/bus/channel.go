// Package bus provides event bus implementations for Heron.
package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/opensource-finance/heron/internal/domain"
)

// ChannelBus is the in-process Community tier bus. Messages fan out per
// tenant and topic over buffered channels; a subscriber that falls
// behind drops messages rather than blocking the scoring path.
type ChannelBus struct {
	mu         sync.RWMutex
	bufferSize int
	topics     map[string]map[string]*channelSubscription
	closed     bool
}

type channelSubscription struct {
	bus    *ChannelBus
	id     string
	key    string
	topic  string
	msgCh  chan *domain.Message
	cancel context.CancelFunc
}

// NewChannelBus creates a new channel-based event bus.
func NewChannelBus(bufferSize int) *ChannelBus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &ChannelBus{
		bufferSize: bufferSize,
		topics:     make(map[string]map[string]*channelSubscription),
	}
}

// Publish delivers a payload to every subscriber of the tenant's topic.
func (b *ChannelBus) Publish(ctx context.Context, tenantID string, topic string, payload []byte) error {
	if tenantID == "" {
		return fmt.Errorf("tenantID is required")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("bus is closed")
	}
	subs := make([]*channelSubscription, 0, len(b.topics[subKey(tenantID, topic)]))
	for _, sub := range b.topics[subKey(tenantID, topic)] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	msg := newMessage(tenantID, topic, payload)
	for _, sub := range subs {
		select {
		case sub.msgCh <- msg:
		default:
			// Subscriber buffer full, drop instead of blocking.
		}
	}
	return nil
}

// PublishApplication announces a received application.
func (b *ChannelBus) PublishApplication(ctx context.Context, tenantID string, app *domain.Application) error {
	return publishApplication(ctx, b, tenantID, app)
}

// PublishDecision announces a completed decision, additionally on the
// declined topic when the applicant is ineligible.
func (b *ChannelBus) PublishDecision(ctx context.Context, tenantID string, decision *domain.Decision) error {
	return publishDecision(ctx, b, tenantID, decision)
}

// Subscribe registers a handler for a tenant's topic. Delivery runs on
// a dedicated goroutine until the subscription is cancelled.
func (b *ChannelBus) Subscribe(ctx context.Context, tenantID string, topic string, handler domain.MessageHandler) (domain.Subscription, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenantID is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("bus is closed")
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &channelSubscription{
		bus:    b,
		id:     uuid.New().String(),
		key:    subKey(tenantID, topic),
		topic:  topic,
		msgCh:  make(chan *domain.Message, b.bufferSize),
		cancel: cancel,
	}

	if b.topics[sub.key] == nil {
		b.topics[sub.key] = make(map[string]*channelSubscription)
	}
	b.topics[sub.key][sub.id] = sub

	go sub.deliver(subCtx, handler)
	return sub, nil
}

func (s *channelSubscription) deliver(ctx context.Context, handler domain.MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.msgCh:
			if !ok {
				return
			}
			// Handler errors are the subscriber's concern.
			_ = handler(ctx, msg)
		}
	}
}

// Ping reports whether the bus accepts traffic.
func (b *ChannelBus) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("bus is closed")
	}
	return nil
}

// Close stops all subscriptions and rejects further traffic.
func (b *ChannelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.topics {
		for _, sub := range subs {
			sub.cancel()
			close(sub.msgCh)
		}
	}
	b.topics = make(map[string]map[string]*channelSubscription)
	return nil
}

func subKey(tenantID, topic string) string {
	return tenantID + ":" + topic
}

// Unsubscribe stops delivery and removes the registration.
func (s *channelSubscription) Unsubscribe() error {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if subs := s.bus.topics[s.key]; subs != nil {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.bus.topics, s.key)
		}
	}
	return nil
}

// Topic returns the subscribed topic.
func (s *channelSubscription) Topic() string {
	return s.topic
}
