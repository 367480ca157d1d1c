package messaging

import (
	"context"
	"log/slog"
	"sync"

	eventsv1 "docketdesk/contracts/gen/events/v1"
)

type subscription struct {
	group string
	ch    chan eventsv1.Envelope
}

// Memory is the in-process event bus. Subscribers sharing a consumer group
// split a topic's events between them.
type Memory struct {
	mu          sync.RWMutex
	subscribers map[string][]subscription
	cursor      map[string]int
	logger      *slog.Logger
}

func NewMemory(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		subscribers: make(map[string][]subscription),
		cursor:      make(map[string]int),
		logger:      logger,
	}
}

func (m *Memory) Publish(ctx context.Context, topic string, event eventsv1.Envelope) error {
	targets := m.targets(topic)
	for _, sub := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.ch <- event:
		default:
			m.logger.Warn("dropping event for slow subscriber",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		}
	}

	m.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

// targets picks one subscriber per consumer group, round robin.
func (m *Memory) targets(topic string) []subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subscribers[topic]
	byGroup := make(map[string][]subscription)
	order := make([]string, 0)
	for _, sub := range subs {
		if _, seen := byGroup[sub.group]; !seen {
			order = append(order, sub.group)
		}
		byGroup[sub.group] = append(byGroup[sub.group], sub)
	}
	out := make([]subscription, 0, len(order))
	for _, group := range order {
		members := byGroup[group]
		key := topic + "\x00" + group
		out = append(out, members[m.cursor[key]%len(members)])
		m.cursor[key]++
	}
	return out
}

func (m *Memory) Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error {
	sub := subscription{group: consumerGroup, ch: make(chan eventsv1.Envelope, 128)}

	m.mu.Lock()
	m.subscribers[topic] = append(m.subscribers[topic], sub)
	m.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				m.removeSubscriber(topic, sub.ch)
				return
			case event := <-sub.ch:
				if err := handler(ctx, event); err != nil {
					m.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) removeSubscriber(topic string, target chan eventsv1.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]subscription, 0, len(items))
	for _, item := range items {
		if item.ch != target {
			filtered = append(filtered, item)
		}
	}
	m.subscribers[topic] = filtered
}

var _ Bus = (*Memory)(nil)
