package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	eventsv1 "docketdesk/contracts/gen/events/v1"

	"github.com/nats-io/nats.go"
)

const subjectPrefix = "docketdesk."

// NATS publishes envelopes as JSON on core NATS subjects. Consumer groups map
// to queue groups.
type NATS struct {
	conn   *nats.Conn
	mu     sync.Mutex
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewNATS(url string, name string, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected",
					"event", "bus_nats_disconnected",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATS{conn: conn, logger: logger}, nil
}

func (n *NATS) Publish(ctx context.Context, topic string, event eventsv1.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := nats.NewMsg(subject(topic))
	msg.Header.Set(nats.MsgIdHdr, event.EventID)
	msg.Header.Set("Event-Type", event.EventType)
	msg.Data = payload
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (n *NATS) Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error {
	sub, err := n.conn.QueueSubscribe(subject(topic), consumerGroup, func(msg *nats.Msg) {
		var event eventsv1.Envelope
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			n.logger.Error("undecodable event dropped",
				"event", "bus_decode_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"error", err.Error(),
			)
			return
		}
		if err := handler(ctx, event); err != nil {
			n.logger.Error("consumer handler failed",
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
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	if err := n.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("flush subscription %s: %w", topic, err)
	}

	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

// Close drains subscriptions so in-flight handlers finish.
func (n *NATS) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

func subject(topic string) string {
	return subjectPrefix + strings.TrimSpace(topic)
}

var _ Bus = (*NATS)(nil)
