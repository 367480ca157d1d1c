package messaging

import (
	"context"

	eventsv1 "docketdesk/contracts/gen/events/v1"
)

type Handler func(context.Context, eventsv1.Envelope) error

// Bus carries integration events between the API and worker processes.
// Delivery is at most once; consumers must tolerate missing events.
type Bus interface {
	Publish(ctx context.Context, topic string, event eventsv1.Envelope) error
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error
	Close() error
}

// PublishObserver is told about each publish outcome.
type PublishObserver interface {
	EventPublished(topic string, err error)
}

// Observed reports publish outcomes of the wrapped bus.
type Observed struct {
	Bus
	Observer PublishObserver
}

func (o Observed) Publish(ctx context.Context, topic string, event eventsv1.Envelope) error {
	err := o.Bus.Publish(ctx, topic, event)
	if o.Observer != nil {
		o.Observer.EventPublished(topic, err)
	}
	return err
}
