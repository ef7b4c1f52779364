package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Event names published by the services.
const (
	EventUserCreated    = "user.created"
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderCancelled = "order.cancelled"
)

// Event is a domain event. It is also the wire format on the message broker.
type Event struct {
	Name       string                 `json:"name"`
	ActorID    string                 `json:"actor_id"`
	ObjectType string                 `json:"object_type"`
	ObjectID   string                 `json:"object_id"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventPublisher hands domain events to whatever records them.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// MessagePublisher is the broker side of MQEventPublisher; *rabbitmq.Client
// satisfies it.
type MessagePublisher interface {
	Publish(routingKey string, body []byte) error
}

// MQEventPublisher publishes events as JSON, using the event name as routing key.
type MQEventPublisher struct {
	mq MessagePublisher
}

func NewMQEventPublisher(mq MessagePublisher) *MQEventPublisher {
	return &MQEventPublisher{mq: mq}
}

func (p *MQEventPublisher) Publish(_ context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Name, err)
	}
	return p.mq.Publish(event.Name, body)
}

// publish sends an event and only logs failures: the business operation has
// already been committed at this point.
func publish(ctx context.Context, events EventPublisher, log *logrus.Logger, event Event) {
	if events == nil {
		log.WithField("event", event.Name).Debug("no event publisher configured, skipping event")
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := events.Publish(ctx, event); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event":     event.Name,
			"object_id": event.ObjectID,
		}).Warn("failed to publish event")
	}
}
