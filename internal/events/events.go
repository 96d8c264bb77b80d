// AngelaMos | 2026
// events.go

package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	OrderCreated     = "OrderCreated"
	OrderCanceled    = "OrderCanceled"
	OrderCompleted   = "OrderCompleted"
	OrderItemAdded   = "OrderItemAdded"
	OrderItemRemoved = "OrderItemRemoved"
)

var topics = map[string]string{
	OrderCreated:     "order.created",
	OrderCanceled:    "order.canceled",
	OrderCompleted:   "order.completed",
	OrderItemAdded:   "order.item.added",
	OrderItemRemoved: "order.item.removed",
}

// Topic returns the Kafka topic for an event type.
func Topic(eventType string) string {
	if t, ok := topics[eventType]; ok {
		return t
	}
	return "order.unknown"
}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPayload struct {
	OrderID   int64  `json:"order_id"`
	UserID    int64  `json:"user_id"`
	ActorID   int64  `json:"actor_id"`
	Status    string `json:"status"`
	Price     string `json:"price"`
	ItemCount int    `json:"item_count"`
	ItemID    int64  `json:"item_id,omitempty"`
}

type Event struct {
	Type    string
	OrderID int64
	TraceID string
	Payload OrderPayload
}

// Publisher delivers lifecycle events after the owning transaction commits.
// Delivery is best effort and never fails the request.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

func NewEnvelope(producer string, event Event) (Envelope, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     event.Type,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       event.TraceID,
		CorrelationID: PartitionKey(event.OrderID),
		Payload:       payload,
	}, nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}

func (NoopPublisher) Close() error { return nil }
