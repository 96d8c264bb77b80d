// AngelaMos | 2026
// kafka.go

package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/carterperez-dev/food-orders/internal/config"
)

type KafkaPublisher struct {
	w        *kafka.Writer
	brokers  []string
	producer string
	logger   *slog.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		brokers:  cfg.BrokerList(),
		producer: cfg.ClientID,
		logger:   logger,
	}

	p.w = &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             p.onCompletion,
	}

	return p
}

// PartitionKey keeps every event of one order on the same partition.
func PartitionKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	env, err := NewEnvelope(p.producer, event)
	if err != nil {
		p.logger.Error("encode event", "type", event.Type, "error", err)
		return
	}

	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("encode envelope", "type", event.Type, "error", err)
		return
	}

	msg := kafka.Message{
		Topic: Topic(event.Type),
		Key:   []byte(PartitionKey(event.OrderID)),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	// Async writers return immediately; delivery errors arrive in Completion.
	if err := p.w.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Error("publish event", "type", event.Type, "error", err)
	}
}

func (p *KafkaPublisher) onCompletion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		p.logger.Warn("event delivery failed",
			"topic", m.Topic,
			"key", string(m.Key),
			"error", err,
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Ping dials the first reachable broker.
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	lastErr := errors.New("no kafka brokers configured")
	for _, b := range p.brokers {
		conn, err := kafka.DialContext(dialCtx, "tcp", b)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return lastErr
}
