package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"creditnexus/internal/domain/event"
	"creditnexus/pkg/id"
)

const (
	writeTimeout = 5 * time.Second
	batchTimeout = 50 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes ledger events as JSON, keyed so that every event of
// one loan (or participant) lands on the same partition.
//
// The writer built by NewKafkaPublisher is asynchronous: Publish only
// enqueues, and delivery failures are logged from the completion callback.
type KafkaPublisher struct {
	w messageWriter
}

var _ event.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		Completion:             completion(log),
	}}
}

// completion logs events the async writer failed to deliver.
func completion(log *slog.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range msgs {
			log.Warn("ledger event not delivered", "key", string(m.Key), "event_id", headerValue(m, "event-id"), "err", err)
		}
	}
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		m, err := encode(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

func encode(e event.Event) (kafka.Message, error) {
	if e.ID == "" {
		e.ID = id.NewID32()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return kafka.Message{
		Key:   []byte(key(e)),
		Value: body,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(e.ID)},
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}, nil
}

func key(e event.Event) string {
	if e.LoanID != 0 {
		return "loan-" + strconv.FormatUint(e.LoanID, 10)
	}
	return "participant-" + strconv.FormatUint(e.ParticipantID, 10)
}
