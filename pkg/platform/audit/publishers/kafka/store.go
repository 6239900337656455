// Package kafka forwards audit events to a Kafka topic, one JSON record per
// event keyed by user ID so a user's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "supaboard/pkg/platform/audit"
	"supaboard/pkg/platform/circuit"
)

var ErrCircuitOpen = errors.New("audit producer circuit open")

// Producer is the subset of *kgo.Client the store needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type Store struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
}

type Option func(*Store)

// WithBreaker replaces the default breaker, which opens after 5 failures and
// retries the broker every 30s.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) {
		s.breaker = b
	}
}

// NewBreaker is the breaker shape Append expects: one good call closes it.
func NewBreaker(threshold int, cooldown time.Duration, opts ...circuit.Option) *circuit.Breaker {
	opts = append([]circuit.Option{
		circuit.WithFailureThreshold(threshold),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(cooldown),
	}, opts...)
	return circuit.New("audit-kafka", opts...)
}

func New(producer Producer, topic string, opts ...Option) *Store {
	s := &Store{
		producer: producer,
		topic:    topic,
		breaker:  NewBreaker(5, 30*time.Second),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		return ErrCircuitOpen
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
		Timestamp: event.Timestamp,
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		s.breaker.RecordFailure()
		return fmt.Errorf("produce audit event: %w", err)
	}
	s.breaker.RecordSuccess()
	return nil
}
