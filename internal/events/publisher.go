// Package events publishes resolved lookups to Kafka for downstream
// consumers (data-quality dashboards, publisher feedback loops).
//
// Publishing is fire-and-forget: a lookup response never waits on, and never
// fails because of, the event pipeline.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"collreg/internal/lookup"
	"collreg/internal/platform/middleware"
)

// Event is the payload emitted after each resolved lookup.
type Event struct {
	RequestID            string     `json:"requestId,omitempty"`
	DatasetKey           *uuid.UUID `json:"datasetKey,omitempty"`
	InstitutionMatchType string     `json:"institutionMatchType"`
	InstitutionKey       *uuid.UUID `json:"institutionKey,omitempty"`
	CollectionMatchType  string     `json:"collectionMatchType"`
	CollectionKey        *uuid.UUID `json:"collectionKey,omitempty"`
	OccurredAt           time.Time  `json:"occurredAt"`
}

// Publisher emits lookup events to a Kafka topic. The zero of *Publisher is
// usable: a nil Publisher drops all events, so callers need no wiring guard.
type Publisher struct {
	client  *kgo.Client
	topic   string
	logger  *slog.Logger
	now     func() time.Time
	produce func(ctx context.Context, record *kgo.Record)
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for delivery error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New connects to the brokers and ensures the topic exists. A broker set that
// is reachable but already has the topic is the normal case; topic creation
// failures other than "already exists" are returned so misconfiguration
// surfaces at startup rather than as silent event loss.
func New(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	p := &Publisher{
		client: client,
		topic:  topic,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.produce = func(ctx context.Context, record *kgo.Record) {
		client.Produce(ctx, record, func(r *kgo.Record, err error) {
			if err != nil {
				p.logger.ErrorContext(ctx, "lookup event delivery failed",
					"topic", r.Topic,
					"error", err,
				)
			}
		})
	}

	if err := p.ensureTopic(topic); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureTopic(topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin := kadm.NewClient(p.client)
	responses, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return err
	}
	for _, response := range responses.Sorted() {
		if response.Err != nil {
			// Already-existing topics come back as a per-topic error.
			p.logger.Debug("topic creation skipped",
				"topic", response.Topic,
				"reason", response.Err,
			)
		}
	}
	return nil
}

// LookupResolved implements lookup.Notifier. Delivery is asynchronous; errors
// are logged by the produce callback.
func (p *Publisher) LookupResolved(ctx context.Context, params lookup.LookupParams, result lookup.LookupResult) {
	if p == nil {
		return
	}

	event := Event{
		RequestID:            middleware.GetRequestID(ctx),
		DatasetKey:           params.DatasetKey,
		InstitutionMatchType: string(result.InstitutionMatch.MatchType),
		CollectionMatchType:  string(result.CollectionMatch.MatchType),
		OccurredAt:           p.now(),
	}
	if key := result.InstitutionMatch.EntityKey(); key != uuid.Nil {
		event.InstitutionKey = &key
	}
	if key := result.CollectionMatch.EntityKey(); key != uuid.Nil {
		event.CollectionKey = &key
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "lookup event encoding failed", "error", err)
		return
	}

	record := &kgo.Record{Topic: p.topic, Value: payload}
	if params.DatasetKey != nil {
		record.Key = []byte(params.DatasetKey.String())
	}
	p.produce(ctx, record)
}

// Close flushes buffered records and releases the client.
func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
