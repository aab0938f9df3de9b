package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fightcard/platform/internal/guard"
	"github.com/fightcard/platform/internal/repository"
)

// Outbox publish outcomes recorded in metrics.
const (
	OutboxPublished = "published"
	OutboxFailed    = "failed"
	OutboxSkipped   = "skipped"
)

// Publisher sends one message to a broker topic. *KafkaProducer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxRelay polls event_outbox and publishes unpublished rows, one topic per event type.
// A topic whose publishes keep failing is held back by a circuit breaker; its rows stay
// unpublished and are retried once the breaker lets a trial call through.
type OutboxRelay struct {
	db          repository.DBTX
	outbox      repository.OutboxRepository
	producer    Publisher
	breaker     *guard.CircuitBreaker
	metrics     *Metrics
	logger      *slog.Logger
	topicPrefix string
	interval    time.Duration
	batchSize   int
}

// OutboxRelayConfig tunes an OutboxRelay.
type OutboxRelayConfig struct {
	TopicPrefix string
	Interval    time.Duration
	BatchSize   int
}

// NewOutboxRelay creates an outbox relay.
func NewOutboxRelay(
	db repository.DBTX,
	outbox repository.OutboxRepository,
	producer Publisher,
	breaker *guard.CircuitBreaker,
	metrics *Metrics,
	logger *slog.Logger,
	cfg OutboxRelayConfig,
) *OutboxRelay {
	return &OutboxRelay{
		db:          db,
		outbox:      outbox,
		producer:    producer,
		breaker:     breaker,
		metrics:     metrics,
		logger:      logger,
		topicPrefix: cfg.TopicPrefix,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxRelay) Run(ctx context.Context) error {
	p.logger.Info("outbox relay started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// PollOnce publishes one batch and returns how many rows were marked published.
func (p *OutboxRelay) PollOnce(ctx context.Context) (int, error) {
	drafts, err := p.outbox.FetchUnpublished(ctx, p.db, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(drafts) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(drafts))
	for _, d := range drafts {
		topic := d.Topic(p.topicPrefix)
		if res := p.breaker.Check(ctx, topic); !res.Allowed {
			p.metrics.RecordOutboxPublish(OutboxSkipped)
			continue
		}

		msg, err := json.Marshal(d)
		if err != nil {
			p.logger.Error("encode outbox event", "event_id", d.EventID, "error", err)
			continue
		}

		if err := p.producer.Publish(ctx, topic, []byte(d.AggregateID), msg); err != nil {
			p.breaker.RecordFailure(topic)
			p.metrics.RecordOutboxPublish(OutboxFailed)
			p.logger.Error("publish outbox event", "event_id", d.EventID, "topic", topic, "error", err)
			continue
		}

		p.breaker.RecordSuccess(topic)
		p.metrics.RecordOutboxPublish(OutboxPublished)
		ids = append(ids, d.ID)
	}

	if err := p.outbox.MarkPublished(ctx, p.db, ids); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}

	if len(ids) > 0 {
		p.logger.Debug("outbox batch published", "count", len(ids), "fetched", len(drafts))
	}
	return len(ids), nil
}
