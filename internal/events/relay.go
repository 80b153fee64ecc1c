package events

import (
	"context"
	"errors"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// Relay moves order events from the outbox table to the broker.
// Delivery is at least once: a batch is marked sent only after the
// broker accepted all of it.
type Relay struct {
	outbox    port.OutboxRepository
	publisher Publisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
	batchSize int
}

type RelayOption func(*Relay)

func WithPollInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithRelayMetrics(m *metrics.Metrics) RelayOption {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(outbox port.OutboxRepository, publisher Publisher, logger *zap.Logger, opts ...RelayOption) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		interval:  defaultPollInterval,
		batchSize: defaultBatchSize,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run polls until ctx is cancelled. A full batch is followed by another
// poll right away.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started",
		zap.Duration("interval", r.interval),
		zap.Int("batch_size", r.batchSize),
	)
	defer r.logger.Info("outbox relay stopped")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		for {
			n, err := r.RunOnce(ctx)
			if err != nil || n < r.batchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce publishes at most one batch and returns how many records were
// marked sent.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	n, err := r.outbox.ProcessPending(ctx, r.batchSize, func(recs []domain.OutboxRecord) error {
		return r.publisher.Publish(ctx, recs...)
	})

	r.metrics.OutboxResult(metrics.PublishOK, n)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return n, err
		}
		r.metrics.OutboxResult(metrics.PublishFailed, 1)
		r.logger.Error("outbox relay failed", zap.Int("published", n), zap.Error(err))
		return n, err
	}

	if n > 0 {
		r.logger.Debug("outbox batch published", zap.Int("published", n))
	}

	return n, nil
}
