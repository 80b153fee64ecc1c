package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

type outboxRepository struct {
	dbtx db.DBTX
}

func NewOutbox(pool *pgxpool.Pool) port.OutboxRepository {
	return &outboxRepository{
		dbtx: pool,
	}
}

// ProcessPending locks a batch with SKIP LOCKED so several relays can run
// side by side. When fn fails the whole batch stays pending.
func (r *outboxRepository) ProcessPending(ctx context.Context, limit int, fn func([]domain.OutboxRecord) error) (int, error) {
	processed, err := withTx(ctx, r.dbtx, func(q *db.Queries) (int, error) {
		records, err := q.FetchPendingOutbox(ctx, int32(limit))
		if err != nil {
			return 0, fmt.Errorf("q.FetchPendingOutbox: %w", err)
		}

		if len(records) == 0 {
			return 0, nil
		}

		if err := fn(lo.Map(records, func(rec db.Outbox, _ int) domain.OutboxRecord {
			return mapDBOutboxToDomain(rec)
		})); err != nil {
			return 0, fmt.Errorf("fn: %w", err)
		}

		ids := lo.Map(records, func(rec db.Outbox, _ int) int64 { return rec.ID })
		if err := q.MarkOutboxSent(ctx, ids); err != nil {
			return 0, fmt.Errorf("q.MarkOutboxSent: %w", err)
		}

		return len(records), nil
	})
	if err != nil {
		return 0, fmt.Errorf("withTx: %w", err)
	}

	return processed, nil
}

func mapDBOutboxToDomain(rec db.Outbox) domain.OutboxRecord {
	return domain.OutboxRecord{
		ID:        rec.ID,
		EventID:   rec.EventID,
		Topic:     rec.Topic,
		Key:       rec.Key,
		Payload:   rec.Payload,
		CreatedAt: rec.CreatedAt,
		SentAt:    rec.SentAt,
	}
}
