package gormrepo

import (
	"context"
	"time"

	outboxDomain "ictloan-backend/internal/domain/outbox"

	"gorm.io/gorm"
)

type OutboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) *OutboxRepository { return &OutboxRepository{db: db} }

func (r *OutboxRepository) Enqueue(ctx context.Context, e *outboxDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// due matches rows a dispatcher may take now: pending past their backoff,
// or sending with an expired lease.
const due = "((status = ? AND available_at <= ?) OR (status = ? AND locked_until <= ?))"

func (r *OutboxRepository) ListPending(ctx context.Context, now time.Time, limit int) ([]outboxDomain.Event, error) {
	var out []outboxDomain.Event
	err := r.db.WithContext(ctx).
		Model(&outboxDomain.Event{}).
		Where(due, outboxDomain.StatusPending, now, outboxDomain.StatusSending, now).
		Where(`NOT EXISTS (SELECT 1 FROM notification_outbox p
			WHERE p.aggregate_type = notification_outbox.aggregate_type
			AND p.aggregate_id = notification_outbox.aggregate_id
			AND p.status IN ? AND p.id < notification_outbox.id)`, outboxDomain.Undelivered).
		Order("id").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *OutboxRepository) Claim(ctx context.Context, id uint64, now, until time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&outboxDomain.Event{}).
		Where("id = ?", id).
		Where(due, outboxDomain.StatusPending, now, outboxDomain.StatusSending, now).
		Updates(map[string]any{
			"status":       outboxDomain.StatusSending,
			"locked_until": until,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&outboxDomain.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       outboxDomain.StatusSent,
			"sent_at":      at,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   "",
			"locked_until": nil,
		}).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64, reason string, retryAt time.Time, dead bool) error {
	status := outboxDomain.StatusPending
	if dead {
		status = outboxDomain.StatusDead
	}
	return r.db.WithContext(ctx).
		Model(&outboxDomain.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   reason,
			"available_at": retryAt,
			"locked_until": nil,
		}).Error
}
