package gormrepo

import (
	"context"
	"time"

	integrationDomain "ictloan-backend/internal/domain/integration"

	"gorm.io/gorm"
)

type IntegrationRepository struct{ db *gorm.DB }

func NewIntegrationRepository(db *gorm.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

func (r *IntegrationRepository) Create(ctx context.Context, rec *integrationDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// MarkProcessedByTicket stamps every unprocessed record of the ticket.
func (r *IntegrationRepository) MarkProcessedByTicket(ctx context.Context, ticketID uint64, by string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&integrationDomain.Record{}).
		Where("helpdesk_ticket_id = ? AND processed_at IS NULL", ticketID).
		Updates(map[string]any{"processed_at": at, "processed_by": by}).Error
}

func (r *IntegrationRepository) ListByTicket(ctx context.Context, ticketID uint64) ([]integrationDomain.Record, error) {
	var out []integrationDomain.Record
	err := r.db.WithContext(ctx).
		Where("helpdesk_ticket_id = ?", ticketID).
		Order("id").
		Find(&out).Error
	return out, err
}
