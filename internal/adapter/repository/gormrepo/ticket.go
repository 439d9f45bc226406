package gormrepo

import (
	"context"
	"errors"
	"time"

	ticketDomain "ictloan-backend/internal/domain/ticket"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository struct{ db *gorm.DB }

func NewTicketRepository(db *gorm.DB) *TicketRepository { return &TicketRepository{db: db} }

func (r *TicketRepository) Create(ctx context.Context, t *ticketDomain.Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TicketRepository) Save(ctx context.Context, t *ticketDomain.Ticket) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TicketRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*ticketDomain.Ticket, error) {
	var out ticketDomain.Ticket
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ticketDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *TicketRepository) CountPendingByAsset(ctx context.Context, assetID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&ticketDomain.Ticket{}).
		Where("asset_id = ? AND category = ? AND status IN ?",
			assetID, ticketDomain.CategoryMaintenance, ticketDomain.PendingStatuses).
		Count(&n).Error
	return n, err
}

func (r *TicketRepository) CountBlockingByAsset(ctx context.Context, assetID uint64, asOf time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&ticketDomain.Ticket{}).
		Where("asset_id = ? AND category = ? AND status IN ?",
			assetID, ticketDomain.CategoryMaintenance, ticketDomain.PendingStatuses).
		Where("(scheduled_for IS NULL OR scheduled_for <= ?)", asOf).
		Count(&n).Error
	return n, err
}

func (r *TicketRepository) ListByAsset(ctx context.Context, assetID uint64) ([]ticketDomain.Ticket, error) {
	var out []ticketDomain.Ticket
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND category = ?", assetID, ticketDomain.CategoryMaintenance).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
