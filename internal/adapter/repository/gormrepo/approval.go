package gormrepo

import (
	"context"
	"errors"

	approvalDomain "ictloan-backend/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, d *approvalDomain.Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *ApprovalRepository) ListByApplication(ctx context.Context, loanApplicationID uint64) ([]approvalDomain.Decision, error) {
	var out []approvalDomain.Decision
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", loanApplicationID).
		Order("decided_at, id").
		Find(&out).Error
	return out, err
}

func (r *ApprovalRepository) GetByDecisionID(ctx context.Context, decisionID string) (*approvalDomain.Decision, error) {
	var out approvalDomain.Decision
	err := r.db.WithContext(ctx).Where("decision_id = ?", decisionID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
