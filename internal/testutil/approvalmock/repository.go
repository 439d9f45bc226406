package approvalmock

import (
	"context"

	domain "ictloan-backend/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn            func(ctx context.Context, d *domain.Decision) error
	ListByApplicationFn func(ctx context.Context, loanApplicationID uint64) ([]domain.Decision, error)
	GetByDecisionIDFn   func(ctx context.Context, decisionID string) (*domain.Decision, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Decision) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListByApplication(ctx context.Context, loanApplicationID uint64) ([]domain.Decision, error) {
	if m.ListByApplicationFn != nil {
		return m.ListByApplicationFn(ctx, loanApplicationID)
	}
	return nil, nil
}

func (m *Repo) GetByDecisionID(ctx context.Context, decisionID string) (*domain.Decision, error) {
	if m.GetByDecisionIDFn != nil {
		return m.GetByDecisionIDFn(ctx, decisionID)
	}
	return nil, context.Canceled
}
