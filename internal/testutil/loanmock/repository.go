package loanmock

import (
	"context"
	"time"

	domain "ictloan-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset write methods are no-ops; unset reads return context.Canceled.
type Repo struct {
	CreateFn                          func(ctx context.Context, a *domain.Application) error
	SaveFn                            func(ctx context.Context, a *domain.Application) error
	SaveItemFn                        func(ctx context.Context, it *domain.Item) error
	GetByApplicationNumberFn          func(ctx context.Context, number string) (*domain.Application, error)
	GetByApplicationNumberForUpdateFn func(ctx context.Context, number string) (*domain.Application, error)
	GetByTokenForUpdateFn             func(ctx context.Context, token string) (*domain.Application, error)
	ActiveBookingsFn                  func(ctx context.Context, assetIDs []uint64, r domain.DateRange, exclude uint64) ([]domain.Booking, error)
	CountHoldingFn                    func(ctx context.Context, assetID uint64) (int64, error)
	ListByAssetFn                     func(ctx context.Context, assetID uint64) ([]domain.AssetLoan, error)
	ListOverdueFn                     func(ctx context.Context, asOf time.Time) ([]domain.Application, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) SaveItem(ctx context.Context, it *domain.Item) error {
	if m.SaveItemFn != nil {
		return m.SaveItemFn(ctx, it)
	}
	return nil
}

func (m *Repo) GetByApplicationNumber(ctx context.Context, number string) (*domain.Application, error) {
	if m.GetByApplicationNumberFn != nil {
		return m.GetByApplicationNumberFn(ctx, number)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationNumberForUpdate(ctx context.Context, number string) (*domain.Application, error) {
	if m.GetByApplicationNumberForUpdateFn != nil {
		return m.GetByApplicationNumberForUpdateFn(ctx, number)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Application, error) {
	if m.GetByTokenForUpdateFn != nil {
		return m.GetByTokenForUpdateFn(ctx, token)
	}
	return nil, context.Canceled
}

func (m *Repo) ActiveBookings(ctx context.Context, assetIDs []uint64, r domain.DateRange, exclude uint64) ([]domain.Booking, error) {
	if m.ActiveBookingsFn != nil {
		return m.ActiveBookingsFn(ctx, assetIDs, r, exclude)
	}
	return nil, nil
}

func (m *Repo) CountHolding(ctx context.Context, assetID uint64) (int64, error) {
	if m.CountHoldingFn != nil {
		return m.CountHoldingFn(ctx, assetID)
	}
	return 0, nil
}

func (m *Repo) ListByAsset(ctx context.Context, assetID uint64) ([]domain.AssetLoan, error) {
	if m.ListByAssetFn != nil {
		return m.ListByAssetFn(ctx, assetID)
	}
	return nil, nil
}

func (m *Repo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Application, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, asOf)
	}
	return nil, nil
}
