package assetmock

import (
	"context"

	domain "ictloan-backend/internal/domain/asset"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByIDFn           func(ctx context.Context, id uint64) (*domain.Asset, error)
	GetByIDsForUpdateFn func(ctx context.Context, ids []uint64) ([]domain.Asset, error)
	ListByIDsFn         func(ctx context.Context, ids []uint64) ([]domain.Asset, error)
	ListByCategoryFn    func(ctx context.Context, categoryID uint64) ([]domain.Asset, error)
	ListIDsFn           func(ctx context.Context) ([]uint64, error)
	GetCategoryFn       func(ctx context.Context, id uint64) (*domain.Category, error)
	SaveFn              func(ctx context.Context, a *domain.Asset) error
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Asset, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDsForUpdate(ctx context.Context, ids []uint64) ([]domain.Asset, error) {
	if m.GetByIDsForUpdateFn != nil {
		return m.GetByIDsForUpdateFn(ctx, ids)
	}
	return nil, nil
}

func (m *Repo) ListByIDs(ctx context.Context, ids []uint64) ([]domain.Asset, error) {
	if m.ListByIDsFn != nil {
		return m.ListByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *Repo) ListByCategory(ctx context.Context, categoryID uint64) ([]domain.Asset, error) {
	if m.ListByCategoryFn != nil {
		return m.ListByCategoryFn(ctx, categoryID)
	}
	return nil, nil
}

func (m *Repo) ListIDs(ctx context.Context) ([]uint64, error) {
	if m.ListIDsFn != nil {
		return m.ListIDsFn(ctx)
	}
	return nil, nil
}

func (m *Repo) GetCategory(ctx context.Context, id uint64) (*domain.Category, error) {
	if m.GetCategoryFn != nil {
		return m.GetCategoryFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, a *domain.Asset) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}
