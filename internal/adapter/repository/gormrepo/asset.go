package gormrepo

import (
	"context"
	"errors"

	assetDomain "ictloan-backend/internal/domain/asset"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

func (r *AssetRepository) GetByID(ctx context.Context, id uint64) (*assetDomain.Asset, error) {
	var out assetDomain.Asset
	err := r.db.WithContext(ctx).Preload("Category").First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, assetDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AssetRepository) GetByIDsForUpdate(ctx context.Context, ids []uint64) ([]assetDomain.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []assetDomain.Asset
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *AssetRepository) ListByIDs(ctx context.Context, ids []uint64) ([]assetDomain.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []assetDomain.Asset
	err := r.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (r *AssetRepository) ListByCategory(ctx context.Context, categoryID uint64) ([]assetDomain.Asset, error) {
	var out []assetDomain.Asset
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}

func (r *AssetRepository) ListIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&assetDomain.Asset{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *AssetRepository) GetCategory(ctx context.Context, id uint64) (*assetDomain.Category, error) {
	var out assetDomain.Category
	err := r.db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, assetDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AssetRepository) Save(ctx context.Context, a *assetDomain.Asset) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}
