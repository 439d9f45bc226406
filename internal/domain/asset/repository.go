package asset

import "context"

type Repository interface {
	GetByID(ctx context.Context, id uint64) (*Asset, error)
	// GetByIDsForUpdate locks the rows in ascending id order so concurrent
	// writers on overlapping asset sets cannot deadlock.
	GetByIDsForUpdate(ctx context.Context, ids []uint64) ([]Asset, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]Asset, error)
	// ListByCategory returns assets in creation order.
	ListByCategory(ctx context.Context, categoryID uint64) ([]Asset, error)
	ListIDs(ctx context.Context) ([]uint64, error)
	GetCategory(ctx context.Context, id uint64) (*Category, error)
	Save(ctx context.Context, a *Asset) error
}
