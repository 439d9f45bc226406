package ticket

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	Save(ctx context.Context, t *Ticket) error
	GetByIDForUpdate(ctx context.Context, id uint64) (*Ticket, error)
	// CountPendingByAsset counts open or in-progress maintenance tickets.
	CountPendingByAsset(ctx context.Context, assetID uint64) (int64, error)
	// CountBlockingByAsset is CountPendingByAsset minus planned tickets whose
	// scheduled date is still after asOf.
	CountBlockingByAsset(ctx context.Context, assetID uint64, asOf time.Time) (int64, error)
	// ListByAsset returns maintenance tickets for the asset, newest first.
	ListByAsset(ctx context.Context, assetID uint64) ([]Ticket, error)
}
