package loan

import (
	"context"
	"time"
)

type Repository interface {
	// Create persists the application together with its items.
	Create(ctx context.Context, a *Application) error
	Save(ctx context.Context, a *Application) error
	SaveItem(ctx context.Context, it *Item) error

	GetByApplicationNumber(ctx context.Context, number string) (*Application, error)
	// Row-locking variants, used inside a unit of work.
	GetByApplicationNumberForUpdate(ctx context.Context, number string) (*Application, error)
	GetByTokenForUpdate(ctx context.Context, token string) (*Application, error)

	// ActiveBookings returns loan items for the given assets whose application is
	// in an active status and whose dates overlap r. excludeApplicationID of 0
	// excludes nothing.
	ActiveBookings(ctx context.Context, assetIDs []uint64, r DateRange, excludeApplicationID uint64) ([]Booking, error)
	// CountHolding counts applications in a holding status that include the asset.
	CountHolding(ctx context.Context, assetID uint64) (int64, error)
	ListByAsset(ctx context.Context, assetID uint64) ([]AssetLoan, error)
	// ListOverdue returns in-use applications whose end date is before asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]Application, error)
}
