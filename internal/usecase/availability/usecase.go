package availability

import (
	"context"
	"time"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"

	"github.com/rs/zerolog"
)

const defaultAlternativeLimit = 5

// CalendarCache stores rendered calendars keyed by asset and range. Version
// is read before the bookings query and passed back to Set, which must drop
// the write when an invalidation happened in between.
type CalendarCache interface {
	Get(ctx context.Context, assetID uint64, r loan.DateRange) (*Calendar, bool, error)
	Version(ctx context.Context, assetID uint64) (int64, error)
	Set(ctx context.Context, assetID uint64, r loan.DateRange, c *Calendar, version int64) error
	Invalidate(ctx context.Context, assetIDs ...uint64) error
}

type Usecase struct {
	assets asset.Repository
	loans  loan.Repository
	cache  CalendarCache
	log    zerolog.Logger
}

// NewUsecase: cache may be nil, calendars are then always computed.
func NewUsecase(assets asset.Repository, loans loan.Repository, cache CalendarCache, log zerolog.Logger) *Usecase {
	return &Usecase{assets: assets, loans: loans, cache: cache, log: log}
}

func (u *Usecase) CheckAvailability(ctx context.Context, in CheckInput) (Result, error) {
	r, err := loan.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	return Check(ctx, u.assets, u.loans, in.AssetIDs, r, in.ExcludeApplicationID)
}

func (u *Usecase) GetAvailabilityCalendar(ctx context.Context, assetID uint64, start, end time.Time) (*Calendar, error) {
	r, err := loan.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}

	var (
		version   int64
		cacheable bool
	)
	if u.cache != nil {
		c, ok, err := u.cache.Get(ctx, assetID, r)
		if err != nil {
			u.log.Warn().Err(err).Uint64("asset_id", assetID).Msg("calendar cache read failed")
		} else if ok {
			return c, nil
		}
		if version, err = u.cache.Version(ctx, assetID); err == nil {
			cacheable = true
		}
	}

	bookings, err := u.loans.ActiveBookings(ctx, []uint64{assetID}, r, 0)
	if err != nil {
		return nil, err
	}
	c := &Calendar{AssetID: assetID, StartDate: r.Start, EndDate: r.End, Bookings: make([]CalendarEntry, 0, len(bookings))}
	for _, b := range bookings {
		c.Bookings = append(c.Bookings, CalendarEntry{
			ApplicationNumber: b.ApplicationNumber,
			ApplicantName:     b.ApplicantName,
			StaffID:           b.StaffID,
			Status:            b.Status,
			StartDate:         b.LoanStartDate,
			EndDate:           b.LoanEndDate,
		})
	}

	if cacheable {
		if err := u.cache.Set(ctx, assetID, r, c, version); err != nil {
			u.log.Warn().Err(err).Uint64("asset_id", assetID).Msg("calendar cache write failed")
		}
	}
	return c, nil
}

// GetAlternativeAssets lists up to limit same-category assets free for the
// whole range, in creation order.
func (u *Usecase) GetAlternativeAssets(ctx context.Context, categoryID uint64, start, end time.Time, limit int) ([]AlternativeDTO, error) {
	r, err := loan.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAlternativeLimit
	}

	candidates, err := u.assets.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(candidates))
	for _, a := range candidates {
		ids = append(ids, a.ID)
	}
	avail, err := Check(ctx, u.assets, u.loans, ids, r, 0)
	if err != nil {
		return nil, err
	}

	out := make([]AlternativeDTO, 0, limit)
	for _, a := range candidates {
		if len(out) == limit {
			break
		}
		if !avail[a.ID] {
			continue
		}
		out = append(out, AlternativeDTO{
			ID:        a.ID,
			AssetTag:  a.AssetTag,
			Name:      a.Name,
			Brand:     a.Brand,
			Model:     a.Model,
			Condition: string(a.Condition),
		})
	}
	return out, nil
}

// InvalidateCalendars drops cached calendars for the assets. Writers call it
// after commit; a failure is logged since the write already happened.
func (u *Usecase) InvalidateCalendars(ctx context.Context, assetIDs ...uint64) {
	if u.cache == nil || len(assetIDs) == 0 {
		return
	}
	if err := u.cache.Invalidate(ctx, assetIDs...); err != nil {
		u.log.Error().Err(err).Interface("asset_ids", assetIDs).Msg("calendar cache invalidation failed")
	}
}
