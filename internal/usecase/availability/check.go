package availability

import (
	"context"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"
)

// Check resolves availability for ids against the given repositories, which
// may be bound to a transaction. Unknown ids come back false.
func Check(ctx context.Context, assets asset.Repository, loans loan.Repository, ids []uint64, r loan.DateRange, exclude uint64) (Result, error) {
	ids = dedupe(ids)
	out := make(Result, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, id := range ids {
		out[id] = false
	}

	found, err := assets.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range found {
		out[a.ID] = a.Status == asset.StatusAvailable
	}

	conflicts, err := Conflicts(ctx, loans, ids, r, exclude)
	if err != nil {
		return nil, err
	}
	for _, b := range conflicts {
		out[b.AssetID] = false
	}
	return out, nil
}

// Conflicts returns the active bookings that overlap r, ignoring the assets'
// own status. Approval uses it for future reservations of assets that may be
// out on an earlier loan right now.
func Conflicts(ctx context.Context, loans loan.Repository, ids []uint64, r loan.DateRange, exclude uint64) ([]loan.Booking, error) {
	bookings, err := loans.ActiveBookings(ctx, dedupe(ids), r, exclude)
	if err != nil {
		return nil, err
	}
	out := bookings[:0]
	for _, b := range bookings {
		if b.Status.IsActive() && b.Range().Overlaps(r) {
			out = append(out, b)
		}
	}
	return out, nil
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
