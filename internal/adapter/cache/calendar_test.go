package cache

import (
	"context"
	"testing"
	"time"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/testutil/assetmock"
	"ictloan-backend/internal/testutil/loanmock"
	"ictloan-backend/internal/usecase/availability"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newCache(t *testing.T) (*CalendarCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCalendarCache(rdb, time.Minute), s
}

func rng(t *testing.T, sd, ed int) loan.DateRange {
	t.Helper()
	r, err := loan.NewDateRange(
		time.Date(2025, 3, sd, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, ed, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCalendarCache_SetGet(t *testing.T) {
	c, s := newCache(t)
	ctx := context.Background()
	r := rng(t, 1, 31)

	if _, ok, err := c.Get(ctx, 7, r); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	in := &availability.Calendar{AssetID: 7, StartDate: r.Start, EndDate: r.End, Bookings: []availability.CalendarEntry{
		{ApplicationNumber: "LA-1", ApplicantName: "Aina", Status: loan.StatusApproved, StartDate: r.Start, EndDate: r.Start},
	}}
	if err := c.Set(ctx, 7, r, in, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, 7, r)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got.Bookings) != 1 || got.Bookings[0].ApplicationNumber != "LA-1" {
		t.Fatalf("unexpected calendar %+v", got)
	}
	if ttl := s.TTL("calendar:7:2025-03-01:2025-03-31"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}
}

func TestCalendarCache_InvalidateDropsAllRangesOfAsset(t *testing.T) {
	c, s := newCache(t)
	ctx := context.Background()

	for _, r := range []loan.DateRange{rng(t, 1, 10), rng(t, 5, 20)} {
		if err := c.Set(ctx, 7, r, &availability.Calendar{AssetID: 7}, 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, 8, rng(t, 1, 10), &availability.Calendar{AssetID: 8}, 0); err != nil {
		t.Fatal(err)
	}

	if err := c.Invalidate(ctx, 7, 99); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	for _, r := range []loan.DateRange{rng(t, 1, 10), rng(t, 5, 20)} {
		if _, ok, _ := c.Get(ctx, 7, r); ok {
			t.Fatalf("asset 7 range %v still cached", r)
		}
	}
	if s.Exists("calendar:asset:7") {
		t.Fatal("index set not removed")
	}
	if _, ok, _ := c.Get(ctx, 8, rng(t, 1, 10)); !ok {
		t.Fatal("other asset must stay cached")
	}
}

func TestCalendarCache_ReadErrorSurfaces(t *testing.T) {
	c, s := newCache(t)
	s.Close()
	if _, _, err := c.Get(context.Background(), 7, rng(t, 1, 2)); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestCalendarCache_SetSkippedAfterInvalidation(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	r := rng(t, 1, 10)

	v, err := c.Version(ctx, 7)
	if err != nil || v != 0 {
		t.Fatalf("Version: %d %v", v, err)
	}
	if err := c.Invalidate(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, 7, r, &availability.Calendar{AssetID: 7}, v); err != nil {
		t.Fatalf("stale Set should be dropped quietly: %v", err)
	}
	if _, ok, _ := c.Get(ctx, 7, r); ok {
		t.Fatal("calendar computed before invalidation was cached")
	}

	v, _ = c.Version(ctx, 7)
	if err := c.Set(ctx, 7, r, &availability.Calendar{AssetID: 7}, v); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, 7, r); !ok {
		t.Fatal("current version should be cached")
	}
}

func TestCalendarCache_ApprovalDuringReadIsNotLost(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	assets := &assetmock.Repo{
		GetByIDFn: func(context.Context, uint64) (*asset.Asset, error) { return &asset.Asset{ID: 7}, nil },
	}

	var u *availability.Usecase
	approved := false
	loans := &loanmock.Repo{
		ActiveBookingsFn: func(_ context.Context, ids []uint64, r loan.DateRange, _ uint64) ([]loan.Booking, error) {
			if approved {
				return []loan.Booking{{AssetID: 7, ApplicationNumber: "LA-9", Status: loan.StatusApproved,
					LoanStartDate: r.Start, LoanEndDate: r.Start}}, nil
			}
			// an approval commits and invalidates while this read is in flight
			approved = true
			u.InvalidateCalendars(ctx, 7)
			return nil, nil
		},
	}
	u = availability.NewUsecase(assets, loans, c, zerolog.Nop())

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	first, err := u.GetAvailabilityCalendar(ctx, 7, start, end)
	if err != nil || len(first.Bookings) != 0 {
		t.Fatalf("first read: %+v %v", first, err)
	}
	second, err := u.GetAvailabilityCalendar(ctx, 7, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Bookings) != 1 || second.Bookings[0].ApplicationNumber != "LA-9" {
		t.Fatalf("stale calendar served after invalidation: %+v", second)
	}
}
