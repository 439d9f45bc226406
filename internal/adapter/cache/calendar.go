package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/usecase/availability"

	"github.com/redis/go-redis/v9"
)

// CalendarCache keeps rendered availability calendars in redis. Every key
// written for an asset is tracked in a per-asset set so a booking change
// can drop all ranges of that asset at once. Each asset also has a version
// counter bumped on invalidation; a calendar computed under an older version
// is never written.
type CalendarCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCalendarCache(rdb *redis.Client, ttl time.Duration) *CalendarCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CalendarCache{rdb: rdb, ttl: ttl}
}

func calendarKey(assetID uint64, r loan.DateRange) string {
	return fmt.Sprintf("calendar:%d:%s:%s", assetID, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

func assetIndexKey(assetID uint64) string { return fmt.Sprintf("calendar:asset:%d", assetID) }

func versionKey(assetID uint64) string { return fmt.Sprintf("calendar:ver:%d", assetID) }

func (c *CalendarCache) Version(ctx context.Context, assetID uint64) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(assetID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *CalendarCache) Get(ctx context.Context, assetID uint64, r loan.DateRange) (*availability.Calendar, bool, error) {
	b, err := c.rdb.Get(ctx, calendarKey(assetID, r)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cal availability.Calendar
	if err := json.Unmarshal(b, &cal); err != nil {
		return nil, false, err
	}
	return &cal, true, nil
}

// Set stores cal only while the asset is still at version. A concurrent
// Invalidate makes it a no-op.
func (c *CalendarCache) Set(ctx context.Context, assetID uint64, r loan.DateRange, cal *availability.Calendar, version int64) error {
	b, err := json.Marshal(cal)
	if err != nil {
		return err
	}
	k := calendarKey(assetID, r)
	vk := versionKey(assetID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, b, c.ttl)
			pipe.SAdd(ctx, assetIndexKey(assetID), k)
			pipe.Expire(ctx, assetIndexKey(assetID), c.ttl)
			return nil
		})
		return err
	}, vk)
	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

var errStale = errors.New("calendar computed under an old version")

// Invalidate bumps the version before collecting keys, so a writer racing
// with it either fails its version check or lands in the index in time to
// be deleted.
func (c *CalendarCache) Invalidate(ctx context.Context, assetIDs ...uint64) error {
	for _, id := range assetIDs {
		if err := c.rdb.Incr(ctx, versionKey(id)).Err(); err != nil {
			return err
		}
		keys, err := c.rdb.SMembers(ctx, assetIndexKey(id)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		pipe := c.rdb.TxPipeline()
		for _, k := range keys {
			pipe.Del(ctx, k)
		}
		pipe.Del(ctx, assetIndexKey(id))
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
