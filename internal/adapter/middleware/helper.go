package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Headers the portal gateway stamps on every mutating call.
const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderReplay    = "Ax-Idempotent-Replay"
)

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	// staff ids and gateway subject ids
	reActorID = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)
)

// requestMeta identifies one portal call for idempotency.
type requestMeta struct {
	ID      string
	At      time.Time
	ActorID string
}

// readRequestMeta validates the idempotency headers. Request ids are
// lowercase uuids or 32-hex ids; they are part of the redis key, so
// "AB.." and "ab.." are not treated as the same request.
func readRequestMeta(h http.Header, now time.Time) (requestMeta, error) {
	var m requestMeta
	m.ID = strings.TrimSpace(h.Get(HeaderRequestID))
	if m.ID == "" {
		return m, errors.New("missing " + HeaderRequestID)
	}
	if !validRequestID(m.ID) {
		return m, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return m, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return m, errors.New(HeaderRequestAt + " too skewed")
	}
	m.At = at

	m.ActorID = strings.TrimSpace(h.Get(HeaderActorID))
	if m.ActorID == "" {
		return m, errors.New("missing " + HeaderActorID)
	}
	if !reActorID.MatchString(m.ActorID) {
		return m, errors.New("invalid " + HeaderActorID)
	}
	return m, nil
}

func validRequestID(id string) bool { return reUUID.MatchString(id) || reHex32.MatchString(id) }

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with
// a zone. Timestamps without a zone are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

// ---- redis store ----

// idempStore holds one entry per method, route, actor and request id.
// Reservations expire after provisionalLockTTL; finished entries after ttl.
type idempStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s idempStore) key(method, route string, m requestMeta) string {
	return "idemp:ictloan:" + strings.ToLower(method) + ":" + route + ":" + m.ActorID + ":" + m.ID
}

func (s idempStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, b, provisionalLockTTL).Result()
}

func (s idempStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(b, &e)
	return e, err
}

func (s idempStore) finish(ctx context.Context, key string, e idempEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, s.ttl).Err()
}

func (s idempStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
