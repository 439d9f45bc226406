package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	domainNotification "ictloan-backend/internal/domain/notification"
	"ictloan-backend/internal/domain/outbox"
	"ictloan-backend/pkg/clock"

	"github.com/rs/zerolog"
)

var errUnknownKind = errors.New("unknown notification kind")

type Options struct {
	BatchSize   int
	MaxAttempts int
	// BaseBackoff doubles per attempt, capped at MaxBackoff.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// Lease is how long a claimed event stays reserved for one dispatcher.
	Lease time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = 30 * time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = time.Hour
	}
	if o.Lease <= 0 {
		o.Lease = 5 * time.Minute
	}
	return o
}

// Dispatcher drains the outbox into the gateway after commit.
type Dispatcher struct {
	repo  outbox.Repository
	gw    domainNotification.Gateway
	clock clock.Clock
	log   zerolog.Logger
	opts  Options

	mu sync.Mutex // one drain at a time per process; Claim guards across processes
}

func NewDispatcher(repo outbox.Repository, gw domainNotification.Gateway, clk clock.Clock, log zerolog.Logger, opts Options) *Dispatcher {
	return &Dispatcher{repo: repo, gw: gw, clock: clk, log: log, opts: opts.withDefaults()}
}

// DrainOnce delivers due events until none is left or nothing moves. The
// repository hands out only the oldest undelivered event of each aggregate,
// so a failed event holds back the rest of its application across drains.
// Events are claimed before delivery; one taken by another process is skipped.
func (d *Dispatcher) DrainOnce(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sent := 0
	for {
		n, err := d.drainBatch(ctx)
		sent += n
		if err != nil || n == 0 {
			return sent, err
		}
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
	}
}

func (d *Dispatcher) drainBatch(ctx context.Context) (int, error) {
	now := d.clock.Now()
	events, err := d.repo.ListPending(ctx, now, d.opts.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending notifications: %w", err)
	}

	sent := 0
	for i := range events {
		e := &events[i]
		ok, err := d.repo.Claim(ctx, e.ID, now, now.Add(d.opts.Lease))
		if err != nil {
			return sent, fmt.Errorf("claim notification %s: %w", e.EventID, err)
		}
		if !ok {
			continue
		}
		if err := d.deliver(ctx, e); err != nil {
			d.fail(ctx, e, err, now)
			continue
		}
		if err := d.repo.MarkSent(ctx, e.ID, d.clock.Now()); err != nil {
			return sent, fmt.Errorf("mark notification %s sent: %w", e.EventID, err)
		}
		sent++
	}
	return sent, nil
}

// Flush drains right after a commit. Errors are logged; the worker retries.
func (d *Dispatcher) Flush(ctx context.Context) {
	if _, err := d.DrainOnce(ctx); err != nil {
		d.log.Error().Err(err).Msg("notification flush failed")
	}
}

// Run drains every interval until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if n, err := d.DrainOnce(ctx); err != nil {
			d.log.Error().Err(err).Msg("notification drain failed")
		} else if n > 0 {
			d.log.Info().Int("sent", n).Msg("notifications delivered")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (d *Dispatcher) fail(ctx context.Context, e *outbox.Event, cause error, now time.Time) {
	attempt := e.Attempts + 1
	dead := attempt >= d.opts.MaxAttempts || errors.Is(cause, errUnknownKind)
	retryAt := now.Add(d.backoff(attempt))

	d.log.Error().
		Err(fmt.Errorf("%w: %v", domainNotification.ErrDispatch, cause)).
		Str("kind", "NotificationDispatchFailure").
		Str("event_id", e.EventID).
		Str("notification", e.Kind).
		Str("aggregate_type", e.AggregateType).
		Str("aggregate_id", e.AggregateID).
		Int("attempt", attempt).
		Bool("dead", dead).
		Msg("notification dispatch failed")

	if err := d.repo.MarkFailed(ctx, e.ID, cause.Error(), retryAt, dead); err != nil {
		d.log.Error().Err(err).Str("event_id", e.EventID).Msg("could not record notification failure")
	}
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	b := d.opts.BaseBackoff
	for i := 1; i < attempt; i++ {
		b *= 2
		if b >= d.opts.MaxBackoff {
			return d.opts.MaxBackoff
		}
	}
	return b
}

func (d *Dispatcher) deliver(ctx context.Context, e *outbox.Event) error {
	switch domainNotification.Kind(e.Kind) {
	case domainNotification.KindApprovalRequest:
		var n domainNotification.ApprovalRequest
		if err := json.Unmarshal(e.Payload, &n); err != nil {
			return err
		}
		return d.gw.SendApprovalRequest(ctx, n)
	case domainNotification.KindApprovalDecision:
		var n domainNotification.ApprovalDecision
		if err := json.Unmarshal(e.Payload, &n); err != nil {
			return err
		}
		return d.gw.SendApprovalDecision(ctx, n)
	case domainNotification.KindApprovalConfirmation:
		var n domainNotification.ApprovalConfirmation
		if err := json.Unmarshal(e.Payload, &n); err != nil {
			return err
		}
		return d.gw.SendApprovalConfirmation(ctx, n)
	case domainNotification.KindAssetPreparation:
		var n domainNotification.AssetPreparation
		if err := json.Unmarshal(e.Payload, &n); err != nil {
			return err
		}
		return d.gw.NotifyAdminForAssetPreparation(ctx, n)
	case domainNotification.KindMaintenance:
		var n domainNotification.Maintenance
		if err := json.Unmarshal(e.Payload, &n); err != nil {
			return err
		}
		return d.gw.SendMaintenanceNotification(ctx, n)
	}
	return fmt.Errorf("%w: %s", errUnknownKind, e.Kind)
}
