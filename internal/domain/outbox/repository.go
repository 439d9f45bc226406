package outbox

import (
	"context"
	"time"
)

type Repository interface {
	Enqueue(ctx context.Context, e *Event) error
	// ListPending returns due events in insertion order, at most one per
	// aggregate: an event is only listed once every earlier event of its
	// aggregate is sent or dead.
	ListPending(ctx context.Context, now time.Time, limit int) ([]Event, error)
	// Claim takes the event for delivery until the lease ends. It reports
	// false when another dispatcher holds it or it is no longer due.
	Claim(ctx context.Context, id uint64, now, until time.Time) (bool, error)
	MarkSent(ctx context.Context, id uint64, at time.Time) error
	MarkFailed(ctx context.Context, id uint64, reason string, retryAt time.Time, dead bool) error
}
