package integration

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	MarkProcessedByTicket(ctx context.Context, ticketID uint64, by string, at time.Time) error
	ListByTicket(ctx context.Context, ticketID uint64) ([]Record, error)
}
