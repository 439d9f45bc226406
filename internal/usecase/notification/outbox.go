package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domainNotification "ictloan-backend/internal/domain/notification"
	"ictloan-backend/internal/domain/outbox"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AggregateLoan   = "loan_application"
	AggregateTicket = "helpdesk_ticket"
)

// Enqueue writes a notification into the outbox through a tx-bound repo.
// An error here must abort the caller's transaction.
func Enqueue(ctx context.Context, repo outbox.Repository, now time.Time, kind domainNotification.Kind, aggregateType, aggregateID string, payload any) error {
	if !kind.Valid() {
		return fmt.Errorf("enqueue notification: unknown kind %q", kind)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}
	e := &outbox.Event{
		EventID:       uuid.NewString(),
		Kind:          string(kind),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       datatypes.JSON(b),
		Status:        outbox.StatusPending,
		AvailableAt:   now,
	}
	if err := repo.Enqueue(ctx, e); err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}
	return nil
}
