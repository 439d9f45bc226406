package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ictloan-backend/internal/domain/asset"
	domainIntegration "ictloan-backend/internal/domain/integration"
	"ictloan-backend/internal/domain/ticket"
	"ictloan-backend/internal/domain/uow"
	"ictloan-backend/pkg/id"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrInvalidSchedule = errors.New("invalid maintenance schedule")

// ScheduleMaintenance opens a planned ticket and moves the asset's next
// maintenance date. The asset keeps its status until the date arrives.
func (e *Engine) ScheduleMaintenance(ctx context.Context, assetID uint64, in ScheduleInput) (*TicketDTO, error) {
	if in.ScheduledFor.IsZero() {
		return nil, ErrInvalidSchedule
	}
	if in.Priority == "" {
		in.Priority = ticket.PriorityNormal
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("priority %q: %w", in.Priority, ErrInvalidSchedule)
	}

	var out *ticket.Ticket
	err := e.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := e.lockAsset(ctx, r, assetID)
		if err != nil {
			return err
		}
		when := in.ScheduledFor.UTC()
		t := &ticket.Ticket{
			TicketNumber:    id.NewNumber("MT", e.clock.Now()),
			Subject:         fmt.Sprintf("Scheduled maintenance: %s %s", a.AssetTag, a.Name),
			Description:     in.Description,
			Category:        ticket.CategoryMaintenance,
			Priority:        in.Priority,
			Status:          ticket.StatusOpen,
			MaintenanceType: ticket.MaintenanceScheduled,
			AssetID:         &a.ID,
			ScheduledFor:    &when,
		}
		if err := r.Tickets.Create(ctx, t); err != nil {
			return err
		}

		a.NextMaintenanceDate = &when
		if err := r.Assets.Save(ctx, a); err != nil {
			return err
		}
		if err := e.linkTicket(ctx, r, t, domainIntegration.TypeMaintenanceRequest, domainIntegration.EventMaintenanceScheduled, datatypes.JSONMap{
			"asset_id":      a.ID,
			"scheduled_for": when.Format(time.RFC3339),
		}); err != nil {
			return err
		}
		if err := e.enqueueMaintenance(ctx, r, t, a, ""); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Uint64("asset_id", assetID).
		Uint64("ticket_id", out.ID).
		Time("scheduled_for", *out.ScheduledFor).
		Msg("maintenance scheduled")
	e.afterCommit(ctx)
	return toTicketDTO(out), nil
}

// CompleteMaintenanceTicket resolves the ticket and refreshes the asset's
// condition and maintenance dates. It does not resync the asset status;
// other tickets may still hold it.
func (e *Engine) CompleteMaintenanceTicket(ctx context.Context, ticketID uint64, in CompletionInput) (*TicketDTO, error) {
	if in.Condition != "" && !in.Condition.Valid() {
		return nil, asset.ErrInvalidCondition
	}

	var out *ticket.Ticket
	err := e.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.AssetID == nil {
			return ticket.ErrNoAssociatedAsset
		}
		if !t.Status.Pending() {
			return ticket.ErrAlreadyResolved
		}
		a, err := e.lockAsset(ctx, r, *t.AssetID)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		t.Status = ticket.StatusResolved
		t.ResolutionNotes = in.ResolutionNotes
		t.ResolvedAt = &now
		t.ResolvedBy = in.ResolvedBy
		if err := r.Tickets.Save(ctx, t); err != nil {
			return err
		}

		if in.Condition != "" {
			a.Condition = in.Condition
		}
		a.LastMaintenanceDate = &now
		a.LoansAtLastMaintenance = a.TotalLoans
		next := now.Add(e.policy.MaintenanceInterval)
		if in.NextMaintenanceDate != nil {
			next = in.NextMaintenanceDate.UTC()
		}
		a.NextMaintenanceDate = &next
		if err := r.Assets.Save(ctx, a); err != nil {
			return err
		}

		if err := r.Integrations.MarkProcessedByTicket(ctx, t.ID, in.ResolvedBy, now); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Uint64("ticket_id", out.ID).
		Uint64("asset_id", *out.AssetID).
		Str("resolved_by", out.ResolvedBy).
		Msg("maintenance ticket completed")
	return toTicketDTO(out), nil
}

// TriggerPreventiveMaintenance opens a preventive ticket when the asset is
// due by date or by usage. It returns nil when nothing is due or a pending
// maintenance ticket already covers the asset.
func (e *Engine) TriggerPreventiveMaintenance(ctx context.Context, assetID uint64) (*TicketDTO, error) {
	var out *ticket.Ticket
	err := e.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := e.lockAsset(ctx, r, assetID)
		if err != nil {
			return err
		}
		if a.Status == asset.StatusRetired {
			return nil
		}

		now := e.clock.Now()
		reason := e.preventiveReason(a, now)
		if reason == "" {
			return nil
		}
		pending, err := r.Tickets.CountPendingByAsset(ctx, a.ID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return nil
		}

		t := &ticket.Ticket{
			TicketNumber:    id.NewNumber("MT", now),
			Subject:         fmt.Sprintf("Preventive maintenance: %s %s", a.AssetTag, a.Name),
			Description:     fmt.Sprintf("Preventive maintenance due (%s). Loans since last maintenance: %d.", reason, a.LoansSinceMaintenance()),
			Category:        ticket.CategoryMaintenance,
			Priority:        ticket.PriorityNormal,
			Status:          ticket.StatusOpen,
			MaintenanceType: ticket.MaintenancePreventive,
			AssetID:         &a.ID,
			ScheduledFor:    &now,
		}
		if err := r.Tickets.Create(ctx, t); err != nil {
			return err
		}
		if err := e.linkTicket(ctx, r, t, domainIntegration.TypeMaintenanceRequest, domainIntegration.EventPreventiveTriggered, datatypes.JSONMap{
			"asset_id":                a.ID,
			"reason":                  reason,
			"loans_since_maintenance": a.LoansSinceMaintenance(),
		}); err != nil {
			return err
		}
		if err := e.enqueueMaintenance(ctx, r, t, a, ""); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil || out == nil {
		return nil, err
	}

	e.log.Info().
		Uint64("asset_id", assetID).
		Uint64("ticket_id", out.ID).
		Msg("preventive maintenance triggered")
	e.afterCommit(ctx)
	return toTicketDTO(out), nil
}

func (e *Engine) preventiveReason(a *asset.Asset, now time.Time) string {
	if a.NextMaintenanceDate != nil && !a.NextMaintenanceDate.After(now) {
		return "maintenance date reached"
	}
	if a.LoansSinceMaintenance() >= e.policy.PreventiveLoanThreshold {
		return "usage threshold reached"
	}
	return ""
}

// TriggerPreventiveForAll sweeps every asset; one asset failing does not
// stop the sweep.
func (e *Engine) TriggerPreventiveForAll(ctx context.Context) (int, error) {
	ids, err := e.reads.Assets.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	opened := 0
	for _, assetID := range ids {
		if ctx.Err() != nil {
			return opened, ctx.Err()
		}
		t, err := e.TriggerPreventiveMaintenance(ctx, assetID)
		if err != nil {
			e.log.Error().Err(err).Uint64("asset_id", assetID).Msg("preventive maintenance check failed")
			continue
		}
		if t != nil {
			opened++
		}
	}
	return opened, nil
}

// GetAssetMaintenanceStats never fails for an unknown asset; it reports zeros.
func (e *Engine) GetAssetMaintenanceStats(ctx context.Context, assetID uint64) (*MaintenanceStats, error) {
	tickets, err := e.reads.Tickets.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	stats := buildStats(assetID, tickets)

	a, err := e.reads.Assets.GetByID(ctx, assetID)
	switch {
	case errors.Is(err, asset.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if a.LastMaintenanceDate != nil {
			stats.LastMaintenanceDate = a.LastMaintenanceDate
		}
		stats.NextMaintenanceDate = a.NextMaintenanceDate
	}
	return stats, nil
}

func buildStats(assetID uint64, tickets []ticket.Ticket) *MaintenanceStats {
	s := &MaintenanceStats{
		AssetID:      assetID,
		TotalTickets: len(tickets),
		ByStatus:     map[ticket.Status]int{},
		ByType:       map[ticket.MaintenanceType]int{},
	}
	var total time.Duration
	resolved := 0
	for _, t := range tickets {
		s.ByStatus[t.Status]++
		if t.MaintenanceType != "" {
			s.ByType[t.MaintenanceType]++
		}
		if t.Status.Pending() {
			s.Pending++
		}
		if t.ResolvedAt != nil {
			total += t.ResolvedAt.Sub(t.CreatedAt)
			resolved++
			if s.LastMaintenanceDate == nil || t.ResolvedAt.After(*s.LastMaintenanceDate) {
				at := *t.ResolvedAt
				s.LastMaintenanceDate = &at
			}
		}
	}
	if resolved > 0 {
		s.AverageResolutionHours = roundTo(total.Hours()/float64(resolved), 2)
	}
	return s
}

func (e *Engine) lockAsset(ctx context.Context, r uow.Repos, assetID uint64) (*asset.Asset, error) {
	locked, err := r.Assets.GetByIDsForUpdate(ctx, []uint64{assetID})
	if err != nil {
		return nil, err
	}
	if len(locked) == 0 {
		return nil, asset.ErrNotFound
	}
	return &locked[0], nil
}

func (e *Engine) linkTicket(ctx context.Context, r uow.Repos, t *ticket.Ticket, typ domainIntegration.Type, event string, payload datatypes.JSONMap) error {
	return r.Integrations.Create(ctx, &domainIntegration.Record{
		RecordID:          uuid.NewString(),
		HelpdeskTicketID:  t.ID,
		LoanApplicationID: t.RelatedLoanApplicationID,
		IntegrationType:   typ,
		TriggerEvent:      event,
		Payload:           payload,
	})
}
