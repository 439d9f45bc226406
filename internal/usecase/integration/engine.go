package integration

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"ictloan-backend/internal/domain/asset"
	domainIntegration "ictloan-backend/internal/domain/integration"
	"ictloan-backend/internal/domain/loan"
	domainNotification "ictloan-backend/internal/domain/notification"
	"ictloan-backend/internal/domain/ticket"
	"ictloan-backend/internal/domain/uow"
	"ictloan-backend/internal/usecase/notification"
	"ictloan-backend/pkg/clock"
	"ictloan-backend/pkg/id"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// CalendarInvalidator drops cached calendars once a write has committed.
type CalendarInvalidator interface {
	InvalidateCalendars(ctx context.Context, assetIDs ...uint64)
}

// Flusher pushes queued notifications after commit.
type Flusher interface {
	Flush(ctx context.Context)
}

type Policy struct {
	// PreventiveLoanThreshold is the loans-since-maintenance count that
	// triggers a preventive ticket.
	PreventiveLoanThreshold int
	MaintenanceInterval     time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.PreventiveLoanThreshold <= 0 {
		p.PreventiveLoanThreshold = 10
	}
	if p.MaintenanceInterval <= 0 {
		p.MaintenanceInterval = 90 * 24 * time.Hour
	}
	return p
}

// Engine links returned loans to helpdesk maintenance and keeps asset status
// consistent with tickets and loans.
type Engine struct {
	uow       uow.UnitOfWork
	reads     uow.Repos
	clock     clock.Clock
	log       zerolog.Logger
	policy    Policy
	calendars CalendarInvalidator
	notifier  Flusher
}

func NewEngine(tx uow.UnitOfWork, reads uow.Repos, clk clock.Clock, log zerolog.Logger, policy Policy, calendars CalendarInvalidator, notifier Flusher) *Engine {
	return &Engine{
		uow:       tx,
		reads:     reads,
		clock:     clk,
		log:       log,
		policy:    policy.withDefaults(),
		calendars: calendars,
		notifier:  notifier,
	}
}

func (e *Engine) afterCommit(ctx context.Context, assetIDs ...uint64) {
	if e.calendars != nil && len(assetIDs) > 0 {
		e.calendars.InvalidateCalendars(ctx, assetIDs...)
	}
	if e.notifier != nil {
		e.notifier.Flush(ctx)
	}
}

// CreateMaintenanceTicket opens a damage ticket for an asset returned under
// the given application. The asset must be one of the application's items
// and the application must have been issued.
func (e *Engine) CreateMaintenanceTicket(ctx context.Context, assetID uint64, applicationNumber string, dmg DamageData) (*TicketDTO, error) {
	var out *ticket.Ticket
	err := e.uow.WithinLoanTx(ctx, applicationNumber, func(r uow.Repos, app *loan.Application) error {
		if !damageReportable(app.Status) {
			return fmt.Errorf("%w: application %s is %s", loan.ErrInvalidStateTransition, app.ApplicationNumber, app.Status)
		}
		if !slices.Contains(app.AssetIDs(), assetID) {
			return fmt.Errorf("%w: asset %d is not part of %s", asset.ErrNotFound, assetID, app.ApplicationNumber)
		}
		locked, err := r.Assets.GetByIDsForUpdate(ctx, []uint64{assetID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return asset.ErrNotFound
		}
		out, err = e.OpenDamageTicket(ctx, r, &locked[0], app, dmg)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.afterCommit(ctx, assetID)
	return toTicketDTO(out), nil
}

// damageReportable reports whether the assets of an application in status s
// have been handed out.
func damageReportable(s loan.Status) bool {
	switch s {
	case loan.StatusIssued, loan.StatusInUse, loan.StatusOverdue, loan.StatusReturned, loan.StatusCompleted:
		return true
	}
	return false
}

// OpenDamageTicket does the work of CreateMaintenanceTicket inside the
// caller's transaction. a must already be locked; app is saved.
func (e *Engine) OpenDamageTicket(ctx context.Context, r uow.Repos, a *asset.Asset, app *loan.Application, dmg DamageData) (*ticket.Ticket, error) {
	now := e.clock.Now()
	t := &ticket.Ticket{
		TicketNumber:             id.NewNumber("MT", now),
		Subject:                  fmt.Sprintf("Damaged asset returned: %s %s", a.AssetTag, a.Name),
		Description:              damageDescription(a, app, dmg),
		Category:                 ticket.CategoryMaintenance,
		Priority:                 ticket.PriorityHigh,
		Status:                   ticket.StatusOpen,
		MaintenanceType:          ticket.MaintenanceCorrective,
		AssetID:                  &a.ID,
		RelatedLoanApplicationID: &app.ID,
	}
	if err := r.Tickets.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create maintenance ticket: %w", err)
	}

	a.Status = asset.StatusMaintenance
	a.MaintenanceTicketsCount++
	if dmg.ConditionAfter.Valid() {
		a.Condition = dmg.ConditionAfter
	}
	if err := r.Assets.Save(ctx, a); err != nil {
		return nil, err
	}

	app.AttachTicket(t.ID)
	if err := r.Loans.Save(ctx, app); err != nil {
		return nil, err
	}

	rec := &domainIntegration.Record{
		RecordID:          uuid.NewString(),
		HelpdeskTicketID:  t.ID,
		LoanApplicationID: &app.ID,
		IntegrationType:   domainIntegration.TypeAssetDamageReport,
		TriggerEvent:      domainIntegration.EventAssetReturnedDamaged,
		Payload: datatypes.JSONMap{
			"asset_id":           a.ID,
			"asset_tag":          a.AssetTag,
			"application_number": app.ApplicationNumber,
			"condition_after":    string(dmg.ConditionAfter),
			"damage_report":      dmg.DamageReport,
			"reported_by":        dmg.ReportedBy,
		},
	}
	if err := r.Integrations.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := e.enqueueMaintenance(ctx, r, t, a, app.ApplicationNumber); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("application_number", app.ApplicationNumber).
		Uint64("asset_id", a.ID).
		Str("asset_tag", a.AssetTag).
		Uint64("ticket_id", t.ID).
		Str("ticket_number", t.TicketNumber).
		Str("condition_after", string(dmg.ConditionAfter)).
		Msg("maintenance ticket opened for damaged return")
	return t, nil
}

func damageDescription(a *asset.Asset, app *loan.Application, dmg DamageData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Asset: %s (%s %s)\n", a.AssetTag, a.Brand, a.Model)
	if a.SerialNumber != "" {
		fmt.Fprintf(&b, "Serial number: %s\n", a.SerialNumber)
	}
	fmt.Fprintf(&b, "Application: %s\n", app.ApplicationNumber)
	fmt.Fprintf(&b, "Applicant: %s <%s>", app.ApplicantName, app.ApplicantEmail)
	if app.StaffID != "" {
		fmt.Fprintf(&b, ", staff id %s", app.StaffID)
	}
	b.WriteString("\n")
	if dmg.ConditionAfter != "" {
		fmt.Fprintf(&b, "Condition on return: %s\n", dmg.ConditionAfter)
	}
	b.WriteString("\nDamage report:\n")
	if dmg.DamageReport != "" {
		b.WriteString(dmg.DamageReport)
	} else {
		b.WriteString("(none provided)")
	}
	return b.String()
}

func (e *Engine) enqueueMaintenance(ctx context.Context, r uow.Repos, t *ticket.Ticket, a *asset.Asset, applicationNumber string) error {
	return notification.Enqueue(ctx, r.Outbox, e.clock.Now(), domainNotification.KindMaintenance,
		notification.AggregateTicket, t.TicketNumber, domainNotification.Maintenance{
			TicketID:          t.ID,
			TicketNumber:      t.TicketNumber,
			Priority:          string(t.Priority),
			AssetID:           a.ID,
			AssetTag:          a.AssetTag,
			ApplicationNumber: applicationNumber,
			Subject:           t.Subject,
		})
}

// SyncAssetStatus recomputes the asset status from its tickets and loans.
// Unknown assets are an error here since the caller asked to write.
func (e *Engine) SyncAssetStatus(ctx context.Context, assetID uint64) (asset.Status, error) {
	var status asset.Status
	changed := false
	err := e.uow.WithinTx(ctx, func(r uow.Repos) error {
		locked, err := r.Assets.GetByIDsForUpdate(ctx, []uint64{assetID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return asset.ErrNotFound
		}
		before := locked[0].Status
		status, err = e.SyncAssetStatusTx(ctx, r, &locked[0])
		changed = status != before
		return err
	})
	if err != nil {
		return "", err
	}
	if changed {
		e.afterCommit(ctx, assetID)
	}
	return status, nil
}

// SyncAssetStatusTx applies the reconciliation rule inside the caller's
// transaction: a blocking maintenance ticket wins, then a holding loan, else
// the asset is available. Retired assets are never touched.
func (e *Engine) SyncAssetStatusTx(ctx context.Context, r uow.Repos, a *asset.Asset) (asset.Status, error) {
	if a.Status == asset.StatusRetired {
		return a.Status, nil
	}

	want := asset.StatusAvailable
	blocking, err := r.Tickets.CountBlockingByAsset(ctx, a.ID, e.clock.Now())
	if err != nil {
		return "", err
	}
	if blocking > 0 {
		want = asset.StatusMaintenance
	} else {
		holding, err := r.Loans.CountHolding(ctx, a.ID)
		if err != nil {
			return "", err
		}
		if holding > 0 {
			want = asset.StatusLoaned
		}
	}

	if a.Status == want {
		return want, nil
	}
	from := a.Status
	a.Status = want
	if err := r.Assets.Save(ctx, a); err != nil {
		return "", err
	}
	e.log.Info().
		Uint64("asset_id", a.ID).
		Str("from", string(from)).
		Str("to", string(want)).
		Msg("asset status synchronized")
	return want, nil
}

func (e *Engine) HasPendingMaintenanceTickets(ctx context.Context, assetID uint64) (bool, error) {
	n, err := e.reads.Tickets.CountPendingByAsset(ctx, assetID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
