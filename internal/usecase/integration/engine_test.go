package integration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ictloan-backend/internal/adapter/repository/gormrepo"
	"ictloan-backend/internal/domain/asset"
	domainIntegration "ictloan-backend/internal/domain/integration"
	"ictloan-backend/internal/domain/loan"
	domainNotification "ictloan-backend/internal/domain/notification"
	"ictloan-backend/internal/domain/ticket"
	"ictloan-backend/internal/testutil/notifymock"
	"ictloan-backend/internal/testutil/sqlitedb"
	"ictloan-backend/internal/usecase/integration"
	"ictloan-backend/internal/usecase/notification"
	"ictloan-backend/pkg/clock"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	clock  *clock.Fake
	gw     *notifymock.Gateway
	engine *integration.Engine
	cat    *asset.Category
}

type spyCalendars struct{ ids []uint64 }

func (s *spyCalendars) InvalidateCalendars(_ context.Context, ids ...uint64) {
	s.ids = append(s.ids, ids...)
}

func newFixture(t *testing.T) (*fixture, *spyCalendars) {
	t.Helper()
	db := sqlitedb.Open(t)
	clk := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	gw := &notifymock.Gateway{}
	reads := gormrepo.Repos(db)
	disp := notification.NewDispatcher(reads.Outbox, gw, clk, zerolog.Nop(), notification.Options{})
	cals := &spyCalendars{}
	eng := integration.NewEngine(gormrepo.NewGormUoW(db), reads, clk, zerolog.Nop(),
		integration.Policy{PreventiveLoanThreshold: 10, MaintenanceInterval: 90 * 24 * time.Hour}, cals, disp)
	return &fixture{db: db, clock: clk, gw: gw, engine: eng, cat: sqlitedb.Category(t, db, "LAPTOP", 14)}, cals
}

func (f *fixture) reload(t *testing.T, id uint64) *asset.Asset {
	t.Helper()
	a, err := gormrepo.NewAssetRepository(f.db).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload asset: %v", err)
	}
	return a
}

func TestEngine_CreateMaintenanceTicket(t *testing.T) {
	f, cals := newFixture(t)
	ctx := context.Background()
	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
	app := sqlitedb.Application(t, f.db, loan.StatusReturned, sqlitedb.Day(2025, 5, 1), sqlitedb.Day(2025, 5, 3), a.ID)

	dto, err := f.engine.CreateMaintenanceTicket(ctx, a.ID, app.ApplicationNumber, integration.DamageData{
		ConditionAfter: asset.ConditionDamaged,
		DamageReport:   "Cracked screen",
	})
	if err != nil {
		t.Fatalf("CreateMaintenanceTicket: %v", err)
	}
	if dto.Priority != ticket.PriorityHigh || dto.AssetID != a.ID || dto.RelatedLoanApplicationID == nil || *dto.RelatedLoanApplicationID != app.ID {
		t.Fatalf("unexpected ticket %+v", dto)
	}

	got := f.reload(t, a.ID)
	if got.Status != asset.StatusMaintenance || got.MaintenanceTicketsCount != 1 || got.Condition != asset.ConditionDamaged {
		t.Fatalf("asset not updated: %+v", got)
	}

	reloaded, _ := gormrepo.NewLoanRepository(f.db).GetByApplicationNumber(ctx, app.ApplicationNumber)
	if !reloaded.MaintenanceRequired || len(reloaded.RelatedTicketIDs) != 1 || reloaded.RelatedTicketIDs[0] != dto.ID {
		t.Fatalf("application not linked: required=%v ids=%v", reloaded.MaintenanceRequired, reloaded.RelatedTicketIDs)
	}

	recs, _ := gormrepo.NewIntegrationRepository(f.db).ListByTicket(ctx, dto.ID)
	if len(recs) != 1 || recs[0].IntegrationType != domainIntegration.TypeAssetDamageReport {
		t.Fatalf("integration record missing: %+v", recs)
	}

	if kinds := f.gw.Kinds(); len(kinds) != 1 || kinds[0] != domainNotification.KindMaintenance {
		t.Fatalf("want one maintenance notification, got %v", kinds)
	}
	if len(cals.ids) != 1 || cals.ids[0] != a.ID {
		t.Fatalf("calendar not invalidated: %v", cals.ids)
	}

	// a second damage ticket on the same asset increments by exactly one more
	if _, err := f.engine.CreateMaintenanceTicket(ctx, a.ID, app.ApplicationNumber, integration.DamageData{DamageReport: "Loose hinge"}); err != nil {
		t.Fatal(err)
	}
	if got := f.reload(t, a.ID); got.MaintenanceTicketsCount != 2 {
		t.Fatalf("want counter 2, got %d", got.MaintenanceTicketsCount)
	}
}

func TestEngine_CreateMaintenanceTicket_UnknownApplication(t *testing.T) {
	f, _ := newFixture(t)
	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
	_, err := f.engine.CreateMaintenanceTicket(context.Background(), a.ID, "LA-missing", integration.DamageData{})
	if !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("want loan.ErrNotFound, got %v", err)
	}
	if got := f.reload(t, a.ID); got.Status != asset.StatusAvailable || got.MaintenanceTicketsCount != 0 {
		t.Fatalf("asset must be untouched: %+v", got)
	}
}

func TestEngine_CreateMaintenanceTicket_RejectsMismatch(t *testing.T) {
	tests := []struct {
		name    string
		status  loan.Status
		foreign bool
		wantErr error
	}{
		{"asset not on the application", loan.StatusReturned, true, asset.ErrNotFound},
		{"application still under review", loan.StatusUnderReview, false, loan.ErrInvalidStateTransition},
		{"application approved but not issued", loan.StatusApproved, false, loan.ErrInvalidStateTransition},
		{"application rejected", loan.StatusRejected, false, loan.ErrInvalidStateTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, cals := newFixture(t)
			ctx := context.Background()
			onLoan := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
			target := onLoan
			if tt.foreign {
				target = sqlitedb.Asset(t, f.db, f.cat.ID, "LT-002")
			}
			app := sqlitedb.Application(t, f.db, tt.status, sqlitedb.Day(2025, 5, 1), sqlitedb.Day(2025, 5, 3), onLoan.ID)

			_, err := f.engine.CreateMaintenanceTicket(ctx, target.ID, app.ApplicationNumber, integration.DamageData{
				ConditionAfter: asset.ConditionDamaged,
				DamageReport:   "Cracked screen",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if got := f.reload(t, target.ID); got.Status != asset.StatusAvailable || got.MaintenanceTicketsCount != 0 || got.Condition == asset.ConditionDamaged {
				t.Fatalf("asset must be untouched: %+v", got)
			}
			reloaded, _ := gormrepo.NewLoanRepository(f.db).GetByApplicationNumber(ctx, app.ApplicationNumber)
			if reloaded.MaintenanceRequired || len(reloaded.RelatedTicketIDs) != 0 {
				t.Fatalf("application must not be linked: required=%v ids=%v", reloaded.MaintenanceRequired, reloaded.RelatedTicketIDs)
			}
			var n int64
			f.db.Model(&ticket.Ticket{}).Count(&n)
			if n != 0 || len(f.gw.Kinds()) != 0 || len(cals.ids) != 0 {
				t.Fatalf("no side effects expected: tickets=%d kinds=%v invalidated=%v", n, f.gw.Kinds(), cals.ids)
			}
		})
	}
}

func TestEngine_SyncAssetStatus(t *testing.T) {
	tests := []struct {
		name        string
		start       asset.Status
		openTicket  bool
		futureOnly  bool
		holdingLoan bool
		want        asset.Status
	}{
		{"nothing", asset.StatusMaintenance, false, false, false, asset.StatusAvailable},
		{"holding loan", asset.StatusAvailable, false, false, true, asset.StatusLoaned},
		{"open ticket", asset.StatusAvailable, true, false, false, asset.StatusMaintenance},
		{"ticket beats loan", asset.StatusLoaned, true, false, true, asset.StatusMaintenance},
		{"future scheduled ticket", asset.StatusAvailable, true, true, false, asset.StatusAvailable},
		{"retired untouched", asset.StatusRetired, true, false, true, asset.StatusRetired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, _ := newFixture(t)
			ctx := context.Background()
			a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
			a.Status = tc.start
			f.db.Save(a)

			if tc.openTicket {
				tk := &ticket.Ticket{TicketNumber: "MT-1", Subject: "s", Category: ticket.CategoryMaintenance,
					Priority: ticket.PriorityHigh, Status: ticket.StatusOpen, AssetID: &a.ID}
				if tc.futureOnly {
					when := f.clock.Now().Add(72 * time.Hour)
					tk.ScheduledFor = &when
				}
				if err := f.db.Create(tk).Error; err != nil {
					t.Fatal(err)
				}
			}
			if tc.holdingLoan {
				sqlitedb.Application(t, f.db, loan.StatusInUse, sqlitedb.Day(2025, 5, 30), sqlitedb.Day(2025, 6, 5), a.ID)
			}

			got, err := f.engine.SyncAssetStatus(ctx, a.ID)
			if err != nil {
				t.Fatalf("SyncAssetStatus: %v", err)
			}
			if got != tc.want || f.reload(t, a.ID).Status != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEngine_SyncAssetStatus_Unknown(t *testing.T) {
	f, _ := newFixture(t)
	if _, err := f.engine.SyncAssetStatus(context.Background(), 404); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("want asset.ErrNotFound, got %v", err)
	}
}

func TestEngine_CompleteMaintenanceTicket(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()
	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
	app := sqlitedb.Application(t, f.db, loan.StatusReturned, sqlitedb.Day(2025, 5, 1), sqlitedb.Day(2025, 5, 3), a.ID)
	dto, err := f.engine.CreateMaintenanceTicket(ctx, a.ID, app.ApplicationNumber, integration.DamageData{ConditionAfter: asset.ConditionDamaged})
	if err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(48 * time.Hour)
	done, err := f.engine.CompleteMaintenanceTicket(ctx, dto.ID, integration.CompletionInput{
		ResolutionNotes: "Screen replaced",
		Condition:       asset.ConditionGood,
		ResolvedBy:      "tech@example.gov.my",
	})
	if err != nil {
		t.Fatalf("CompleteMaintenanceTicket: %v", err)
	}
	if done.Status != ticket.StatusResolved || done.ResolvedAt == nil {
		t.Fatalf("ticket not resolved: %+v", done)
	}

	got := f.reload(t, a.ID)
	if got.Condition != asset.ConditionGood || got.LastMaintenanceDate == nil || got.NextMaintenanceDate == nil {
		t.Fatalf("asset maintenance fields not updated: %+v", got)
	}
	if got.Status != asset.StatusMaintenance {
		t.Fatalf("completion must not resync status, got %s", got.Status)
	}

	recs, _ := gormrepo.NewIntegrationRepository(f.db).ListByTicket(ctx, dto.ID)
	if recs[0].ProcessedAt == nil || recs[0].ProcessedBy != "tech@example.gov.my" {
		t.Fatalf("integration record not stamped: %+v", recs[0])
	}

	if _, err := f.engine.CompleteMaintenanceTicket(ctx, dto.ID, integration.CompletionInput{}); !errors.Is(err, ticket.ErrAlreadyResolved) {
		t.Fatalf("want ErrAlreadyResolved, got %v", err)
	}

	// now the caller reconciles
	if st, _ := f.engine.SyncAssetStatus(ctx, a.ID); st != asset.StatusAvailable {
		t.Fatalf("after sync want available, got %s", st)
	}
}

func TestEngine_CompleteMaintenanceTicket_NoAsset(t *testing.T) {
	f, _ := newFixture(t)
	tk := &ticket.Ticket{TicketNumber: "HD-1", Subject: "printer", Category: ticket.CategoryMaintenance,
		Priority: ticket.PriorityLow, Status: ticket.StatusOpen}
	if err := f.db.Create(tk).Error; err != nil {
		t.Fatal(err)
	}
	_, err := f.engine.CompleteMaintenanceTicket(context.Background(), tk.ID, integration.CompletionInput{ResolutionNotes: "x"})
	if !errors.Is(err, ticket.ErrNoAssociatedAsset) {
		t.Fatalf("want ErrNoAssociatedAsset, got %v", err)
	}
	var reloaded ticket.Ticket
	f.db.First(&reloaded, tk.ID)
	if reloaded.Status != ticket.StatusOpen {
		t.Fatalf("ticket must stay open, got %s", reloaded.Status)
	}
}

func TestEngine_ScheduleMaintenance(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()
	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
	when := f.clock.Now().Add(7 * 24 * time.Hour)

	dto, err := f.engine.ScheduleMaintenance(ctx, a.ID, integration.ScheduleInput{ScheduledFor: when, Description: "Quarterly check"})
	if err != nil {
		t.Fatalf("ScheduleMaintenance: %v", err)
	}
	if dto.MaintenanceType != ticket.MaintenanceScheduled || dto.Priority != ticket.PriorityNormal {
		t.Fatalf("unexpected ticket %+v", dto)
	}
	got := f.reload(t, a.ID)
	if got.Status != asset.StatusAvailable {
		t.Fatalf("scheduling must not force maintenance, got %s", got.Status)
	}
	if got.NextMaintenanceDate == nil || !got.NextMaintenanceDate.Equal(when) {
		t.Fatalf("next maintenance date not set: %v", got.NextMaintenanceDate)
	}

	if _, err := f.engine.ScheduleMaintenance(ctx, a.ID, integration.ScheduleInput{}); !errors.Is(err, integration.ErrInvalidSchedule) {
		t.Fatalf("want ErrInvalidSchedule, got %v", err)
	}
}

func TestEngine_TriggerPreventiveMaintenance(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()
	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")

	dto, err := f.engine.TriggerPreventiveMaintenance(ctx, a.ID)
	if err != nil || dto != nil {
		t.Fatalf("fresh asset: want (nil, nil), got (%+v, %v)", dto, err)
	}

	a.TotalLoans = 10
	f.db.Save(a)
	dto, err = f.engine.TriggerPreventiveMaintenance(ctx, a.ID)
	if err != nil || dto == nil || dto.MaintenanceType != ticket.MaintenancePreventive {
		t.Fatalf("usage threshold: want preventive ticket, got (%+v, %v)", dto, err)
	}

	dto, err = f.engine.TriggerPreventiveMaintenance(ctx, a.ID)
	if err != nil || dto != nil {
		t.Fatalf("pending ticket should suppress a duplicate, got (%+v, %v)", dto, err)
	}
}

func TestEngine_TriggerPreventiveMaintenance_DateReached(t *testing.T) {
	f, _ := newFixture(t)
	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
	past := f.clock.Now().Add(-time.Hour)
	a.NextMaintenanceDate = &past
	f.db.Save(a)

	n, err := f.engine.TriggerPreventiveForAll(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("want 1 ticket opened, got %d (%v)", n, err)
	}
}

func TestEngine_StatsAndHistory(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	stats, err := f.engine.GetAssetMaintenanceStats(ctx, 404)
	if err != nil || stats.TotalTickets != 0 || stats.AverageResolutionHours != 0 {
		t.Fatalf("unknown asset should give zero stats, got %+v (%v)", stats, err)
	}
	hist, err := f.engine.GetUnifiedAssetHistory(ctx, 404)
	if err != nil || len(hist) != 0 {
		t.Fatalf("unknown asset should give empty history, got %v (%v)", hist, err)
	}
	has, err := f.engine.HasPendingMaintenanceTickets(ctx, 404)
	if err != nil || has {
		t.Fatalf("unknown asset has no pending tickets, got %v (%v)", has, err)
	}

	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
	app := sqlitedb.Application(t, f.db, loan.StatusReturned, sqlitedb.Day(2025, 5, 1), sqlitedb.Day(2025, 5, 3), a.ID)
	dto, err := f.engine.CreateMaintenanceTicket(ctx, a.ID, app.ApplicationNumber, integration.DamageData{DamageReport: "dent"})
	if err != nil {
		t.Fatal(err)
	}
	// tickets are created after the loan, force a visible gap for ordering
	f.db.Model(&ticket.Ticket{}).Where("id = ?", dto.ID).Update("created_at", app.CreatedAt.Add(time.Hour))

	hist, err = f.engine.GetUnifiedAssetHistory(ctx, a.ID)
	if err != nil || len(hist) != 2 {
		t.Fatalf("want 2 entries, got %v (%v)", hist, err)
	}
	if hist[0].Type != integration.HistoryMaintenance || hist[1].Type != integration.HistoryLoan {
		t.Fatalf("want newest first (maintenance, loan), got %s, %s", hist[0].Type, hist[1].Type)
	}

	has, _ = f.engine.HasPendingMaintenanceTickets(ctx, a.ID)
	if !has {
		t.Fatalf("want pending ticket")
	}
}

func TestEngine_GetAssetLifecycleReport(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()
	acquired := f.clock.Now().Add(-100 * 24 * time.Hour)
	a := sqlitedb.Asset(t, f.db, f.cat.ID, "LT-001")
	a.AcquiredAt = &acquired
	f.db.Save(a)

	app := sqlitedb.Application(t, f.db, loan.StatusCompleted, sqlitedb.Day(2025, 3, 1), sqlitedb.Day(2025, 3, 10), a.ID)
	issued := acquired.Add(10 * 24 * time.Hour)
	returned := issued.Add(25 * 24 * time.Hour)
	f.db.Model(&loan.Item{}).Where("loan_application_id = ?", app.ID).
		Updates(map[string]any{"issued_at": issued, "returned_at": returned})

	rep, err := f.engine.GetAssetLifecycleReport(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAssetLifecycleReport: %v", err)
	}
	if rep.Asset.AssetTag != "LT-001" || len(rep.Loans) != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.UtilizationRate.String() != "0.25" {
		t.Fatalf("want utilization 0.25, got %s", rep.UtilizationRate)
	}

	if _, err := f.engine.GetAssetLifecycleReport(ctx, 404); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("want asset.ErrNotFound, got %v", err)
	}
}
