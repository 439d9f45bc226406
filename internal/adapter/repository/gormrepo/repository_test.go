package gormrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ictloan-backend/internal/adapter/repository/gormrepo"
	"ictloan-backend/internal/domain/approval"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/outbox"
	"ictloan-backend/internal/domain/ticket"
	"ictloan-backend/internal/testutil/sqlitedb"
	"ictloan-backend/pkg/id"

	"gorm.io/datatypes"
)

func TestApprovalRepository_CreateAndList(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	repo := gormrepo.NewApprovalRepository(db)
	at := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

	second := &approval.Decision{DecisionID: id.NewID32(), LoanApplicationID: 1, Method: loan.ApprovalMethodPortal, Approved: true, DecidedAt: at.Add(time.Hour)}
	first := &approval.Decision{DecisionID: id.NewID32(), LoanApplicationID: 1, Method: loan.ApprovalMethodEmail, DecidedAt: at}
	other := &approval.Decision{DecisionID: id.NewID32(), LoanApplicationID: 2, Method: loan.ApprovalMethodEmail, DecidedAt: at}
	for _, d := range []*approval.Decision{second, first, other} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListByApplication(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].DecisionID != first.DecisionID || list[1].DecisionID != second.DecisionID {
		t.Fatalf("want decisions in decided_at order, got %+v", list)
	}

	got, err := repo.GetByDecisionID(ctx, second.DecisionID)
	if err != nil || !got.Approved || got.Method != loan.ApprovalMethodPortal {
		t.Fatalf("get: %+v %v", got, err)
	}
	if _, err := repo.GetByDecisionID(ctx, id.NewID32()); !errors.Is(err, approval.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestOutboxRepository_PendingLifecycle(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	repo := gormrepo.NewOutboxRepository(db)
	now := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

	mk := func(eventID, aggregate string, available time.Time) *outbox.Event {
		e := &outbox.Event{EventID: eventID, Kind: "approval_decision", AggregateType: "loan_application",
			AggregateID: aggregate, Payload: datatypes.JSON(`{}`), Status: outbox.StatusPending, AvailableAt: available}
		if err := repo.Enqueue(ctx, e); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		return e
	}
	a1 := mk("a1", "LA-1", now)
	a2 := mk("a2", "LA-1", now)
	b1 := mk("b1", "LA-2", now.Add(-time.Minute))
	mk("c1", "LA-3", now.Add(time.Hour))

	pending, err := repo.ListPending(ctx, now, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != a1.ID || pending[1].ID != b1.ID {
		t.Fatalf("want the head of each due aggregate in id order, got %+v", pending)
	}

	if err := repo.MarkSent(ctx, b1.ID, now); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := repo.MarkFailed(ctx, a1.ID, "broker down", now.Add(time.Minute), false); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	// a2 stays behind the failed a1 even though it is due
	if pending, _ = repo.ListPending(ctx, now.Add(30*time.Second), 10); len(pending) != 0 {
		t.Fatalf("want nothing deliverable, got %+v", pending)
	}
	pending, _ = repo.ListPending(ctx, now.Add(time.Minute), 10)
	if len(pending) != 1 || pending[0].ID != a1.ID || pending[0].Attempts != 1 || pending[0].LastError != "broker down" {
		t.Fatalf("unexpected retry row %+v", pending)
	}

	if err := repo.MarkFailed(ctx, a1.ID, "broker down", now, true); err != nil {
		t.Fatalf("mark dead: %v", err)
	}
	var dead outbox.Event
	if err := db.First(&dead, a1.ID).Error; err != nil || dead.Status != outbox.StatusDead || dead.Attempts != 2 {
		t.Fatalf("want dead after two attempts, got %+v %v", dead, err)
	}
	pending, _ = repo.ListPending(ctx, now.Add(time.Minute), 10)
	if len(pending) != 1 || pending[0].ID != a2.ID {
		t.Fatalf("a dead event must release its followers, got %+v", pending)
	}
}

func TestOutboxRepository_ClaimIsExclusive(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	repo := gormrepo.NewOutboxRepository(db)
	now := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

	e := &outbox.Event{EventID: "x1", Kind: "maintenance", AggregateType: "helpdesk_ticket", AggregateID: "MT-1",
		Payload: datatypes.JSON(`{}`), Status: outbox.StatusPending, AvailableAt: now}
	if err := repo.Enqueue(ctx, e); err != nil {
		t.Fatal(err)
	}

	ok, err := repo.Claim(ctx, e.ID, now, now.Add(time.Minute))
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ok, _ := repo.Claim(ctx, e.ID, now, now.Add(time.Minute)); ok {
		t.Fatal("second claim must lose")
	}
	if pending, _ := repo.ListPending(ctx, now.Add(30*time.Second), 10); len(pending) != 0 {
		t.Fatalf("claimed row listed again: %+v", pending)
	}

	later := now.Add(time.Minute)
	if ok, _ := repo.Claim(ctx, e.ID, later, later.Add(time.Minute)); !ok {
		t.Fatal("expired lease should be claimable")
	}
	if err := repo.MarkSent(ctx, e.ID, later); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.Claim(ctx, e.ID, later.Add(time.Hour), later.Add(2*time.Hour)); ok {
		t.Fatal("sent row must not be claimable")
	}
}

func TestTicketRepository_BlockingCounts(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	cat := sqlitedb.Category(t, db, "PROJECTOR", 7)
	a := sqlitedb.Asset(t, db, cat.ID, "PJ-1")
	repo := gormrepo.NewTicketRepository(db)
	asOf := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	future := asOf.AddDate(0, 0, 10)

	for i, tk := range []ticket.Ticket{
		{Status: ticket.StatusOpen},
		{Status: ticket.StatusInProgress, ScheduledFor: &future},
		{Status: ticket.StatusResolved},
	} {
		tk := tk
		tk.TicketNumber = id.NewNumber("MT", asOf) + string(rune('a'+i))
		tk.Subject = "service"
		tk.Category = ticket.CategoryMaintenance
		tk.AssetID = &a.ID
		if err := repo.Create(ctx, &tk); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pending, err := repo.CountPendingByAsset(ctx, a.ID)
	if err != nil || pending != 2 {
		t.Fatalf("want 2 pending, got %d %v", pending, err)
	}
	blocking, err := repo.CountBlockingByAsset(ctx, a.ID, asOf)
	if err != nil || blocking != 1 {
		t.Fatalf("future scheduled ticket must not block, got %d %v", blocking, err)
	}
	general := ticket.Ticket{TicketNumber: "GEN-1", Subject: "password reset", Category: "GENERAL",
		Status: ticket.StatusOpen, AssetID: &a.ID}
	if err := repo.Create(ctx, &general); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n, _ := repo.CountPendingByAsset(ctx, a.ID); n != 2 {
		t.Fatalf("non-maintenance tickets must not count, got %d", n)
	}
	list, err := repo.ListByAsset(ctx, a.ID)
	if err != nil || len(list) != 3 {
		t.Fatalf("want 3 maintenance tickets, got %d (%v)", len(list), err)
	}
	if _, err := repo.GetByIDForUpdate(ctx, 999); !errors.Is(err, ticket.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
