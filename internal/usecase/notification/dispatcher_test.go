package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ictloan-backend/internal/adapter/repository/gormrepo"
	domainNotification "ictloan-backend/internal/domain/notification"
	"ictloan-backend/internal/domain/outbox"
	"ictloan-backend/internal/testutil/notifymock"
	"ictloan-backend/internal/testutil/sqlitedb"
	"ictloan-backend/internal/usecase/notification"
	"ictloan-backend/pkg/clock"

	"github.com/rs/zerolog"
)

func TestDispatcher_DeliversInOrder(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	repo := gormrepo.NewOutboxRepository(db)

	kinds := []domainNotification.Kind{
		domainNotification.KindApprovalDecision,
		domainNotification.KindApprovalConfirmation,
		domainNotification.KindAssetPreparation,
	}
	for _, k := range kinds {
		if err := notification.Enqueue(ctx, repo, clk.Now(), k, notification.AggregateLoan, "LA-1", map[string]any{"application_number": "LA-1"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	gw := &notifymock.Gateway{}
	d := notification.NewDispatcher(repo, gw, clk, zerolog.Nop(), notification.Options{})
	n, err := d.DrainOnce(ctx)
	if err != nil || n != 3 {
		t.Fatalf("DrainOnce: sent=%d err=%v", n, err)
	}
	got := gw.Kinds()
	for i := range kinds {
		if got[i] != kinds[i] {
			t.Fatalf("order mismatch: want %v, got %v", kinds, got)
		}
	}

	// nothing left
	if n, _ := d.DrainOnce(ctx); n != 0 {
		t.Fatalf("second drain should be empty, sent=%d", n)
	}
}

func TestDispatcher_FailureRetriesThenDies(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	repo := gormrepo.NewOutboxRepository(db)

	_ = notification.Enqueue(ctx, repo, clk.Now(), domainNotification.KindApprovalDecision, notification.AggregateLoan, "LA-1", struct{}{})
	_ = notification.Enqueue(ctx, repo, clk.Now(), domainNotification.KindApprovalConfirmation, notification.AggregateLoan, "LA-1", struct{}{})

	down := errors.New("smtp down")
	gw := &notifymock.Gateway{FailFn: func(domainNotification.Kind) error { return down }}
	d := notification.NewDispatcher(repo, gw, clk, zerolog.Nop(), notification.Options{MaxAttempts: 2, BaseBackoff: time.Minute})

	if n, err := d.DrainOnce(ctx); err != nil || n != 0 {
		t.Fatalf("first drain: sent=%d err=%v", n, err)
	}

	var events []outbox.Event
	db.Order("id").Find(&events)
	if events[0].Attempts != 1 || events[0].Status != outbox.StatusPending {
		t.Fatalf("first event should be retried: %+v", events[0])
	}
	if events[1].Attempts != 0 {
		t.Fatalf("second event of same application must wait behind the first: %+v", events[1])
	}

	clk.Advance(time.Minute)
	gw.FailFn = func(k domainNotification.Kind) error {
		if k == domainNotification.KindApprovalDecision {
			return down
		}
		return nil
	}
	if _, err := d.DrainOnce(ctx); err != nil {
		t.Fatal(err)
	}
	db.Order("id").Find(&events)
	if events[0].Status != outbox.StatusDead || events[0].Attempts != 2 {
		t.Fatalf("first event should be dead after max attempts: %+v", events[0])
	}

	// the dead event no longer blocks the rest
	if n, _ := d.DrainOnce(ctx); n != 1 {
		t.Fatalf("confirmation should go out once the decision is dead, sent=%d", n)
	}
}

func TestEnqueue_RejectsUnknownKind(t *testing.T) {
	db := sqlitedb.Open(t)
	err := notification.Enqueue(context.Background(), gormrepo.NewOutboxRepository(db), time.Now(), "bogus", notification.AggregateLoan, "x", nil)
	if err == nil {
		t.Fatalf("want error for unknown kind")
	}
}

func TestDispatcher_FailedEventHoldsBackItsApplicationAcrossDrains(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	repo := gormrepo.NewOutboxRepository(db)

	for _, k := range []domainNotification.Kind{
		domainNotification.KindApprovalDecision,
		domainNotification.KindApprovalConfirmation,
		domainNotification.KindAssetPreparation,
	} {
		if err := notification.Enqueue(ctx, repo, clk.Now(), k, notification.AggregateLoan, "LA-1", struct{}{}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := notification.Enqueue(ctx, repo, clk.Now(), domainNotification.KindMaintenance, notification.AggregateTicket, "MT-1", struct{}{}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	failed := false
	gw := &notifymock.Gateway{FailFn: func(k domainNotification.Kind) error {
		if k == domainNotification.KindApprovalDecision && !failed {
			failed = true
			return errors.New("smtp down")
		}
		return nil
	}}
	d := notification.NewDispatcher(repo, gw, clk, zerolog.Nop(), notification.Options{BaseBackoff: time.Minute})

	if n, err := d.DrainOnce(ctx); err != nil || n != 1 {
		t.Fatalf("first drain should only deliver the other aggregate: sent=%d err=%v", n, err)
	}
	clk.Advance(5 * time.Second)
	if n, err := d.DrainOnce(ctx); err != nil || n != 0 {
		t.Fatalf("confirmation must wait for the decision: sent=%d err=%v", n, err)
	}
	clk.Advance(time.Minute)
	if n, err := d.DrainOnce(ctx); err != nil || n != 3 {
		t.Fatalf("retry drain: sent=%d err=%v", n, err)
	}

	want := []domainNotification.Kind{
		domainNotification.KindMaintenance,
		domainNotification.KindApprovalDecision,
		domainNotification.KindApprovalConfirmation,
		domainNotification.KindAssetPreparation,
	}
	got := gw.Kinds()
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestDispatcher_SkipsEventsClaimedElsewhere(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	repo := gormrepo.NewOutboxRepository(db)

	_ = notification.Enqueue(ctx, repo, clk.Now(), domainNotification.KindApprovalDecision, notification.AggregateLoan, "LA-1", struct{}{})
	_ = notification.Enqueue(ctx, repo, clk.Now(), domainNotification.KindApprovalConfirmation, notification.AggregateLoan, "LA-1", struct{}{})

	var head outbox.Event
	if err := db.Order("id").First(&head).Error; err != nil {
		t.Fatal(err)
	}
	// another process holds the decision
	if ok, err := repo.Claim(ctx, head.ID, clk.Now(), clk.Now().Add(time.Minute)); err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}

	gw := &notifymock.Gateway{}
	d := notification.NewDispatcher(repo, gw, clk, zerolog.Nop(), notification.Options{})
	if n, err := d.DrainOnce(ctx); err != nil || n != 0 || len(gw.Calls) != 0 {
		t.Fatalf("claimed event delivered twice: sent=%d err=%v calls=%v", n, err, gw.Kinds())
	}

	// the holder died; its lease runs out
	clk.Advance(2 * time.Minute)
	if n, err := d.DrainOnce(ctx); err != nil || n != 2 {
		t.Fatalf("expired lease should be taken over: sent=%d err=%v", n, err)
	}
	if got := gw.Kinds(); got[0] != domainNotification.KindApprovalDecision {
		t.Fatalf("unexpected order %v", got)
	}
}
