package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/ticket"
	"ictloan-backend/internal/domain/uow"
	"ictloan-backend/internal/usecase/approval"
	"ictloan-backend/internal/usecase/availability"
	"ictloan-backend/internal/usecase/integration"
	"ictloan-backend/pkg/clock"
	"ictloan-backend/pkg/id"

	"github.com/rs/zerolog"
)

// ApprovalRequester moves a submitted application under review.
type ApprovalRequester interface {
	RequestApprovalTx(ctx context.Context, r uow.Repos, a *loan.Application) (*approval.RequestDTO, error)
}

// MaintenanceLinker is the part of the integration engine used on return.
type MaintenanceLinker interface {
	OpenDamageTicket(ctx context.Context, r uow.Repos, a *asset.Asset, app *loan.Application, dmg integration.DamageData) (*ticket.Ticket, error)
	SyncAssetStatusTx(ctx context.Context, r uow.Repos, a *asset.Asset) (asset.Status, error)
}

type CalendarInvalidator interface {
	InvalidateCalendars(ctx context.Context, assetIDs ...uint64)
}

type Flusher interface {
	Flush(ctx context.Context)
}

type Usecase struct {
	uow         uow.UnitOfWork
	reads       uow.Repos
	approvals   ApprovalRequester
	maintenance MaintenanceLinker
	clock       clock.Clock
	log         zerolog.Logger
	calendars   CalendarInvalidator
	notifier    Flusher
}

func NewUsecase(tx uow.UnitOfWork, reads uow.Repos, approvals ApprovalRequester, maintenance MaintenanceLinker, clk clock.Clock, log zerolog.Logger, calendars CalendarInvalidator, notifier Flusher) *Usecase {
	return &Usecase{
		uow:         tx,
		reads:       reads,
		approvals:   approvals,
		maintenance: maintenance,
		clock:       clk,
		log:         log,
		calendars:   calendars,
		notifier:    notifier,
	}
}

// Create records a draft application with one item per requested asset.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if strings.TrimSpace(in.ApplicantName) == "" || strings.TrimSpace(in.ApplicantEmail) == "" {
		return nil, loan.ErrInvalidApplicant
	}
	r, err := loan.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	ids := uniqueIDs(in.AssetIDs)
	if len(ids) == 0 {
		return nil, loan.ErrNoItems
	}

	assets, err := u.reads.Assets.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(assets) != len(ids) {
		return nil, asset.ErrNotFound
	}
	for _, a := range assets {
		if a.Category != nil && a.Category.MaxLoanDays > 0 && r.Days() > a.Category.MaxLoanDays {
			return nil, fmt.Errorf("%w: %s allows %d days", loan.ErrLoanTooLong, a.Category.Name, a.Category.MaxLoanDays)
		}
	}

	now := u.clock.Now()
	app := &loan.Application{
		ApplicationNumber: id.NewNumber("LA", now),
		UserID:            in.UserID,
		ApplicantName:     strings.TrimSpace(in.ApplicantName),
		ApplicantEmail:    strings.TrimSpace(in.ApplicantEmail),
		ApplicantPhone:    in.ApplicantPhone,
		StaffID:           in.StaffID,
		ApplicantGrade:    in.ApplicantGrade,
		Purpose:           in.Purpose,
		LoanStartDate:     r.Start,
		LoanEndDate:       r.End,
		TotalValue:        in.TotalValue,
		Status:            loan.StatusDraft,
		StatusUpdatedAt:   now,
	}
	for _, assetID := range ids {
		app.Items = append(app.Items, loan.Item{AssetID: assetID, Quantity: 1})
	}
	if err := u.reads.Loans.Create(ctx, app); err != nil {
		return nil, err
	}

	u.log.Info().
		Str("application_number", app.ApplicationNumber).
		Int("assets", len(ids)).
		Msg("loan application created")
	return toDTO(app), nil
}

func (u *Usecase) Get(ctx context.Context, applicationNumber string) (*LoanDTO, error) {
	a, err := u.reads.Loans.GetByApplicationNumber(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

// Submit checks the requested dates are still free and hands the
// application to the approval workflow in the same transaction.
func (u *Usecase) Submit(ctx context.Context, applicationNumber string) (*LoanDTO, error) {
	var out *loan.Application
	err := u.uow.WithinLoanTx(ctx, applicationNumber, func(r uow.Repos, a *loan.Application) error {
		if err := transition(a, loan.StatusSubmitted, u.clock.Now()); err != nil {
			return err
		}
		conflicts, err := availability.Conflicts(ctx, r.Loans, a.AssetIDs(), a.Range(), a.ID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return fmt.Errorf("%w: asset %d booked by %s", loan.ErrAssetUnavailable,
				conflicts[0].AssetID, conflicts[0].ApplicationNumber)
		}
		if err := r.Loans.Save(ctx, a); err != nil {
			return err
		}
		if _, err := u.approvals.RequestApprovalTx(ctx, r, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.afterCommit(ctx)
	return toDTO(out), nil
}

// transition applies one edge of the state machine.
func transition(a *loan.Application, to loan.Status, now time.Time) error {
	if !loan.CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s -> %s", loan.ErrInvalidStateTransition, a.Status, to)
	}
	a.Status = to
	a.StatusUpdatedAt = now
	return nil
}

func (u *Usecase) afterCommit(ctx context.Context, assetIDs ...uint64) {
	if u.calendars != nil && len(assetIDs) > 0 {
		u.calendars.InvalidateCalendars(ctx, assetIDs...)
	}
	if u.notifier != nil {
		u.notifier.Flush(ctx)
	}
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok || v == 0 {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
