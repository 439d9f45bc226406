package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainApproval "ictloan-backend/internal/domain/approval"
	domainLoan "ictloan-backend/internal/domain/loan"
	domainNotification "ictloan-backend/internal/domain/notification"
	"ictloan-backend/internal/domain/uow"
	"ictloan-backend/internal/usecase/availability"
	"ictloan-backend/internal/usecase/notification"
	"ictloan-backend/pkg/clock"
	"ictloan-backend/pkg/id"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ApprovalMatrix names the approver for an applicant grade and loan value.
type ApprovalMatrix interface {
	DetermineApprover(ctx context.Context, grade int, value decimal.Decimal) (domainNotification.Approver, error)
}

type CalendarInvalidator interface {
	InvalidateCalendars(ctx context.Context, assetIDs ...uint64)
}

type Flusher interface {
	Flush(ctx context.Context)
}

type Config struct {
	TokenTTL         time.Duration
	MinApproverGrade int
	BaseURL          string
	AdminEmail       string
}

type Usecase struct {
	uow       uow.UnitOfWork
	approvals domainApproval.Repository
	matrix    ApprovalMatrix
	clock     clock.Clock
	log       zerolog.Logger
	cfg       Config
	calendars CalendarInvalidator
	notifier  Flusher
}

// NewUsecase: approvals is the non-transactional repo used for the audit
// record written after commit.
func NewUsecase(tx uow.UnitOfWork, approvals domainApproval.Repository, matrix ApprovalMatrix, clk clock.Clock, log zerolog.Logger, cfg Config, calendars CalendarInvalidator, notifier Flusher) *Usecase {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.MinApproverGrade <= 0 {
		cfg.MinApproverGrade = 41
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Usecase{
		uow:       tx,
		approvals: approvals,
		matrix:    matrix,
		clock:     clk,
		log:       log,
		cfg:       cfg,
		calendars: calendars,
		notifier:  notifier,
	}
}

// SendApprovalRequest moves a submitted application under review and sends
// the approver a single-use token.
func (u *Usecase) SendApprovalRequest(ctx context.Context, applicationNumber string) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinLoanTx(ctx, applicationNumber, func(r uow.Repos, a *domainLoan.Application) error {
		var err error
		dto, err = u.RequestApprovalTx(ctx, r, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.flush(ctx)
	return dto, nil
}

// RequestApprovalTx is SendApprovalRequest inside the caller's transaction.
func (u *Usecase) RequestApprovalTx(ctx context.Context, r uow.Repos, a *domainLoan.Application) (*RequestDTO, error) {
	if !domainLoan.CanTransition(a.Status, domainLoan.StatusUnderReview) {
		return nil, domainLoan.ErrInvalidStateTransition
	}
	approver, err := u.matrix.DetermineApprover(ctx, a.ApplicantGrade, a.TotalValue)
	if err != nil {
		return nil, fmt.Errorf("determine approver: %w", err)
	}
	token, err := id.NewToken()
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	expires := now.Add(u.cfg.TokenTTL)
	a.ApproverName = approver.Name
	a.ApproverEmail = approver.Email
	a.ApprovalToken = &token
	a.ApprovalTokenExpiresAt = &expires
	a.Status = domainLoan.StatusUnderReview
	a.StatusUpdatedAt = now
	if err := r.Loans.Save(ctx, a); err != nil {
		return nil, err
	}

	err = notification.Enqueue(ctx, r.Outbox, now, domainNotification.KindApprovalRequest,
		notification.AggregateLoan, a.ApplicationNumber, domainNotification.ApprovalRequest{
			ApplicationNumber: a.ApplicationNumber,
			ApplicantName:     a.ApplicantName,
			ApplicantEmail:    a.ApplicantEmail,
			Approver:          approver,
			Token:             token,
			ExpiresAt:         expires,
			ApproveURL:        u.cfg.BaseURL + "/approvals/email/" + token + "/approve",
			DeclineURL:        u.cfg.BaseURL + "/approvals/email/" + token + "/decline",
			PortalURL:         u.cfg.BaseURL + "/portal/approvals/" + a.ApplicationNumber,
			LoanStartDate:     a.LoanStartDate,
			LoanEndDate:       a.LoanEndDate,
		})
	if err != nil {
		return nil, err
	}

	u.log.Info().
		Str("application_number", a.ApplicationNumber).
		Str("approver_email", approver.Email).
		Time("token_expires_at", expires).
		Msg("approval requested")
	return &RequestDTO{
		ApplicationNumber: a.ApplicationNumber,
		Status:            a.Status,
		ApproverName:      approver.Name,
		ApproverEmail:     approver.Email,
		TokenExpiresAt:    expires,
	}, nil
}

// ProcessEmailApproval decides through the token channel. Tokens are single
// use: a replay finds no application and fails with ErrInvalidToken.
func (u *Usecase) ProcessEmailApproval(ctx context.Context, token string, approved bool, remarks string) (*DecisionDTO, error) {
	var (
		app *domainLoan.Application
		dto *DecisionDTO
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Loans.GetByTokenForUpdate(ctx, token)
		if errors.Is(err, domainLoan.ErrNotFound) {
			return domainLoan.ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if a.ApprovalTokenExpiresAt == nil || u.clock.Now().After(*a.ApprovalTokenExpiresAt) {
			return domainLoan.ErrExpiredToken
		}
		dto, err = u.decide(ctx, r, a, decision{
			approved:      approved,
			remarks:       remarks,
			method:        domainLoan.ApprovalMethodEmail,
			approverName:  a.ApproverName,
			approverEmail: a.ApproverEmail,
		})
		app = a
		return err
	})
	if err != nil {
		return nil, err
	}
	u.afterDecision(ctx, app, dto, app.ApproverEmail)
	return dto, nil
}

// ProcessPortalApproval decides through the authenticated portal. The
// actor's grade is checked before anything is read or locked.
func (u *Usecase) ProcessPortalApproval(ctx context.Context, applicationNumber string, actor Actor, approved bool, remarks string) (*DecisionDTO, error) {
	if actor.Grade < u.cfg.MinApproverGrade {
		u.log.Warn().
			Str("application_number", applicationNumber).
			Str("actor_id", actor.ID).
			Int("actor_grade", actor.Grade).
			Msg("portal approval refused")
		return nil, domainLoan.ErrUnauthorized
	}

	var (
		app *domainLoan.Application
		dto *DecisionDTO
	)
	err := u.uow.WithinLoanTx(ctx, applicationNumber, func(r uow.Repos, a *domainLoan.Application) error {
		var err error
		dto, err = u.decide(ctx, r, a, decision{
			approved:      approved,
			remarks:       remarks,
			method:        domainLoan.ApprovalMethodPortal,
			approverName:  actor.Name,
			approverEmail: actor.Email,
		})
		app = a
		return err
	})
	if err != nil {
		return nil, err
	}
	u.afterDecision(ctx, app, dto, actor.Email)
	return dto, nil
}

// decide applies the verdict and queues its notifications in order:
// decision, confirmation, then asset preparation on approval only.
func (u *Usecase) decide(ctx context.Context, r uow.Repos, a *domainLoan.Application, d decision) (*DecisionDTO, error) {
	target := domainLoan.StatusRejected
	if d.approved {
		target = domainLoan.StatusApproved
	}
	if a.Status != domainLoan.StatusUnderReview || !domainLoan.CanTransition(a.Status, target) {
		return nil, domainLoan.ErrInvalidStateTransition
	}

	if d.approved {
		// serialize with other writers on these assets, then re-check
		ids := a.AssetIDs()
		if _, err := r.Assets.GetByIDsForUpdate(ctx, ids); err != nil {
			return nil, err
		}
		conflicts, err := availability.Conflicts(ctx, r.Loans, ids, a.Range(), a.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, fmt.Errorf("%w: asset %d booked by %s", domainLoan.ErrAssetUnavailable,
				conflicts[0].AssetID, conflicts[0].ApplicationNumber)
		}
	}

	now := u.clock.Now()
	a.Status = target
	a.StatusUpdatedAt = now
	a.ApprovalMethod = d.method
	a.ApprovalRemarks = d.remarks
	a.ApprovalToken = nil
	a.ApprovalTokenExpiresAt = nil
	if d.approved {
		a.ApprovedAt = &now
		a.ApprovedBy = d.approverName
	} else {
		a.RejectedAt = &now
		a.RejectedReason = d.remarks
	}
	if err := r.Loans.Save(ctx, a); err != nil {
		return nil, err
	}

	approver := domainNotification.Approver{Name: d.approverName, Email: d.approverEmail}
	if err := notification.Enqueue(ctx, r.Outbox, now, domainNotification.KindApprovalDecision,
		notification.AggregateLoan, a.ApplicationNumber, domainNotification.ApprovalDecision{
			ApplicationNumber: a.ApplicationNumber,
			ApplicantName:     a.ApplicantName,
			ApplicantEmail:    a.ApplicantEmail,
			Approver:          approver,
			Approved:          d.approved,
			Method:            string(d.method),
			Remarks:           d.remarks,
		}); err != nil {
		return nil, err
	}
	if err := notification.Enqueue(ctx, r.Outbox, now, domainNotification.KindApprovalConfirmation,
		notification.AggregateLoan, a.ApplicationNumber, domainNotification.ApprovalConfirmation{
			ApplicationNumber: a.ApplicationNumber,
			ApplicantName:     a.ApplicantName,
			ApplicantEmail:    a.ApplicantEmail,
			Approved:          d.approved,
		}); err != nil {
		return nil, err
	}
	if d.approved {
		if err := notification.Enqueue(ctx, r.Outbox, now, domainNotification.KindAssetPreparation,
			notification.AggregateLoan, a.ApplicationNumber, domainNotification.AssetPreparation{
				ApplicationNumber: a.ApplicationNumber,
				ApplicantName:     a.ApplicantName,
				AssetIDs:          a.AssetIDs(),
				LoanStartDate:     a.LoanStartDate,
				LoanEndDate:       a.LoanEndDate,
				AdminEmail:        u.cfg.AdminEmail,
			}); err != nil {
			return nil, err
		}
	}

	return &DecisionDTO{
		ApplicationNumber: a.ApplicationNumber,
		Status:            a.Status,
		Approved:          d.approved,
		Method:            d.method,
		Remarks:           d.remarks,
		DecidedBy:         d.approverName,
		DecidedAt:         now,
	}, nil
}

func (u *Usecase) afterDecision(ctx context.Context, a *domainLoan.Application, dto *DecisionDTO, approverEmail string) {
	u.log.Info().
		Str("application_number", a.ApplicationNumber).
		Str("status", string(dto.Status)).
		Str("approval_method", string(dto.Method)).
		Str("decided_by", dto.DecidedBy).
		Msg("loan application decided")

	if err := u.LogApprovalDecision(ctx, a, dto, approverEmail); err != nil {
		u.log.Error().Err(err).
			Str("application_number", a.ApplicationNumber).
			Msg("approval decision audit record not written")
	}
	if u.calendars != nil {
		u.calendars.InvalidateCalendars(ctx, a.AssetIDs()...)
	}
	u.flush(ctx)
}

// LogApprovalDecision stores who decided and how. It runs outside the
// transition so the audit trail never blocks a decision.
func (u *Usecase) LogApprovalDecision(ctx context.Context, a *domainLoan.Application, dto *DecisionDTO, approverEmail string) error {
	return u.approvals.Create(ctx, &domainApproval.Decision{
		DecisionID:        id.NewID32(),
		LoanApplicationID: a.ID,
		Method:            dto.Method,
		Approved:          dto.Approved,
		Remarks:           dto.Remarks,
		ApproverName:      dto.DecidedBy,
		ApproverEmail:     approverEmail,
		DecidedAt:         dto.DecidedAt,
	})
}

func (u *Usecase) flush(ctx context.Context) {
	if u.notifier != nil {
		u.notifier.Flush(ctx)
	}
}
