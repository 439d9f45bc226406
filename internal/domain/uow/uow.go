package uow

import (
	"context"

	"ictloan-backend/internal/domain/approval"
	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/integration"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/outbox"
	"ictloan-backend/internal/domain/ticket"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans        loan.Repository
	Approvals    approval.Repository
	Assets       asset.Repository
	Tickets      ticket.Repository
	Integrations integration.Repository
	Outbox       outbox.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application first, then pass it in
	WithinLoanTx(ctx context.Context, applicationNumber string, fn func(r Repos, a *loan.Application) error) error
}
