package gormrepo

import (
	"context"

	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// Repos builds repositories bound to db (a tx or the root handle).
func Repos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:        &LoanRepository{db: db},
		Approvals:    &ApprovalRepository{db: db},
		Assets:       &AssetRepository{db: db},
		Tickets:      &TicketRepository{db: db},
		Integrations: &IntegrationRepository{db: db},
		Outbox:       &OutboxRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, applicationNumber string, fn func(r uow.Repos, a *loan.Application) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		// lock the application row up-front to prevent races
		a, err := r.Loans.GetByApplicationNumberForUpdate(ctx, applicationNumber)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
