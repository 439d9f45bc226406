package uowmock

import (
	"context"
	"errors"

	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, applicationNumber string, fn func(r uow.Repos, a *loan.Application) error) error
}

// Passthrough runs every body directly against repos, loading the
// application through repos.Loans for WithinLoanTx.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinLoanTxFn: func(ctx context.Context, number string, fn func(uow.Repos, *loan.Application) error) error {
			a, err := repos.Loans.GetByApplicationNumberForUpdate(ctx, number)
			if err != nil {
				return err
			}
			return fn(repos, a)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinLoanTx(ctx context.Context, applicationNumber string, fn func(r uow.Repos, a *loan.Application) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, applicationNumber, fn)
	}
	return errUnimplemented
}
