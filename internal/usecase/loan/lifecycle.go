package loan

import (
	"context"
	"fmt"
	"time"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/uow"
	"ictloan-backend/internal/usecase/availability"
	"ictloan-backend/internal/usecase/integration"
)

// Issue hands approved assets to the applicant. Availability is checked
// again under the asset locks so two approvals cannot both go out.
func (u *Usecase) Issue(ctx context.Context, applicationNumber string, items []IssueItem) (*LoanDTO, error) {
	byAsset := make(map[uint64]IssueItem, len(items))
	for _, it := range items {
		if it.Condition != "" && !it.Condition.Valid() {
			return nil, asset.ErrInvalidCondition
		}
		byAsset[it.AssetID] = it
	}

	var out *loan.Application
	err := u.uow.WithinLoanTx(ctx, applicationNumber, func(r uow.Repos, a *loan.Application) error {
		now := u.clock.Now()
		if err := transition(a, loan.StatusIssued, now); err != nil {
			return err
		}
		ids := a.AssetIDs()
		locked, err := r.Assets.GetByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(locked) != len(ids) {
			return asset.ErrNotFound
		}
		free, err := availability.Check(ctx, r.Assets, r.Loans, ids, a.Range(), a.ID)
		if err != nil {
			return err
		}
		for _, assetID := range ids {
			if !free[assetID] {
				return fmt.Errorf("%w: asset %d", loan.ErrAssetUnavailable, assetID)
			}
		}

		assets := indexAssets(locked)
		for i := range a.Items {
			it := &a.Items[i]
			as := assets[it.AssetID]
			in := byAsset[it.AssetID]
			cond := in.Condition
			if cond == "" {
				cond = as.Condition
			}
			it.ConditionBefore = string(cond)
			it.AccessoriesIssued = in.Accessories
			it.IssuedAt = &now
			if err := r.Loans.SaveItem(ctx, it); err != nil {
				return err
			}
		}
		for _, as := range assets {
			as.Status = asset.StatusLoaned
			as.TotalLoans++
			if err := r.Assets.Save(ctx, as); err != nil {
				return err
			}
		}

		a.IssuedAt = &now
		if err := r.Loans.Save(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().Str("application_number", out.ApplicationNumber).Msg("loan issued")
	u.afterCommit(ctx, out.AssetIDs()...)
	return toDTO(out), nil
}

func (u *Usecase) MarkInUse(ctx context.Context, applicationNumber string) (*LoanDTO, error) {
	return u.simpleTransition(ctx, applicationNumber, loan.StatusInUse, nil)
}

// MarkOverdue flags an in-use loan whose end date has passed.
func (u *Usecase) MarkOverdue(ctx context.Context, applicationNumber string) (*LoanDTO, error) {
	return u.simpleTransition(ctx, applicationNumber, loan.StatusOverdue, func(a *loan.Application, now time.Time) error {
		if !pastEnd(a, now) {
			return loan.ErrNotOverdue
		}
		return nil
	})
}

// MarkOverdueSweep flags every loan that is past its end date.
func (u *Usecase) MarkOverdueSweep(ctx context.Context) (int, error) {
	today, _ := loan.NewDateRange(u.clock.Now(), u.clock.Now())
	apps, err := u.reads.Loans.ListOverdue(ctx, today.Start)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range apps {
		if _, err := u.MarkOverdue(ctx, a.ApplicationNumber); err != nil {
			u.log.Error().Err(err).Str("application_number", a.ApplicationNumber).Msg("mark overdue failed")
			continue
		}
		n++
	}
	return n, nil
}

func (u *Usecase) Complete(ctx context.Context, applicationNumber string) (*LoanDTO, error) {
	return u.simpleTransition(ctx, applicationNumber, loan.StatusCompleted, func(a *loan.Application, now time.Time) error {
		a.CompletedAt = &now
		return nil
	})
}

func (u *Usecase) simpleTransition(ctx context.Context, applicationNumber string, to loan.Status, guard func(a *loan.Application, now time.Time) error) (*LoanDTO, error) {
	var out *loan.Application
	err := u.uow.WithinLoanTx(ctx, applicationNumber, func(r uow.Repos, a *loan.Application) error {
		now := u.clock.Now()
		if err := transition(a, to, now); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(a, now); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().
		Str("application_number", out.ApplicationNumber).
		Str("status", string(out.Status)).
		Msg("loan status changed")
	u.afterCommit(ctx, out.AssetIDs()...)
	return toDTO(out), nil
}

// Return records the assets coming back. Damaged items open maintenance
// tickets in the same transaction; every other asset is resynced.
func (u *Usecase) Return(ctx context.Context, applicationNumber string, items []ReturnItem, returnedBy string) (*LoanDTO, error) {
	byAsset := make(map[uint64]ReturnItem, len(items))
	for _, it := range items {
		if it.Condition != "" && !it.Condition.Valid() {
			return nil, asset.ErrInvalidCondition
		}
		byAsset[it.AssetID] = it
	}

	var out *loan.Application
	err := u.uow.WithinLoanTx(ctx, applicationNumber, func(r uow.Repos, a *loan.Application) error {
		now := u.clock.Now()
		if err := transition(a, loan.StatusReturned, now); err != nil {
			return err
		}
		locked, err := r.Assets.GetByIDsForUpdate(ctx, a.AssetIDs())
		if err != nil {
			return err
		}
		assets := indexAssets(locked)

		// saved first so the resync below no longer sees this loan as holding
		a.ReturnedAt = &now
		if err := r.Loans.Save(ctx, a); err != nil {
			return err
		}

		for i := range a.Items {
			it := &a.Items[i]
			in, reported := byAsset[it.AssetID]
			as, ok := assets[it.AssetID]
			if !ok {
				continue
			}
			if in.Condition == "" {
				in.Condition = as.Condition
			}
			it.ConditionAfter = string(in.Condition)
			it.AccessoriesReturned = in.Accessories
			it.DamageReport = in.DamageReport
			it.ReturnedAt = &now
			if err := r.Loans.SaveItem(ctx, it); err != nil {
				return err
			}

			if reported && in.Damaged() {
				if _, err := u.maintenance.OpenDamageTicket(ctx, r, as, a, integration.DamageData{
					ConditionAfter: in.Condition,
					DamageReport:   in.DamageReport,
					ReportedBy:     returnedBy,
				}); err != nil {
					return err
				}
				continue
			}
			as.Condition = in.Condition
			if err := r.Assets.Save(ctx, as); err != nil {
				return err
			}
			if _, err := u.maintenance.SyncAssetStatusTx(ctx, r, as); err != nil {
				return err
			}
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().
		Str("application_number", out.ApplicationNumber).
		Bool("maintenance_required", out.MaintenanceRequired).
		Str("returned_by", returnedBy).
		Msg("loan returned")
	u.afterCommit(ctx, out.AssetIDs()...)
	return toDTO(out), nil
}

func indexAssets(list []asset.Asset) map[uint64]*asset.Asset {
	out := make(map[uint64]*asset.Asset, len(list))
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out
}

func pastEnd(a *loan.Application, now time.Time) bool {
	today, _ := loan.NewDateRange(now, now)
	return today.Start.After(a.LoanEndDate)
}
