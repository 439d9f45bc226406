package gormrepo

import (
	"context"
	"errors"
	"time"

	loanDomain "ictloan-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, a *loanDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Save persists application columns only; items go through SaveItem.
func (r *LoanRepository) Save(ctx context.Context, a *loanDomain.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *LoanRepository) SaveItem(ctx context.Context, it *loanDomain.Item) error {
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *LoanRepository) GetByApplicationNumber(ctx context.Context, number string) (*loanDomain.Application, error) {
	return r.first(r.db.WithContext(ctx), "application_number = ?", number)
}

func (r *LoanRepository) GetByApplicationNumberForUpdate(ctx context.Context, number string) (*loanDomain.Application, error) {
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.first(q, "application_number = ?", number)
}

func (r *LoanRepository) GetByTokenForUpdate(ctx context.Context, token string) (*loanDomain.Application, error) {
	if token == "" {
		return nil, loanDomain.ErrNotFound
	}
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.first(q, "approval_token = ?", token)
}

func (r *LoanRepository) first(q *gorm.DB, where string, args ...any) (*loanDomain.Application, error) {
	var out loanDomain.Application
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where(where, args...).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const bookingColumns = "li.asset_id, la.id AS application_id, la.application_number, la.applicant_name, " +
	"la.staff_id, la.status, la.loan_start_date, la.loan_end_date"

func (r *LoanRepository) ActiveBookings(ctx context.Context, assetIDs []uint64, dr loanDomain.DateRange, excludeApplicationID uint64) ([]loanDomain.Booking, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Table("loan_items AS li").
		Select(bookingColumns).
		Joins("JOIN loan_applications la ON la.id = li.loan_application_id").
		Where("li.asset_id IN ?", assetIDs).
		Where("la.status IN ?", loanDomain.ActiveStatuses).
		// closed interval: only strictly-before or strictly-after ranges are free
		Where("NOT (la.loan_end_date < ? OR la.loan_start_date > ?)", dr.Start, dr.End)
	if excludeApplicationID != 0 {
		q = q.Where("la.id <> ?", excludeApplicationID)
	}
	var out []loanDomain.Booking
	err := q.Order("la.loan_start_date, la.id").Scan(&out).Error
	return out, err
}

func (r *LoanRepository) CountHolding(ctx context.Context, assetID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("loan_items AS li").
		Joins("JOIN loan_applications la ON la.id = li.loan_application_id").
		Where("li.asset_id = ? AND la.status IN ?", assetID, loanDomain.HoldingStatuses).
		Count(&n).Error
	return n, err
}

func (r *LoanRepository) ListByAsset(ctx context.Context, assetID uint64) ([]loanDomain.AssetLoan, error) {
	var out []loanDomain.AssetLoan
	err := r.db.WithContext(ctx).
		Table("loan_items AS li").
		Select("la.id AS application_id, la.application_number, la.applicant_name, la.status, "+
			"la.loan_start_date, la.loan_end_date, li.issued_at, li.returned_at, "+
			"li.condition_before, li.condition_after, la.created_at").
		Joins("JOIN loan_applications la ON la.id = li.loan_application_id").
		Where("li.asset_id = ?", assetID).
		Order("la.created_at DESC, la.id DESC").
		Scan(&out).Error
	return out, err
}

func (r *LoanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	err := r.db.WithContext(ctx).
		Where("status = ? AND loan_end_date < ?", loanDomain.StatusInUse, asOf).
		Order("loan_end_date, id").
		Find(&out).Error
	return out, err
}
