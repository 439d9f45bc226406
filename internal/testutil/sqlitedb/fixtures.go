package sqlitedb

import (
	"testing"
	"time"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Day builds a UTC midnight date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Category(t testing.TB, db *gorm.DB, code string, maxLoanDays int) *asset.Category {
	t.Helper()
	c := &asset.Category{Code: code, Name: code, MaxLoanDays: maxLoanDays}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

// Asset seeds an available asset in good condition.
func Asset(t testing.TB, db *gorm.DB, categoryID uint64, tag string) *asset.Asset {
	t.Helper()
	a := &asset.Asset{
		AssetTag:   tag,
		Name:       "Asset " + tag,
		CategoryID: categoryID,
		Status:     asset.StatusAvailable,
		Condition:  asset.ConditionGood,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	return a
}

// Application seeds an application in the given status with one item per asset.
func Application(t testing.TB, db *gorm.DB, status loan.Status, start, end time.Time, assetIDs ...uint64) *loan.Application {
	t.Helper()
	a := &loan.Application{
		ApplicationNumber: "LA-" + uuid.NewString()[:8],
		ApplicantName:     "Aminah Yusof",
		ApplicantEmail:    "aminah@example.gov.my",
		StaffID:           "S1001",
		ApplicantGrade:    41,
		Purpose:           "Workshop",
		LoanStartDate:     start,
		LoanEndDate:       end,
		TotalValue:        decimal.NewFromInt(1000),
		Status:            status,
		StatusUpdatedAt:   start,
	}
	for _, id := range assetIDs {
		a.Items = append(a.Items, loan.Item{AssetID: id, Quantity: 1})
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return a
}
