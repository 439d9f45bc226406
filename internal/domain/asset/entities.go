package asset

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("asset not found")
	ErrInvalidCondition = errors.New("unknown asset condition")
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusLoaned      Status = "loaned"
	StatusMaintenance Status = "maintenance"
	StatusDamaged     Status = "damaged"
	StatusRetired     Status = "retired"
)

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
	ConditionDamaged   Condition = "damaged"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}

// Category carries the loan-duration policy for its assets.
type Category struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"id"`
	Code        string    `gorm:"size:32;uniqueIndex" json:"code"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	MaxLoanDays int       `gorm:"not null;default:0" json:"max_loan_days"` // 0 = unlimited
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string { return "asset_categories" }

type Asset struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"id"`
	AssetTag     string    `gorm:"size:50;uniqueIndex" json:"asset_tag"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Brand        string    `gorm:"size:100" json:"brand"`
	Model        string    `gorm:"size:100" json:"model"`
	SerialNumber string    `gorm:"size:120" json:"serial_number"`
	CategoryID   uint64    `gorm:"index" json:"category_id"`
	Category     *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Status       Status    `gorm:"size:20;index;default:'available'" json:"status"`
	Condition    Condition `gorm:"size:20;default:'good'" json:"condition"`

	MaintenanceTicketsCount int        `gorm:"not null;default:0" json:"maintenance_tickets_count"`
	TotalLoans              int        `gorm:"not null;default:0" json:"total_loans"`
	LoansAtLastMaintenance  int        `gorm:"not null;default:0" json:"loans_at_last_maintenance"`
	LastMaintenanceDate     *time.Time `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate     *time.Time `json:"next_maintenance_date,omitempty"`

	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Asset) TableName() string { return "assets" }

// InServiceSince is the start of the observed lifetime used for utilization.
func (a *Asset) InServiceSince() time.Time {
	if a.AcquiredAt != nil && !a.AcquiredAt.IsZero() {
		return *a.AcquiredAt
	}
	return a.CreatedAt
}

// LoansSinceMaintenance is the usage counter checked by preventive maintenance.
func (a *Asset) LoansSinceMaintenance() int { return a.TotalLoans - a.LoansAtLastMaintenance }
