package approval

import (
	"errors"
	"time"

	"ictloan-backend/internal/domain/loan"
)

var (
	ErrNotFound = errors.New("approval decision not found")
)

// Decision is the audit record of who decided an application and through
// which channel. It is written independently of the status transition.
type Decision struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	DecisionID        string              `gorm:"column:decision_id;type:char(32);not null;uniqueIndex"`
	LoanApplicationID uint64              `gorm:"column:loan_application_id;not null;index"`
	Method            loan.ApprovalMethod `gorm:"column:approval_method;size:10;not null"`
	Approved          bool                `gorm:"column:approved;not null"`
	Remarks           string              `gorm:"column:approval_remarks;type:text"`
	ApproverName      string              `gorm:"column:approver_name;size:150"`
	ApproverEmail     string              `gorm:"column:approver_email;size:150"`
	DecidedAt         time.Time           `gorm:"column:decided_at;not null"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Decision) TableName() string { return "approval_decisions" }
