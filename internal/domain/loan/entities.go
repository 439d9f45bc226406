package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusIssued      Status = "issued"
	StatusInUse       Status = "in_use"
	StatusOverdue     Status = "overdue"
	StatusReturned    Status = "returned"
	StatusCompleted   Status = "completed"
)

// ActiveStatuses reserve or hold an asset and therefore block other bookings.
var ActiveStatuses = []Status{StatusApproved, StatusIssued, StatusInUse, StatusOverdue}

// HoldingStatuses are the statuses where the asset is physically out.
var HoldingStatuses = []Status{StatusIssued, StatusInUse, StatusOverdue}

type ApprovalMethod string

const (
	ApprovalMethodEmail  ApprovalMethod = "email"
	ApprovalMethodPortal ApprovalMethod = "portal"
)

// Application is a request to borrow one or more assets for a date range.
type Application struct {
	ID                uint64  `gorm:"primaryKey;column:id" json:"-"`
	ApplicationNumber string  `gorm:"size:32;uniqueIndex:ux_loan_applications_number" json:"application_number"`
	UserID            *uint64 `gorm:"index" json:"user_id,omitempty"`

	ApplicantName  string `gorm:"size:150;not null" json:"applicant_name"`
	ApplicantEmail string `gorm:"size:150;not null" json:"applicant_email"`
	ApplicantPhone string `gorm:"size:32" json:"applicant_phone"`
	StaffID        string `gorm:"size:32" json:"staff_id"`
	ApplicantGrade int    `json:"applicant_grade"`
	Purpose        string `gorm:"type:text" json:"purpose"`

	LoanStartDate time.Time       `gorm:"type:date;not null" json:"loan_start_date"`
	LoanEndDate   time.Time       `gorm:"type:date;not null" json:"loan_end_date"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_value"`

	Status          Status    `gorm:"size:20;index;default:'draft'" json:"status"`
	StatusUpdatedAt time.Time `json:"status_updated_at"`

	ApproverName           string         `gorm:"size:150" json:"approver_name"`
	ApproverEmail          string         `gorm:"size:150" json:"approver_email"`
	ApprovalToken          *string        `gorm:"size:64;uniqueIndex:ux_loan_applications_token" json:"-"`
	ApprovalTokenExpiresAt *time.Time     `json:"-"`
	ApprovalMethod         ApprovalMethod `gorm:"size:10" json:"approval_method,omitempty"`
	ApprovalRemarks        string         `gorm:"type:text" json:"approval_remarks,omitempty"`
	RejectedReason         string         `gorm:"type:text" json:"rejected_reason,omitempty"`
	ApprovedBy             string         `gorm:"size:150" json:"approved_by,omitempty"`
	ApprovedAt             *time.Time     `json:"approved_at,omitempty"`
	RejectedAt             *time.Time     `json:"rejected_at,omitempty"`

	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	MaintenanceRequired bool                        `gorm:"not null;default:false" json:"maintenance_required"`
	RelatedTicketIDs    datatypes.JSONSlice[uint64] `json:"related_ticket_ids"`

	Items     []Item    `gorm:"foreignKey:LoanApplicationID" json:"items"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "loan_applications" }

func (a *Application) Range() DateRange {
	return DateRange{Start: a.LoanStartDate, End: a.LoanEndDate}
}

// AssetIDs returns the distinct requested assets in item order.
func (a *Application) AssetIDs() []uint64 {
	seen := make(map[uint64]struct{}, len(a.Items))
	out := make([]uint64, 0, len(a.Items))
	for _, it := range a.Items {
		if _, ok := seen[it.AssetID]; ok {
			continue
		}
		seen[it.AssetID] = struct{}{}
		out = append(out, it.AssetID)
	}
	return out
}

// AttachTicket marks the application as needing maintenance follow-up.
func (a *Application) AttachTicket(ticketID uint64) {
	a.MaintenanceRequired = true
	a.RelatedTicketIDs = append(a.RelatedTicketIDs, ticketID)
}

// Item joins one asset to one application.
type Item struct {
	ID                  uint64                      `gorm:"primaryKey;column:id" json:"id"`
	LoanApplicationID   uint64                      `gorm:"index;not null" json:"loan_application_id"`
	AssetID             uint64                      `gorm:"index;not null" json:"asset_id"`
	Quantity            int                         `gorm:"not null;default:1" json:"quantity"`
	ConditionBefore     string                      `gorm:"size:20" json:"condition_before,omitempty"`
	ConditionAfter      string                      `gorm:"size:20" json:"condition_after,omitempty"`
	AccessoriesIssued   datatypes.JSONSlice[string] `json:"accessories_issued,omitempty"`
	AccessoriesReturned datatypes.JSONSlice[string] `json:"accessories_returned,omitempty"`
	DamageReport        string                      `gorm:"type:text" json:"damage_report,omitempty"`
	IssuedAt            *time.Time                  `json:"issued_at,omitempty"`
	ReturnedAt          *time.Time                  `json:"returned_at,omitempty"`
	CreatedAt           time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Item) TableName() string { return "loan_items" }

// Booking is a read model of one active loan item against an asset.
type Booking struct {
	AssetID           uint64
	ApplicationID     uint64
	ApplicationNumber string
	ApplicantName     string
	StaffID           string
	Status            Status
	LoanStartDate     time.Time
	LoanEndDate       time.Time
}

func (b Booking) Range() DateRange { return DateRange{Start: b.LoanStartDate, End: b.LoanEndDate} }

// AssetLoan is one application that included a given asset, used for history.
type AssetLoan struct {
	ApplicationID     uint64
	ApplicationNumber string
	ApplicantName     string
	Status            Status
	LoanStartDate     time.Time
	LoanEndDate       time.Time
	IssuedAt          *time.Time
	ReturnedAt        *time.Time
	ConditionBefore   string
	ConditionAfter    string
	CreatedAt         time.Time
}
