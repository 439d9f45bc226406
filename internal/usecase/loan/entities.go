package loan

import (
	"time"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	UserID         *uint64
	ApplicantName  string
	ApplicantEmail string
	ApplicantPhone string
	StaffID        string
	ApplicantGrade int
	Purpose        string
	StartDate      time.Time
	EndDate        time.Time
	TotalValue     decimal.Decimal
	AssetIDs       []uint64
}

type IssueItem struct {
	AssetID     uint64
	Condition   asset.Condition // empty = asset's recorded condition
	Accessories []string
}

type ReturnItem struct {
	AssetID      uint64
	Condition    asset.Condition
	Accessories  []string
	DamageReport string
}

// Damaged reports whether the return must open a maintenance ticket.
func (r ReturnItem) Damaged() bool {
	return r.Condition == asset.ConditionDamaged || r.DamageReport != ""
}

type ItemDTO struct {
	AssetID             uint64     `json:"asset_id"`
	Quantity            int        `json:"quantity"`
	ConditionBefore     string     `json:"condition_before,omitempty"`
	ConditionAfter      string     `json:"condition_after,omitempty"`
	AccessoriesIssued   []string   `json:"accessories_issued,omitempty"`
	AccessoriesReturned []string   `json:"accessories_returned,omitempty"`
	DamageReport        string     `json:"damage_report,omitempty"`
	IssuedAt            *time.Time `json:"issued_at,omitempty"`
	ReturnedAt          *time.Time `json:"returned_at,omitempty"`
}

type LoanDTO struct {
	ApplicationNumber   string              `json:"application_number"`
	Status              loan.Status         `json:"status"`
	ApplicantName       string              `json:"applicant_name"`
	ApplicantEmail      string              `json:"applicant_email"`
	StaffID             string              `json:"staff_id,omitempty"`
	ApplicantGrade      int                 `json:"applicant_grade"`
	Purpose             string              `json:"purpose,omitempty"`
	StartDate           time.Time           `json:"loan_start_date"`
	EndDate             time.Time           `json:"loan_end_date"`
	TotalValue          decimal.Decimal     `json:"total_value"`
	ApproverName        string              `json:"approver_name,omitempty"`
	ApprovalMethod      loan.ApprovalMethod `json:"approval_method,omitempty"`
	ApprovedAt          *time.Time          `json:"approved_at,omitempty"`
	RejectedReason      string              `json:"rejected_reason,omitempty"`
	IssuedAt            *time.Time          `json:"issued_at,omitempty"`
	ReturnedAt          *time.Time          `json:"returned_at,omitempty"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
	MaintenanceRequired bool                `json:"maintenance_required"`
	RelatedTicketIDs    []uint64            `json:"related_ticket_ids"`
	Items               []ItemDTO           `json:"items"`
	CreatedAt           time.Time           `json:"created_at"`
}

func toDTO(a *loan.Application) *LoanDTO {
	dto := &LoanDTO{
		ApplicationNumber:   a.ApplicationNumber,
		Status:              a.Status,
		ApplicantName:       a.ApplicantName,
		ApplicantEmail:      a.ApplicantEmail,
		StaffID:             a.StaffID,
		ApplicantGrade:      a.ApplicantGrade,
		Purpose:             a.Purpose,
		StartDate:           a.LoanStartDate,
		EndDate:             a.LoanEndDate,
		TotalValue:          a.TotalValue,
		ApproverName:        a.ApproverName,
		ApprovalMethod:      a.ApprovalMethod,
		ApprovedAt:          a.ApprovedAt,
		RejectedReason:      a.RejectedReason,
		IssuedAt:            a.IssuedAt,
		ReturnedAt:          a.ReturnedAt,
		CompletedAt:         a.CompletedAt,
		MaintenanceRequired: a.MaintenanceRequired,
		RelatedTicketIDs:    append([]uint64{}, a.RelatedTicketIDs...),
		Items:               make([]ItemDTO, 0, len(a.Items)),
		CreatedAt:           a.CreatedAt,
	}
	for _, it := range a.Items {
		dto.Items = append(dto.Items, ItemDTO{
			AssetID:             it.AssetID,
			Quantity:            it.Quantity,
			ConditionBefore:     it.ConditionBefore,
			ConditionAfter:      it.ConditionAfter,
			AccessoriesIssued:   it.AccessoriesIssued,
			AccessoriesReturned: it.AccessoriesReturned,
			DamageReport:        it.DamageReport,
			IssuedAt:            it.IssuedAt,
			ReturnedAt:          it.ReturnedAt,
		})
	}
	return dto
}
