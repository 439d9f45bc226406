package notification

import (
	"context"
	"errors"
	"time"
)

// ErrDispatch marks a delivery failure. It never reverses a committed transition.
var ErrDispatch = errors.New("notification dispatch failed")

type Kind string

const (
	KindApprovalRequest      Kind = "approval_request"
	KindApprovalDecision     Kind = "approval_decision"
	KindApprovalConfirmation Kind = "approval_confirmation"
	KindAssetPreparation     Kind = "asset_preparation"
	KindMaintenance          Kind = "maintenance"
)

func (k Kind) Valid() bool {
	switch k {
	case KindApprovalRequest, KindApprovalDecision, KindApprovalConfirmation,
		KindAssetPreparation, KindMaintenance:
		return true
	}
	return false
}

type Approver struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type ApprovalRequest struct {
	ApplicationNumber string    `json:"application_number"`
	ApplicantName     string    `json:"applicant_name"`
	ApplicantEmail    string    `json:"applicant_email"`
	Approver          Approver  `json:"approver"`
	Token             string    `json:"token"`
	ExpiresAt         time.Time `json:"expires_at"`
	ApproveURL        string    `json:"approve_url"`
	DeclineURL        string    `json:"decline_url"`
	PortalURL         string    `json:"portal_url"`
	LoanStartDate     time.Time `json:"loan_start_date"`
	LoanEndDate       time.Time `json:"loan_end_date"`
}

type ApprovalDecision struct {
	ApplicationNumber string   `json:"application_number"`
	ApplicantName     string   `json:"applicant_name"`
	ApplicantEmail    string   `json:"applicant_email"`
	Approver          Approver `json:"approver"`
	Approved          bool     `json:"approved"`
	Method            string   `json:"method"`
	Remarks           string   `json:"remarks,omitempty"`
}

type ApprovalConfirmation struct {
	ApplicationNumber string `json:"application_number"`
	ApplicantName     string `json:"applicant_name"`
	ApplicantEmail    string `json:"applicant_email"`
	Approved          bool   `json:"approved"`
}

type AssetPreparation struct {
	ApplicationNumber string    `json:"application_number"`
	ApplicantName     string    `json:"applicant_name"`
	AssetIDs          []uint64  `json:"asset_ids"`
	LoanStartDate     time.Time `json:"loan_start_date"`
	LoanEndDate       time.Time `json:"loan_end_date"`
	AdminEmail        string    `json:"admin_email"`
}

type Maintenance struct {
	TicketID          uint64 `json:"ticket_id"`
	TicketNumber      string `json:"ticket_number"`
	Priority          string `json:"priority"`
	AssetID           uint64 `json:"asset_id"`
	AssetTag          string `json:"asset_tag"`
	ApplicationNumber string `json:"application_number,omitempty"`
	Subject           string `json:"subject"`
}

// Gateway delivers typed notifications. Calls are fire-and-forget from the
// engine's point of view; errors only drive retry and logging.
type Gateway interface {
	SendApprovalRequest(ctx context.Context, n ApprovalRequest) error
	SendApprovalDecision(ctx context.Context, n ApprovalDecision) error
	SendApprovalConfirmation(ctx context.Context, n ApprovalConfirmation) error
	NotifyAdminForAssetPreparation(ctx context.Context, n AssetPreparation) error
	SendMaintenanceNotification(ctx context.Context, n Maintenance) error
}
