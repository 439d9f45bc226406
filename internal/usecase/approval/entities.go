package approval

import (
	"time"

	"ictloan-backend/internal/domain/loan"
)

// Actor is the authenticated approver on the portal channel.
type Actor struct {
	ID    string
	Name  string
	Email string
	Grade int
}

type RequestDTO struct {
	ApplicationNumber string      `json:"application_number"`
	Status            loan.Status `json:"status"`
	ApproverName      string      `json:"approver_name"`
	ApproverEmail     string      `json:"approver_email"`
	TokenExpiresAt    time.Time   `json:"token_expires_at"`
}

type DecisionDTO struct {
	ApplicationNumber string              `json:"application_number"`
	Status            loan.Status         `json:"status"`
	Approved          bool                `json:"approved"`
	Method            loan.ApprovalMethod `json:"approval_method"`
	Remarks           string              `json:"remarks,omitempty"`
	DecidedBy         string              `json:"decided_by"`
	DecidedAt         time.Time           `json:"decided_at"`
}

// decision carries one verdict through the shared transition.
type decision struct {
	approved      bool
	remarks       string
	method        loan.ApprovalMethod
	approverName  string
	approverEmail string
}
