package ticket

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("ticket not found")
	ErrNoAssociatedAsset = errors.New("ticket has no associated asset")
	ErrAlreadyResolved   = errors.New("ticket already resolved")
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Pending tickets keep their asset in maintenance.
func (s Status) Pending() bool {
	switch s {
	case StatusOpen, StatusInProgress:
		return true
	case StatusResolved, StatusClosed:
		return false
	}
	return false
}

var PendingStatuses = []Status{StatusOpen, StatusInProgress}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

const CategoryMaintenance = "MAINTENANCE"

type MaintenanceType string

const (
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenanceScheduled  MaintenanceType = "scheduled"
	MaintenancePreventive MaintenanceType = "preventive"
)

// Ticket is a helpdesk ticket; maintenance tickets carry an asset link.
type Ticket struct {
	ID                       uint64          `gorm:"primaryKey;column:id" json:"id"`
	TicketNumber             string          `gorm:"size:32;uniqueIndex" json:"ticket_number"`
	Subject                  string          `gorm:"size:255;not null" json:"subject"`
	Description              string          `gorm:"type:text" json:"description"`
	Category                 string          `gorm:"size:32;index" json:"category"`
	Priority                 Priority        `gorm:"size:10" json:"priority"`
	Status                   Status          `gorm:"size:20;index;default:'open'" json:"status"`
	MaintenanceType          MaintenanceType `gorm:"size:20" json:"maintenance_type,omitempty"`
	AssetID                  *uint64         `gorm:"index" json:"asset_id,omitempty"`
	RelatedLoanApplicationID *uint64         `gorm:"index" json:"related_loan_application_id,omitempty"`
	ScheduledFor             *time.Time      `json:"scheduled_for,omitempty"`
	ResolutionNotes          string          `gorm:"type:text" json:"resolution_notes,omitempty"`
	ResolvedAt               *time.Time      `json:"resolved_at,omitempty"`
	ResolvedBy               string          `gorm:"size:150" json:"resolved_by,omitempty"`
	CreatedAt                time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Ticket) TableName() string { return "helpdesk_tickets" }
