package integration

import (
	"time"

	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/ticket"

	"github.com/shopspring/decimal"
)

// DamageData is what the returning officer reports for one asset.
type DamageData struct {
	ConditionAfter asset.Condition
	DamageReport   string
	ReportedBy     string
}

type ScheduleInput struct {
	ScheduledFor time.Time
	Description  string
	Priority     ticket.Priority // defaults to normal
}

type CompletionInput struct {
	ResolutionNotes string
	Condition       asset.Condition // empty keeps the current condition
	ResolvedBy      string
	// NextMaintenanceDate overrides the default interval when set.
	NextMaintenanceDate *time.Time
}

type TicketDTO struct {
	ID                       uint64                 `json:"id"`
	TicketNumber             string                 `json:"ticket_number"`
	Subject                  string                 `json:"subject"`
	Description              string                 `json:"description"`
	Priority                 ticket.Priority        `json:"priority"`
	Status                   ticket.Status          `json:"status"`
	MaintenanceType          ticket.MaintenanceType `json:"maintenance_type"`
	AssetID                  uint64                 `json:"asset_id"`
	RelatedLoanApplicationID *uint64                `json:"related_loan_application_id,omitempty"`
	ScheduledFor             *time.Time             `json:"scheduled_for,omitempty"`
	ResolvedAt               *time.Time             `json:"resolved_at,omitempty"`
	CreatedAt                time.Time              `json:"created_at"`
}

func toTicketDTO(t *ticket.Ticket) *TicketDTO {
	dto := &TicketDTO{
		ID:                       t.ID,
		TicketNumber:             t.TicketNumber,
		Subject:                  t.Subject,
		Description:              t.Description,
		Priority:                 t.Priority,
		Status:                   t.Status,
		MaintenanceType:          t.MaintenanceType,
		RelatedLoanApplicationID: t.RelatedLoanApplicationID,
		ScheduledFor:             t.ScheduledFor,
		ResolvedAt:               t.ResolvedAt,
		CreatedAt:                t.CreatedAt,
	}
	if t.AssetID != nil {
		dto.AssetID = *t.AssetID
	}
	return dto
}

type MaintenanceStats struct {
	AssetID                uint64                         `json:"asset_id"`
	TotalTickets           int                            `json:"total_tickets"`
	ByStatus               map[ticket.Status]int          `json:"by_status"`
	ByType                 map[ticket.MaintenanceType]int `json:"by_type"`
	Pending                int                            `json:"pending"`
	AverageResolutionHours float64                        `json:"average_resolution_hours"`
	LastMaintenanceDate    *time.Time                     `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate    *time.Time                     `json:"next_maintenance_date,omitempty"`
}

const (
	HistoryLoan        = "loan"
	HistoryMaintenance = "maintenance"
)

// HistoryEntry is one row of the merged asset timeline.
type HistoryEntry struct {
	Type      string    `json:"type"`
	Date      time.Time `json:"date"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary"`
}

type AssetSummary struct {
	ID           uint64          `json:"id"`
	AssetTag     string          `json:"asset_tag"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand,omitempty"`
	Model        string          `json:"model,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Status       asset.Status    `json:"status"`
	Condition    asset.Condition `json:"condition"`
	TotalLoans   int             `json:"total_loans"`
	InService    time.Time       `json:"in_service_since"`
}

type LoanRecord struct {
	ApplicationNumber string     `json:"application_number"`
	ApplicantName     string     `json:"applicant_name"`
	Status            string     `json:"status"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	IssuedAt          *time.Time `json:"issued_at,omitempty"`
	ReturnedAt        *time.Time `json:"returned_at,omitempty"`
	ConditionBefore   string     `json:"condition_before,omitempty"`
	ConditionAfter    string     `json:"condition_after,omitempty"`
}

type LifecycleReport struct {
	Asset           AssetSummary     `json:"asset"`
	Loans           []LoanRecord     `json:"loans"`
	Maintenance     []TicketDTO      `json:"maintenance"`
	Stats           MaintenanceStats `json:"maintenance_stats"`
	LoanedHours     float64          `json:"loaned_hours"`
	LifetimeHours   float64          `json:"lifetime_hours"`
	UtilizationRate decimal.Decimal  `json:"utilization_rate"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
