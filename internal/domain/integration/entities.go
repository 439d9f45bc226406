package integration

import (
	"time"

	"gorm.io/datatypes"
)

type Type string

const (
	TypeAssetDamageReport  Type = "asset_damage_report"
	TypeMaintenanceRequest Type = "maintenance_request"
	TypeAssetTicketLink    Type = "asset_ticket_link"
)

const (
	EventAssetReturnedDamaged = "asset_returned_damaged"
	EventMaintenanceScheduled = "maintenance_scheduled"
	EventPreventiveTriggered  = "preventive_maintenance_triggered"
	EventMaintenanceCompleted = "maintenance_completed"
)

// Record is an append-only link between a helpdesk ticket and a loan application.
// Only ProcessedAt/ProcessedBy are ever stamped after creation.
type Record struct {
	ID                uint64            `gorm:"primaryKey;column:id" json:"id"`
	RecordID          string            `gorm:"size:36;uniqueIndex" json:"record_id"`
	HelpdeskTicketID  uint64            `gorm:"index;not null" json:"helpdesk_ticket_id"`
	LoanApplicationID *uint64           `gorm:"index" json:"loan_application_id,omitempty"`
	IntegrationType   Type              `gorm:"size:32;not null" json:"integration_type"`
	TriggerEvent      string            `gorm:"size:64;not null" json:"trigger_event"`
	Payload           datatypes.JSONMap `json:"payload"`
	ProcessedAt       *time.Time        `json:"processed_at,omitempty"`
	ProcessedBy       string            `gorm:"size:150" json:"processed_by,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "cross_module_integrations" }
