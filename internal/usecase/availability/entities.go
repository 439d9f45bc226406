package availability

import (
	"time"

	"ictloan-backend/internal/domain/loan"
)

type CheckInput struct {
	AssetIDs             []uint64
	StartDate            time.Time
	EndDate              time.Time
	ExcludeApplicationID uint64 // 0 = none
}

// Result maps each requested asset id to its availability.
type Result map[uint64]bool

type CalendarEntry struct {
	ApplicationNumber string      `json:"application_number"`
	ApplicantName     string      `json:"applicant_name"`
	StaffID           string      `json:"staff_id,omitempty"`
	Status            loan.Status `json:"status"`
	StartDate         time.Time   `json:"start_date"`
	EndDate           time.Time   `json:"end_date"`
}

type Calendar struct {
	AssetID   uint64          `json:"asset_id"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Bookings  []CalendarEntry `json:"bookings"`
}

type AlternativeDTO struct {
	ID        uint64 `json:"id"`
	AssetTag  string `json:"asset_tag"`
	Name      string `json:"name"`
	Brand     string `json:"brand,omitempty"`
	Model     string `json:"model,omitempty"`
	Condition string `json:"condition"`
}
