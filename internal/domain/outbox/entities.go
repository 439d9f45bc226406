package outbox

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusDead    Status = "dead"
)

// Undelivered events hold back later events of the same aggregate.
var Undelivered = []Status{StatusPending, StatusSending}

// Event is a notification waiting for delivery. It is written in the same
// transaction as the state change that caused it.
type Event struct {
	ID            uint64         `gorm:"primaryKey;column:id"`
	EventID       string         `gorm:"size:36;uniqueIndex"`
	Kind          string         `gorm:"size:64;not null"`
	AggregateType string         `gorm:"size:32;not null"`
	AggregateID   string         `gorm:"size:64;index"`
	Payload       datatypes.JSON `gorm:"not null"`
	Status        Status         `gorm:"size:10;index;default:'pending'"`
	Attempts      int            `gorm:"not null;default:0"`
	LastError     string         `gorm:"type:text"`
	AvailableAt   time.Time      `gorm:"index"`
	LockedUntil   *time.Time
	SentAt        *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (Event) TableName() string { return "notification_outbox" }
