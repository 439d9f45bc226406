package gormrepo

import (
	"ictloan-backend/internal/domain/approval"
	"ictloan-backend/internal/domain/asset"
	"ictloan-backend/internal/domain/integration"
	"ictloan-backend/internal/domain/loan"
	"ictloan-backend/internal/domain/outbox"
	"ictloan-backend/internal/domain/ticket"

	"gorm.io/gorm"
)

// Migrate creates or updates every table owned by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&asset.Category{},
		&asset.Asset{},
		&loan.Application{},
		&loan.Item{},
		&approval.Decision{},
		&ticket.Ticket{},
		&integration.Record{},
		&outbox.Event{},
	)
}
