package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health       *Handler
	Loans        *LoanHandler
	Approvals    *ApprovalHandler
	Availability *AvailabilityHandler
	Maintenance  *MaintenanceHandler
}

// RegisterRoutes mounts every endpoint. portal wraps the signed-in portal
// routes (actor identity, idempotency).
func RegisterRoutes(e *echo.Echo, h Handlers, portal ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	loans := e.Group("/loans")
	loans.POST("", h.Loans.CreateLoan)
	loans.GET("/:number", h.Loans.GetLoan)
	loans.POST("/:number/submit", h.Loans.Submit)
	loans.POST("/:number/issue", h.Loans.Issue)
	loans.POST("/:number/in-use", h.Loans.MarkInUse)
	loans.POST("/:number/overdue", h.Loans.MarkOverdue)
	loans.POST("/:number/return", h.Loans.Return)
	loans.POST("/:number/complete", h.Loans.Complete)

	e.POST("/approvals/email/:token/approve", h.Approvals.EmailApprove)
	e.POST("/approvals/email/:token/decline", h.Approvals.EmailDecline)
	e.POST("/portal/approvals/:number", h.Approvals.Portal, portal...)

	e.POST("/availability/check", h.Availability.Check)
	e.GET("/assets/:id/calendar", h.Availability.Calendar)
	e.GET("/categories/:id/alternatives", h.Availability.Alternatives)

	assets := e.Group("/assets/:id")
	assets.POST("/maintenance/damage", h.Maintenance.ReportDamage)
	assets.POST("/maintenance/schedule", h.Maintenance.Schedule)
	assets.POST("/maintenance/preventive", h.Maintenance.TriggerPreventive)
	assets.POST("/maintenance/sync", h.Maintenance.Sync)
	assets.GET("/maintenance-stats", h.Maintenance.Stats)
	assets.GET("/history", h.Maintenance.History)
	assets.GET("/lifecycle", h.Maintenance.Lifecycle)
	e.POST("/maintenance/:id/complete", h.Maintenance.CompleteTicket)
}
