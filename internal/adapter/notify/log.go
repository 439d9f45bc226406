package notify

import (
	"context"

	"ictloan-backend/internal/domain/notification"

	"github.com/rs/zerolog"
)

// LogGateway only logs notifications. Used when no broker is configured.
type LogGateway struct {
	log zerolog.Logger
}

func NewLogGateway(log zerolog.Logger) *LogGateway { return &LogGateway{log: log} }

func (g *LogGateway) SendApprovalRequest(_ context.Context, n notification.ApprovalRequest) error {
	g.log.Info().
		Str("kind", string(notification.KindApprovalRequest)).
		Str("application_number", n.ApplicationNumber).
		Str("approver", n.Approver.Email).
		Time("expires_at", n.ExpiresAt).
		Msg("notification")
	return nil
}

func (g *LogGateway) SendApprovalDecision(_ context.Context, n notification.ApprovalDecision) error {
	g.log.Info().
		Str("kind", string(notification.KindApprovalDecision)).
		Str("application_number", n.ApplicationNumber).
		Bool("approved", n.Approved).
		Str("method", n.Method).
		Msg("notification")
	return nil
}

func (g *LogGateway) SendApprovalConfirmation(_ context.Context, n notification.ApprovalConfirmation) error {
	g.log.Info().
		Str("kind", string(notification.KindApprovalConfirmation)).
		Str("application_number", n.ApplicationNumber).
		Str("applicant", n.ApplicantEmail).
		Msg("notification")
	return nil
}

func (g *LogGateway) NotifyAdminForAssetPreparation(_ context.Context, n notification.AssetPreparation) error {
	g.log.Info().
		Str("kind", string(notification.KindAssetPreparation)).
		Str("application_number", n.ApplicationNumber).
		Interface("asset_ids", n.AssetIDs).
		Msg("notification")
	return nil
}

func (g *LogGateway) SendMaintenanceNotification(_ context.Context, n notification.Maintenance) error {
	g.log.Info().
		Str("kind", string(notification.KindMaintenance)).
		Str("ticket_number", n.TicketNumber).
		Uint64("asset_id", n.AssetID).
		Str("priority", n.Priority).
		Msg("notification")
	return nil
}
