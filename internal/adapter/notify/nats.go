package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ictloan-backend/internal/domain/notification"

	"github.com/rs/zerolog"
)

// Publisher is the subset of *nats.Conn the gateway needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON envelope published for every notification.
//
// Subject convention: <prefix>.<kind>, e.g. ictloan.notifications.approval_request
type Event struct {
	EventType    string   `json:"event_type"`
	Recipients   []string `json:"recipients"`
	ResourceType string   `json:"resource_type"`
	ResourceID   string   `json:"resource_id"`
	IsActionable bool     `json:"is_actionable,omitempty"`
	ActionURL    string   `json:"action_url,omitempty"`
	Severity     string   `json:"severity,omitempty"`
	Payload      any      `json:"payload"`
}

// NATSGateway delivers notifications as events for the mail/portal
// notification service. Publish errors are returned so the outbox retries.
type NATSGateway struct {
	pub    Publisher
	prefix string
	log    zerolog.Logger
}

func NewNATSGateway(pub Publisher, prefix string, log zerolog.Logger) *NATSGateway {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = "ictloan.notifications"
	}
	return &NATSGateway{pub: pub, prefix: prefix, log: log}
}

func (g *NATSGateway) SendApprovalRequest(ctx context.Context, n notification.ApprovalRequest) error {
	return g.publish(ctx, notification.KindApprovalRequest, Event{
		Recipients:   []string{n.Approver.Email},
		ResourceType: "loan_application",
		ResourceID:   n.ApplicationNumber,
		IsActionable: true,
		ActionURL:    n.PortalURL,
		Severity:     "info",
		Payload:      n,
	})
}

func (g *NATSGateway) SendApprovalDecision(ctx context.Context, n notification.ApprovalDecision) error {
	return g.publish(ctx, notification.KindApprovalDecision, Event{
		Recipients:   []string{n.ApplicantEmail},
		ResourceType: "loan_application",
		ResourceID:   n.ApplicationNumber,
		Severity:     "info",
		Payload:      n,
	})
}

func (g *NATSGateway) SendApprovalConfirmation(ctx context.Context, n notification.ApprovalConfirmation) error {
	return g.publish(ctx, notification.KindApprovalConfirmation, Event{
		Recipients:   []string{n.ApplicantEmail},
		ResourceType: "loan_application",
		ResourceID:   n.ApplicationNumber,
		Severity:     "info",
		Payload:      n,
	})
}

func (g *NATSGateway) NotifyAdminForAssetPreparation(ctx context.Context, n notification.AssetPreparation) error {
	var to []string
	if n.AdminEmail != "" {
		to = []string{n.AdminEmail}
	}
	return g.publish(ctx, notification.KindAssetPreparation, Event{
		Recipients:   to,
		ResourceType: "loan_application",
		ResourceID:   n.ApplicationNumber,
		IsActionable: true,
		Severity:     "info",
		Payload:      n,
	})
}

func (g *NATSGateway) SendMaintenanceNotification(ctx context.Context, n notification.Maintenance) error {
	severity := "info"
	if n.Priority == "high" || n.Priority == "urgent" {
		severity = "warning"
	}
	return g.publish(ctx, notification.KindMaintenance, Event{
		ResourceType: "helpdesk_ticket",
		ResourceID:   n.TicketNumber,
		IsActionable: true,
		Severity:     severity,
		Payload:      n,
	})
}

func (g *NATSGateway) publish(ctx context.Context, kind notification.Kind, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev.EventType = string(kind)
	if ev.Recipients == nil {
		ev.Recipients = []string{}
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}

	subject := g.prefix + "." + string(kind)
	if err := g.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("%w: publish %s: %v", notification.ErrDispatch, subject, err)
	}
	g.log.Debug().
		Str("subject", subject).
		Str("resource_id", ev.ResourceID).
		Int("recipients", len(ev.Recipients)).
		Msg("notification: event published")
	return nil
}
