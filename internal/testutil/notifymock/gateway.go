package notifymock

import (
	"context"
	"sync"

	"ictloan-backend/internal/domain/notification"
)

var _ notification.Gateway = (*Gateway)(nil)

// Call is one recorded delivery.
type Call struct {
	Kind    notification.Kind
	Payload any
}

// Gateway records deliveries in order. FailFn, when set, decides per kind
// whether a delivery fails.
type Gateway struct {
	mu     sync.Mutex
	Calls  []Call
	FailFn func(kind notification.Kind) error
}

func (g *Gateway) record(kind notification.Kind, payload any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailFn != nil {
		if err := g.FailFn(kind); err != nil {
			return err
		}
	}
	g.Calls = append(g.Calls, Call{Kind: kind, Payload: payload})
	return nil
}

// Kinds returns the kinds delivered so far, in order.
func (g *Gateway) Kinds() []notification.Kind {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]notification.Kind, 0, len(g.Calls))
	for _, c := range g.Calls {
		out = append(out, c.Kind)
	}
	return out
}

func (g *Gateway) SendApprovalRequest(_ context.Context, n notification.ApprovalRequest) error {
	return g.record(notification.KindApprovalRequest, n)
}

func (g *Gateway) SendApprovalDecision(_ context.Context, n notification.ApprovalDecision) error {
	return g.record(notification.KindApprovalDecision, n)
}

func (g *Gateway) SendApprovalConfirmation(_ context.Context, n notification.ApprovalConfirmation) error {
	return g.record(notification.KindApprovalConfirmation, n)
}

func (g *Gateway) NotifyAdminForAssetPreparation(_ context.Context, n notification.AssetPreparation) error {
	return g.record(notification.KindAssetPreparation, n)
}

func (g *Gateway) SendMaintenanceNotification(_ context.Context, n notification.Maintenance) error {
	return g.record(notification.KindMaintenance, n)
}
