package approval

import "context"

type Repository interface {
	Create(ctx context.Context, d *Decision) error

	// Decisions for one application, oldest first
	ListByApplication(ctx context.Context, loanApplicationID uint64) ([]Decision, error)

	// Get by public decision_id
	GetByDecisionID(ctx context.Context, decisionID string) (*Decision, error)
}
