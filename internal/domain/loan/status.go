package loan

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected,
		StatusIssued, StatusInUse, StatusOverdue, StatusReturned, StatusCompleted:
		return true
	}
	return false
}

func (s Status) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s Status) HoldsAsset() bool {
	for _, h := range HoldingStatuses {
		if s == h {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusRejected || s == StatusCompleted }

// CanTransition is the single transition table of the loan state machine.
// Transitions only move forward; nothing re-enters under_review.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusSubmitted
	case StatusSubmitted:
		return to == StatusUnderReview
	case StatusUnderReview:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusIssued
	case StatusIssued:
		return to == StatusInUse || to == StatusReturned
	case StatusInUse:
		return to == StatusOverdue || to == StatusReturned
	case StatusOverdue:
		return to == StatusReturned
	case StatusReturned:
		return to == StatusCompleted
	case StatusRejected, StatusCompleted:
		return false
	}
	return false
}
