package loan

import "errors"

var (
	ErrNotFound               = errors.New("loan application not found")
	ErrInvalidToken           = errors.New("approval token is invalid")
	ErrExpiredToken           = errors.New("approval token has expired")
	ErrUnauthorized           = errors.New("actor is not allowed to approve loan applications")
	ErrInvalidStateTransition = errors.New("loan application not in a state that allows this action")
	ErrAssetUnavailable       = errors.New("requested asset is not available for the loan period")
	ErrLoanTooLong            = errors.New("loan period exceeds the category maximum")
	ErrNoItems                = errors.New("loan application has no assets")
	ErrInvalidApplicant       = errors.New("applicant name and email are required")
	ErrNotOverdue             = errors.New("loan period has not ended")
)
