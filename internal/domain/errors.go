package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrSecurityNotFound   = errors.New("security_not_found")
	ErrDuplicateSecurity  = errors.New("duplicate_security")
	ErrInsufficientFunds  = errors.New("insufficient_funds")
	ErrInsufficientShares = errors.New("insufficient_shares")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrMalformedState     = errors.New("malformed_state")
	ErrInvariantViolation = errors.New("invariant_violation")
	ErrSnapshotNotFound   = errors.New("snapshot_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
