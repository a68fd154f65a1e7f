// Package common defines shared constants and sentinel errors used across the
// profile sync service. Callers should match these values with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrIdentityNotFound means no profile could be resolved for the
	// authenticated principal. Terminal for an editing session: the caller
	// must be sent back to authentication/onboarding, not retried.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrValidationFailed blocks forward navigation for one step only.
	ErrValidationFailed = errors.New("validation failed")

	// ErrPersistenceFailed marks a failed local save. Recoverable: surfaced
	// as a non-blocking status and retried on the next natural trigger.
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrReconciliationPartial means some checklist entries were not
	// persisted; they stay stale until the next save.
	ErrReconciliationPartial = errors.New("reconciliation partially failed")

	// ErrRelayFailed is only ever logged, never user-visible.
	ErrRelayFailed = errors.New("relay failed")

	// ErrSessionNotFound means the caller addressed an editing session that
	// was never started or has already ended.
	ErrSessionNotFound = errors.New("editing session not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
