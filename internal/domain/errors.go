package domain

import "errors"

// Error taxonomy for the core. Callers classify failures with errors.Is;
// the API layer maps each class to an HTTP status.
var (
	// ErrValidation marks missing or malformed input rejected before any
	// remote call is made.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication marks a wrong credential, security answer, or math
	// answer. The flow halts at the current step.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound marks an unknown process code, missing security profile,
	// or vanished account. For the relay this is a terminal poll condition.
	ErrNotFound = errors.New("not found")

	// ErrTransient marks a network or remote failure worth retrying.
	ErrTransient = errors.New("transient failure")
)
