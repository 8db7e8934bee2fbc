package application

import "errors"

var (
	// ErrMalformedResponse is returned when an oracle's text output cannot be
	// parsed into the expected JSON structure.
	ErrMalformedResponse = errors.New("oracle response is not valid JSON")

	// ErrInvalidSender is returned when a sender address carries no
	// extractable domain.
	ErrInvalidSender = errors.New("sender address has no extractable domain")

	// ErrChecklistMismatch is returned when evaluation results do not line up
	// one-to-one with the configured checklist keys.
	ErrChecklistMismatch = errors.New("checklist results do not match configured checklist")

	// ErrUserNotFound is returned by listings scoped to a user that does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrServiceNotFound is returned by operations on a missing service.
	ErrServiceNotFound = errors.New("service not found")
)
