package driven

import (
	"context"
	"errors"
)

// ErrOracleUnavailable wraps transport and API failures from oracle calls.
// Callers degrade gracefully when they see it: classification batches return
// empty, evaluations record an Unrated grade.
var ErrOracleUnavailable = errors.New("oracle unavailable")

// EmailSummary is the slice of an email sent to the classification oracle:
// just enough to judge whether it confirms a service signup.
type EmailSummary struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
}

// ClassifierOracle defines the driven port for the hosted model that
// classifies emails as signup confirmations. It returns the model's raw
// text output; parsing and validation belong to the application layer.
// Calls are synchronous single attempts; retry policy is the caller's concern.
type ClassifierOracle interface {
	ClassifyEmails(ctx context.Context, emails []EmailSummary) (string, error)
}

// PolicyOracle defines the driven port for the hosted model that evaluates
// a privacy policy document against the checklist. As with ClassifierOracle,
// the raw text output is returned unparsed.
type PolicyOracle interface {
	EvaluatePolicy(ctx context.Context, policyText string) (string, error)
}
