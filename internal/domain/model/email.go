package model

import "time"

// Email represents a single ingested mailbox message owned by a user.
// The pipeline only ever mutates Classification; emails are never deleted here.
type Email struct {
	ID             int64
	UserID         int64
	Provider       string // e.g., "GMAIL".
	MessageID      string // Provider-side message ID; unique when present.
	Sender         string
	Subject        string
	Snippet        string
	ReceivedAt     time.Time // Zero when the provider supplied no timestamp.
	Classification Classification
}

// SubscriptionDate returns the date a link created from this email should
// carry: the received date, or today when the email has no timestamp.
func (e Email) SubscriptionDate(now time.Time) time.Time {
	if e.ReceivedAt.IsZero() {
		return now.UTC().Truncate(24 * time.Hour)
	}
	return e.ReceivedAt.UTC().Truncate(24 * time.Hour)
}
