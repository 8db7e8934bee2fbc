package model

import "time"

// Service is a shared, independently-lifecycled record of an online service
// that users subscribe to. Services are auto-created by domain resolution
// and later graded from their privacy policy.
type Service struct {
	ID             int64
	Name           string
	Domain         string // Canonical sending domain; empty until resolved.
	Grade          RiskGrade
	SecurityScore  *float64
	SecurityReport string
	EvaluatedAt    time.Time // Zero until the first evaluation or manual override.
	// ReviewPending marks auto-created services awaiting admin review.
	// Kept separate from Grade so "not yet graded" can never be confused
	// with a computed grade.
	ReviewPending bool
	CreatedAt     time.Time
}

// IsEvaluated returns true once a grade has been recorded, whether computed
// or set manually.
func (s Service) IsEvaluated() bool {
	return s.Grade != GradeNone
}
