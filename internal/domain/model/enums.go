package model

// Classification represents the verdict assigned to an email by the
// classification pipeline.
type Classification string

const (
	// ClassificationUncertain is the initial state before any oracle verdict.
	ClassificationUncertain Classification = "UNCERTAIN"
	// ClassificationRegister marks a signup-confirmation email.
	ClassificationRegister Classification = "REGISTER"
	// ClassificationOther marks everything else.
	ClassificationOther Classification = "OTHER"
)

// RiskGrade represents the privacy/security grade of a service.
// The zero value means the service has never been evaluated.
type RiskGrade string

const (
	GradeNone    RiskGrade = "" // Never evaluated.
	GradeA       RiskGrade = "A"
	GradeB       RiskGrade = "B"
	GradeC       RiskGrade = "C"
	GradeUnrated RiskGrade = "Unrated" // Evaluation attempted but failed.
)

// LinkStatus represents the state of a user-service subscription link.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "Active"
	LinkStatusInactive LinkStatus = "Inactive"
)

// Verdict is the outcome of a single checklist item evaluation.
type Verdict string

const (
	VerdictPass          Verdict = "PASS"
	VerdictFail          Verdict = "FAIL"
	VerdictNotApplicable Verdict = "N/A"
)

// Value maps a verdict to its scoring weight: PASS counts fully, FAIL not
// at all, and N/A half-way so ambiguity is penalized less than failure.
func (v Verdict) Value() float64 {
	switch v {
	case VerdictPass:
		return 1.0
	case VerdictNotApplicable:
		return 0.5
	default:
		return 0.0
	}
}
