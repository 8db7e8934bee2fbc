package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Evaluation is the reduced outcome of running a privacy policy through the
// checklist.
type Evaluation struct {
	Grade  model.RiskGrade
	Score  float64
	Report string
}

// EvaluationService grades services from their privacy policy text.
type EvaluationService struct {
	oracle    driven.PolicyOracle
	services  driven.ServiceStore
	checklist []model.ChecklistItem
	logger    *slog.Logger
	now       func() time.Time
}

// NewEvaluationService creates an EvaluationService. An empty checklist falls
// back to the default checklist.
func NewEvaluationService(
	oracle driven.PolicyOracle,
	services driven.ServiceStore,
	checklist []model.ChecklistItem,
	logger *slog.Logger,
) *EvaluationService {
	if len(checklist) == 0 {
		checklist = model.DefaultChecklist()
	}
	return &EvaluationService{
		oracle:    oracle,
		services:  services,
		checklist: checklist,
		logger:    logger,
		now:       time.Now,
	}
}

// Evaluate runs the policy oracle over the given policy text and reduces the
// per-item verdicts to a grade, score, and report. Oracle failures,
// unparseable payloads, and checklist mismatches never escape as errors;
// they degrade to an Unrated grade with an explanatory report, so a flaky
// oracle cannot wedge the evaluation flow.
func (s *EvaluationService) Evaluate(ctx context.Context, policyText, serviceName string) Evaluation {
	raw, err := s.oracle.EvaluatePolicy(ctx, policyText)
	if err != nil {
		return s.unrated(serviceName, err)
	}

	results, err := parseChecklistPayload(raw)
	if err != nil {
		return s.unrated(serviceName, err)
	}

	score, report, err := ScoreChecklist(results, s.checklist)
	if err != nil {
		return s.unrated(serviceName, err)
	}

	return Evaluation{
		Grade:  GradeForScore(score),
		Score:  score,
		Report: report,
	}
}

func (s *EvaluationService) unrated(serviceName string, err error) Evaluation {
	s.logger.Error("policy evaluation failed", "service", serviceName, "error", err)
	return Evaluation{
		Grade:  model.GradeUnrated,
		Score:  0.0,
		Report: fmt.Sprintf("Evaluation failed: %s.", failureReason(err)),
	}
}

// failureReason reduces an evaluation error to a caller-facing phrase. The
// report flows out through the API, so the raw error stays in the log only.
func failureReason(err error) string {
	switch {
	case errors.Is(err, driven.ErrOracleUnavailable):
		return "the evaluation service could not be reached"
	case errors.Is(err, ErrMalformedResponse):
		return "the policy could not be analyzed"
	case errors.Is(err, ErrChecklistMismatch):
		return "the analysis did not cover every checklist item"
	default:
		return "an internal error occurred"
	}
}

// EvaluateService evaluates a stored service's policy text and writes the
// outcome back, stamping the evaluation time and clearing the review flag.
// A missing service returns ErrServiceNotFound.
func (s *EvaluationService) EvaluateService(ctx context.Context, serviceID int64, policyText string) (*model.Service, Evaluation, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, Evaluation{}, fmt.Errorf("load service %d: %w", serviceID, err)
	}
	if svc == nil {
		return nil, Evaluation{}, fmt.Errorf("service %d: %w", serviceID, ErrServiceNotFound)
	}

	eval := s.Evaluate(ctx, policyText, svc.Name)

	evaluatedAt := s.now().UTC()
	if err := s.services.RecordEvaluation(ctx, serviceID, eval.Grade, eval.Score, eval.Report, evaluatedAt); err != nil {
		return nil, Evaluation{}, fmt.Errorf("record evaluation for service %d: %w", serviceID, err)
	}

	svc.Grade = eval.Grade
	svc.SecurityScore = &eval.Score
	svc.SecurityReport = eval.Report
	svc.EvaluatedAt = evaluatedAt
	svc.ReviewPending = false

	return svc, eval, nil
}

// OverrideGrade records a manual grade decision on a service, stamping the
// evaluation time and clearing the review flag. The score is left untouched.
func (s *EvaluationService) OverrideGrade(ctx context.Context, serviceID int64, grade model.RiskGrade) (*model.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("load service %d: %w", serviceID, err)
	}
	if svc == nil {
		return nil, fmt.Errorf("service %d: %w", serviceID, ErrServiceNotFound)
	}

	evaluatedAt := s.now().UTC()
	if err := s.services.SetGrade(ctx, serviceID, grade, evaluatedAt); err != nil {
		return nil, fmt.Errorf("set grade for service %d: %w", serviceID, err)
	}

	svc.Grade = grade
	svc.EvaluatedAt = evaluatedAt
	svc.ReviewPending = false
	return svc, nil
}
