package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

const mixedPolicyResponse = `{
	"a": {"result": "PASS", "evidence": "section 1", "reason": "stated"},
	"b": {"result": "FAIL", "evidence": "", "reason": "absent"},
	"c": {"result": "N/A", "evidence": "section 9", "reason": "vague"}
}`

func newEvaluationFixture(oracle *mockPolicyOracle, services ...model.Service) (*EvaluationService, *mockServiceStore) {
	store := newMockServiceStore(services...)
	svc := NewEvaluationService(oracle, store, threeItemChecklist(), discardLogger())
	return svc, store
}

func TestEvaluate_MixedVerdicts(t *testing.T) {
	oracle := &mockPolicyOracle{response: mixedPolicyResponse}
	svc, _ := newEvaluationFixture(oracle)

	eval := svc.Evaluate(context.Background(), "policy text", "Service")

	assert.Equal(t, model.GradeB, eval.Grade)
	assert.InDelta(t, 0.5, eval.Score, 1e-9)
	assert.Equal(t, "Missing or omitted: Retention. Not clearly specified: Sharing.", eval.Report)
	assert.Equal(t, "policy text", oracle.gotText)
}

func TestEvaluate_OracleFailure(t *testing.T) {
	oracle := &mockPolicyOracle{err: fmt.Errorf("%w: dial tcp: connection refused", driven.ErrOracleUnavailable)}
	svc, _ := newEvaluationFixture(oracle)

	eval := svc.Evaluate(context.Background(), "policy text", "Service")

	assert.Equal(t, model.GradeUnrated, eval.Grade)
	assert.Zero(t, eval.Score)
	assert.Equal(t, "Evaluation failed: the evaluation service could not be reached.", eval.Report)
	// Transport details stay in the log, not in the report.
	assert.NotContains(t, eval.Report, "dial tcp")
}

func TestEvaluate_UnparseablePayload(t *testing.T) {
	oracle := &mockPolicyOracle{response: "the policy seems adequate"}
	svc, _ := newEvaluationFixture(oracle)

	eval := svc.Evaluate(context.Background(), "policy text", "Service")

	assert.Equal(t, model.GradeUnrated, eval.Grade)
	assert.Equal(t, "Evaluation failed: the policy could not be analyzed.", eval.Report)
}

func TestEvaluate_ChecklistMismatch(t *testing.T) {
	oracle := &mockPolicyOracle{response: `{"a":{"result":"PASS"}}`}
	svc, _ := newEvaluationFixture(oracle)

	eval := svc.Evaluate(context.Background(), "policy text", "Service")

	assert.Equal(t, model.GradeUnrated, eval.Grade)
	assert.Equal(t, "Evaluation failed: the analysis did not cover every checklist item.", eval.Report)
}

func TestEvaluateService_WritesBack(t *testing.T) {
	oracle := &mockPolicyOracle{response: mixedPolicyResponse}
	svc, store := newEvaluationFixture(oracle, model.Service{
		ID: 3, Name: "Service", Domain: "service.io", ReviewPending: true,
	})
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }

	updated, eval, err := svc.EvaluateService(context.Background(), 3, "policy text")
	require.NoError(t, err)

	assert.Equal(t, model.GradeB, eval.Grade)
	assert.Equal(t, model.GradeB, updated.Grade)
	require.NotNil(t, updated.SecurityScore)
	assert.InDelta(t, 0.5, *updated.SecurityScore, 1e-9)
	assert.False(t, updated.ReviewPending)
	assert.Equal(t, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC), updated.EvaluatedAt)

	stored := store.services[0]
	assert.Equal(t, model.GradeB, stored.Grade)
	assert.False(t, stored.ReviewPending)
	assert.Equal(t, "Missing or omitted: Retention. Not clearly specified: Sharing.", stored.SecurityReport)
}

func TestEvaluateService_OracleFailureStillRecorded(t *testing.T) {
	oracle := &mockPolicyOracle{err: errors.New("down")}
	svc, store := newEvaluationFixture(oracle, model.Service{ID: 3, Name: "Service", ReviewPending: true})

	_, eval, err := svc.EvaluateService(context.Background(), 3, "policy text")
	require.NoError(t, err)

	assert.Equal(t, model.GradeUnrated, eval.Grade)
	assert.Equal(t, model.GradeUnrated, store.services[0].Grade)
	assert.False(t, store.services[0].ReviewPending)
}

func TestEvaluateService_Missing(t *testing.T) {
	svc, _ := newEvaluationFixture(&mockPolicyOracle{response: mixedPolicyResponse})

	_, _, err := svc.EvaluateService(context.Background(), 404, "policy text")
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestOverrideGrade(t *testing.T) {
	svc, store := newEvaluationFixture(&mockPolicyOracle{}, model.Service{
		ID: 3, Name: "Service", ReviewPending: true,
	})

	updated, err := svc.OverrideGrade(context.Background(), 3, model.GradeC)
	require.NoError(t, err)

	assert.Equal(t, model.GradeC, updated.Grade)
	assert.False(t, updated.ReviewPending)
	assert.Nil(t, updated.SecurityScore)
	assert.Equal(t, model.GradeC, store.services[0].Grade)
}

func TestOverrideGrade_Missing(t *testing.T) {
	svc, _ := newEvaluationFixture(&mockPolicyOracle{})

	_, err := svc.OverrideGrade(context.Background(), 404, model.GradeA)
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestNewEvaluationService_DefaultChecklist(t *testing.T) {
	svc := NewEvaluationService(&mockPolicyOracle{}, newMockServiceStore(), nil, discardLogger())
	assert.Len(t, svc.checklist, len(model.DefaultChecklist()))
}
