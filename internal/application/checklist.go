package application

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyunwookim/mailvet/internal/domain/model"
)

// parseChecklistPayload parses the policy oracle's raw text output into
// per-item results. The expected shape is an object keyed by checklist key:
// {"collection_purpose":{"result":"PASS","evidence":"...","reason":"..."}}.
func parseChecklistPayload(raw string) (model.ChecklistResult, error) {
	clean := stripCodeFences(raw)

	var payload map[string]struct {
		Result   string `json:"result"`
		Evidence string `json:"evidence"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	results := make(model.ChecklistResult, len(payload))
	for key, entry := range payload {
		results[key] = model.ChecklistItemResult{
			Verdict:  model.Verdict(entry.Result),
			Evidence: entry.Evidence,
			Reason:   entry.Reason,
		}
	}
	return results, nil
}

// ScoreChecklist reduces per-item verdicts to a score and a human-readable
// report. The score is the mean verdict value over every configured item.
// Results must cover the configured checklist exactly; anything else returns
// ErrChecklistMismatch. The report names failed items as missing and N/A
// items as unclear, in checklist order. Verdicts other than PASS and N/A
// score as failures.
func ScoreChecklist(results model.ChecklistResult, checklist []model.ChecklistItem) (float64, string, error) {
	if len(checklist) == 0 {
		return 0, "", fmt.Errorf("%w: no checklist configured", ErrChecklistMismatch)
	}
	if len(results) != len(checklist) {
		return 0, "", fmt.Errorf("%w: got %d results for %d items", ErrChecklistMismatch, len(results), len(checklist))
	}

	var sum float64
	var missing, unclear []string
	for _, item := range checklist {
		result, ok := results[item.Key]
		if !ok {
			return 0, "", fmt.Errorf("%w: no result for item %q", ErrChecklistMismatch, item.Key)
		}

		value := result.Verdict.Value()
		sum += value
		switch value {
		case 0.0:
			missing = append(missing, item.Title)
		case 0.5:
			unclear = append(unclear, item.Title)
		}
	}

	return sum / float64(len(checklist)), buildReport(missing, unclear), nil
}

// buildReport renders the findings as prose. An empty report means every
// item passed.
func buildReport(missing, unclear []string) string {
	var clauses []string
	if len(missing) > 0 {
		clauses = append(clauses, fmt.Sprintf("Missing or omitted: %s.", strings.Join(missing, ", ")))
	}
	if len(unclear) > 0 {
		clauses = append(clauses, fmt.Sprintf("Not clearly specified: %s.", strings.Join(unclear, ", ")))
	}
	return strings.Join(clauses, " ")
}

// GradeForScore maps a checklist score onto a risk grade. Thresholds are
// inclusive at the lower bound: 0.8 and above is A, 0.5 and above is B,
// everything below is C.
func GradeForScore(score float64) model.RiskGrade {
	switch {
	case score >= 0.8:
		return model.GradeA
	case score >= 0.5:
		return model.GradeB
	default:
		return model.GradeC
	}
}
