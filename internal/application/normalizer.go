package application

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EmailVerdict is one normalized classifier verdict: the email it applies to
// and whether the classifier saw a signup confirmation.
type EmailVerdict struct {
	EmailID      int64
	Registration bool
}

// stripCodeFences removes a leading ```json (or bare ```) fence and a
// trailing ``` fence. Hosted models wrap JSON output in markdown fences
// often enough that this is cheaper to tolerate than to reject.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NormalizeClassification parses the classifier oracle's raw text output into
// verdicts. The expected shape is {"results":[{"id":1,"signup":"Y"}]}.
//
// Entries that are not JSON objects or carry no positive id are skipped, not
// errored: a partially usable batch is still a usable batch. Only a payload
// that fails to parse at the top level returns ErrMalformedResponse. A
// signup value of exactly "Y" marks a registration; any other value,
// including a missing field, does not.
func NormalizeClassification(raw string) ([]EmailVerdict, error) {
	clean := stripCodeFences(raw)

	var payload struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	verdicts := make([]EmailVerdict, 0, len(payload.Results))
	for _, entry := range payload.Results {
		var result struct {
			ID     int64  `json:"id"`
			Signup string `json:"signup"`
		}
		if err := json.Unmarshal(entry, &result); err != nil {
			continue
		}
		if result.ID <= 0 {
			continue
		}

		verdicts = append(verdicts, EmailVerdict{
			EmailID:      result.ID,
			Registration: result.Signup == "Y",
		})
	}

	return verdicts, nil
}
