package openai

import (
	"fmt"
	"strings"

	"github.com/hyunwookim/mailvet/internal/domain/model"
)

const classifierPrompt = `You classify emails for a subscription tracker.

The user message is a JSON object of the form
{"emails":[{"id":1,"subject":"...","sender":"..."}]}.

For each email, decide whether it confirms that the recipient signed up for,
registered with, or created an account on an online service. Welcome emails,
account verification emails, and signup confirmations count. Newsletters,
receipts, promotions, and notifications from services the user already uses
do not.

Respond with JSON only, no prose and no markdown fences:
{"results":[{"id":1,"sender":"...","signup":"Y"}]}

"signup" must be exactly "Y" or "N". Include one result per input email and
copy the id and sender fields unchanged.`

// buildPolicyPrompt renders the evaluation instructions for a checklist.
// The model must answer with one entry per checklist key.
func buildPolicyPrompt(checklist []model.ChecklistItem) string {
	var items strings.Builder
	for _, item := range checklist {
		fmt.Fprintf(&items, "- %q: %s\n", item.Key, item.Title)
	}

	return fmt.Sprintf(`You audit privacy policies.

The user message is the full text of a privacy policy. Evaluate it against
this checklist:

%s
For each checklist key, decide:
- "PASS" when the policy clearly addresses the item,
- "FAIL" when the policy omits the item entirely,
- "N/A" when the policy mentions the item but leaves it vague or ambiguous.

Respond with JSON only, no prose and no markdown fences, as an object keyed
by checklist key:
{"collection_purpose":{"result":"PASS","evidence":"<quoted passage or empty>","reason":"<one sentence>"}}

Include every checklist key exactly once and no other keys.`, items.String())
}
