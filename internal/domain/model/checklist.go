package model

// ChecklistItem pairs a stable result key with its human-readable title.
// The checklist is configuration: items are matched to oracle results by
// Key, and the slice order drives report ordering.
type ChecklistItem struct {
	Key   string
	Title string
}

// ChecklistItemResult is the oracle's evaluation of one checklist item.
type ChecklistItemResult struct {
	Verdict  Verdict
	Evidence string
	Reason   string
}

// ChecklistResult maps checklist item keys to their evaluations. It is
// transient: only its reduction (score, grade, report) is persisted.
type ChecklistResult map[string]ChecklistItemResult

// DefaultChecklist returns the built-in privacy policy checklist used when
// no custom checklist is configured.
func DefaultChecklist() []ChecklistItem {
	return []ChecklistItem{
		{Key: "collection_purpose", Title: "Purpose of collection"},
		{Key: "collected_items", Title: "Data items collected"},
		{Key: "retention_period", Title: "Retention period"},
		{Key: "third_party_sharing", Title: "Third-party sharing"},
		{Key: "user_rights", Title: "User rights and deletion"},
		{Key: "security_measures", Title: "Security measures"},
		{Key: "contact_point", Title: "Privacy contact point"},
	}
}
