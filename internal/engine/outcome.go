package engine

// MissingItem records one plan item that could not be resolved to a
// configured selector, with the closest catalog names when fuzzy matching
// found any.
type MissingItem struct {
	Asked       string   `json:"asked"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Outcome is the structured result of one plan execution and the primary
// contract with callers. The line-oriented Log is a derived rendering kept
// for compatibility: callers historically match `[verify] RESULT: PASS`
// against it.
type Outcome struct {
	OK           bool          `json:"ok"`
	Verified     bool          `json:"verified"`
	MissingItems []MissingItem `json:"missing_items,omitempty"`
	Mismatches   []string      `json:"mismatches,omitempty"`
	Log          []string      `json:"log,omitempty"`
}
