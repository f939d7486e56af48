package domain

import "strings"

// OptionCount is the number of answer options every question carries.
const OptionCount = 5

// Question is one multiple-choice item. Options holds exactly OptionCount
// entries and CorrectIndex points at the single correct one.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Clone returns a deep copy so callers can permute options freely.
func (q Question) Clone() Question {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	return q
}

// CorrectOption returns the text of the correct option, or "" when the
// index is out of range.
func (q Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// Valid reports whether the question satisfies the structural invariants.
func (q Question) Valid() bool {
	return strings.TrimSpace(q.Prompt) != "" &&
		len(q.Options) == OptionCount &&
		q.CorrectIndex >= 0 && q.CorrectIndex < OptionCount &&
		strings.TrimSpace(q.Explanation) != ""
}

// Quiz is the ordered result of one generation request.
type Quiz struct {
	Questions []Question `json:"questions"`
}

func (q *Quiz) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Questions)
}
