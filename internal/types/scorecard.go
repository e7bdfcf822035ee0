package types

import (
	"encoding/json"
	"time"
)

// AnswerYes is the only answer that earns a rubric item its weight.
const AnswerYes = "YES"

type RubricItem struct {
	Criterion     string  `json:"criterion,omitempty"`
	Weight        float64 `json:"weight"`
	Answer        string  `json:"answer"`
	Justification string  `json:"justification,omitempty"`
}

// Verdict is the model's structured answer. Raw keeps the exact payload so
// it can be persisted without losing fields the rubric added.
type Verdict struct {
	ZeroToleranceFlag bool            `json:"zero_tolerance_flag"`
	Results           []RubricItem    `json:"results"`
	Raw               json.RawMessage `json:"-"`
}

type ScorecardResult struct {
	Verdict     Verdict   `json:"verdict"`
	TotalScore  float64   `json:"total_score"`
	EvaluatedAt time.Time `json:"evaluated_at"`
	SavedPath   string    `json:"saved_path,omitempty"`
}
