package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"robocall-qa-go/internal/types"
)

const fence = "```"

// ParseError reports a completion that could not be read as a verdict.
// Raw holds the text exactly as the model returned it.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse verdict: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StripFence removes a markdown code fence wrapping the whole text: the
// first line must open with ``` and the last line must be a fence too.
// Anything else is returned trimmed but otherwise untouched.
func StripFence(text string) string {
	s := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if !strings.HasPrefix(s, fence) {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[len(lines)-1], fence) {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

type wireItem struct {
	Criterion     string   `json:"criterion"`
	Weight        *float64 `json:"weight"`
	Answer        string   `json:"answer"`
	Justification string   `json:"justification"`
}

type wireVerdict struct {
	ZeroToleranceFlag bool       `json:"zero_tolerance_flag"`
	Results           []wireItem `json:"results"`
}

// ParseVerdict reads the model's completion into a typed verdict.
func ParseVerdict(text string) (types.Verdict, error) {
	body := StripFence(text)
	fail := func(err error) (types.Verdict, error) {
		return types.Verdict{}, &ParseError{Raw: text, Err: err}
	}

	raw := []byte(body)
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return fail(errors.New("completion is not a JSON object"))
	}

	var w wireVerdict
	if err := json.Unmarshal(raw, &w); err != nil {
		return fail(err)
	}

	v := types.Verdict{
		ZeroToleranceFlag: w.ZeroToleranceFlag,
		Results:           make([]types.RubricItem, 0, len(w.Results)),
		Raw:               json.RawMessage(raw),
	}
	for i, item := range w.Results {
		// only YES items are summed, so only they must carry a weight
		weight := 0.0
		switch {
		case item.Weight != nil:
			weight = *item.Weight
		case item.Answer == types.AnswerYes:
			return fail(fmt.Errorf("results[%d]: missing weight", i))
		}
		v.Results = append(v.Results, types.RubricItem{
			Criterion:     item.Criterion,
			Weight:        weight,
			Answer:        item.Answer,
			Justification: item.Justification,
		})
	}
	return v, nil
}
