package aggregator

import (
	"fmt"
	"sort"

	"robocall-qa-go/internal/processor"
	"robocall-qa-go/internal/types"
)

type Insight struct {
	Evaluations      int            `json:"evaluations"`
	Scored           int            `json:"scored"`
	Failed           int            `json:"failed"`
	ZeroTolerance    int            `json:"zero_tolerance"`
	AverageScore     float64        `json:"average_score"`
	GreetingMisses   int            `json:"greeting_misses"`
	HoldViolations   int            `json:"hold_violations"`
	MissedCriteria   map[string]int `json:"missed_criteria"`
	CriterionAnswers map[string]int `json:"criterion_answers"`
}

// Aggregate summarises a batch. Scores are averaged over scored calls only.
func Aggregate(results []processor.Result) Insight {
	ins := Insight{
		Evaluations:      len(results),
		MissedCriteria:   map[string]int{},
		CriterionAnswers: map[string]int{},
	}
	total := 0.0
	for _, r := range results {
		if r.Scorecard == nil {
			ins.Failed++
			continue
		}
		ins.Scored++
		total += r.Scorecard.TotalScore
		if r.Scorecard.Verdict.ZeroToleranceFlag {
			ins.ZeroTolerance++
		}
		if r.Audit.Greeting.Found && !r.Audit.Greeting.Passed {
			ins.GreetingMisses++
		}
		if r.Audit.Hold.ExceedsLimit {
			ins.HoldViolations++
		}
		for i, item := range r.Scorecard.Verdict.Results {
			name := criterionName(item, i)
			ins.CriterionAnswers[name]++
			if item.Answer != types.AnswerYes {
				ins.MissedCriteria[name]++
			}
		}
	}
	if ins.Scored > 0 {
		ins.AverageScore = total / float64(ins.Scored)
	}
	return ins
}

// MissRate is the share of answered items for criterion that were not YES.
func (ins Insight) MissRate(criterion string) float64 {
	n := ins.CriterionAnswers[criterion]
	if n == 0 {
		return 0
	}
	return float64(ins.MissedCriteria[criterion]) / float64(n)
}

// WorstCriterion returns the criterion with the highest miss rate; ties go
// to the alphabetically first name.
func (ins Insight) WorstCriterion() (string, float64) {
	names := make([]string, 0, len(ins.MissedCriteria))
	for k := range ins.MissedCriteria {
		names = append(names, k)
	}
	sort.Strings(names)
	worst, highest := "", 0.0
	for _, k := range names {
		if rate := ins.MissRate(k); rate > highest {
			worst, highest = k, rate
		}
	}
	return worst, highest
}

func criterionName(item types.RubricItem, idx int) string {
	if item.Criterion != "" {
		return item.Criterion
	}
	return fmt.Sprintf("item %d", idx+1)
}
