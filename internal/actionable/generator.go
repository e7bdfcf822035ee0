package actionable

import (
	"fmt"

	"robocall-qa-go/internal/aggregator"
)

const (
	zeroToleranceRate = 0.10
	missRate          = 0.35
)

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

func Generate(ins aggregator.Insight) ActionCard {
	if ins.Scored == 0 {
		return ActionCard{
			Insight: fmt.Sprintf("No scored calls out of %d", ins.Evaluations),
			Action:  "Check platform credentials and the rubric prompt output format",
			Impact:  "No QA signal until evaluations succeed",
		}
	}
	if rate := float64(ins.ZeroTolerance) / float64(ins.Scored); rate >= zeroToleranceRate {
		return ActionCard{
			Insight: fmt.Sprintf("Zero-tolerance violations in %.0f%% of scored calls", rate*100),
			Action:  "Review flagged calls with the team lead; re-brief the compliance script",
			Impact:  "Remove calls scored 0 and the complaint risk behind them",
		}
	}
	if worst, rate := ins.WorstCriterion(); rate >= missRate && worst != "" {
		return ActionCard{
			Insight: fmt.Sprintf("%q missed in %.0f%% of calls", worst, rate*100),
			Action:  "Targeted coaching on this step; add it to the call script checklist",
			Impact:  fmt.Sprintf("Lift the average score (now %.1f)", ins.AverageScore),
		}
	}
	if ins.GreetingMisses*2 >= ins.Scored && ins.GreetingMisses > 0 {
		return ActionCard{
			Insight: fmt.Sprintf("Late greeting in %d of %d calls", ins.GreetingMisses, ins.Scored),
			Action:  "Shorten the opening prompt so the agent greets within SOP",
			Impact:  "Fewer early hang-ups",
		}
	}
	return ActionCard{
		Insight: "No strong failure pattern detected",
		Action:  "Monitor and collect more data",
		Impact:  "Low immediate intervention",
	}
}
