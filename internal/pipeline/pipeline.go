// Package pipeline evaluates a batch of conversations one after another.
package pipeline

import (
	"context"

	"robocall-qa-go/internal/actionable"
	"robocall-qa-go/internal/aggregator"
	"robocall-qa-go/internal/dataset"
	"robocall-qa-go/internal/logger"
	"robocall-qa-go/internal/processor"
)

// Evaluator is the single-conversation step, usually *processor.Processor.
type Evaluator interface {
	ProcessConversation(ctx context.Context, id string, withAudio bool) (processor.Result, error)
}

type Options struct {
	WithAudio bool
	// Limit caps the number of records processed; 0 means all.
	Limit int
}

type Batch struct {
	Results []processor.Result    `json:"results"`
	Insight aggregator.Insight    `json:"insight"`
	Action  actionable.ActionCard `json:"action"`
}

// Run processes records sequentially. A failing conversation is recorded in
// its Result and the batch moves on; only cancellation stops it early, in
// which case the partial batch is returned with ctx.Err().
func Run(ctx context.Context, ev Evaluator, records []dataset.Record, opts Options) (Batch, error) {
	log := logger.New().WithComponent("pipeline")
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	log.WithField("records", len(records)).Info("batch started")

	var b Batch
	var runErr error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		recLog := log.WithField("conversation_id", rec.ConversationID).WithField("row", rec.Row)
		res, err := ev.ProcessConversation(ctx, rec.ConversationID, opts.WithAudio)
		if res.ConversationID == "" {
			res.ConversationID = rec.ConversationID
		}
		if err != nil {
			recLog.WithError(err).Warn("conversation failed")
			if res.Error == "" {
				res.Error = err.Error()
			}
		}
		b.Results = append(b.Results, res)
	}

	b.Insight = aggregator.Aggregate(b.Results)
	b.Action = actionable.Generate(b.Insight)
	log.WithField("scored", b.Insight.Scored).
		WithField("failed", b.Insight.Failed).
		WithField("average_score", b.Insight.AverageScore).
		Info("batch finished")
	return b, runErr
}

// Rows flattens results for dataset.WriteReport.
func Rows(results []processor.Result) []dataset.ReportRow {
	rows := make([]dataset.ReportRow, len(results))
	for i, r := range results {
		row := dataset.ReportRow{
			ConversationID: r.ConversationID,
			RunID:          r.RunID,
			GreetingPassed: r.Audit.Greeting.Passed,
			Interruptions:  r.Audit.Interruptions.Count,
			HoldExceeded:   r.Audit.Hold.ExceedsLimit,
			Error:          r.Error,
		}
		if sc := r.Scorecard; sc != nil {
			total := sc.TotalScore
			row.TotalScore = &total
			row.ZeroTolerance = sc.Verdict.ZeroToleranceFlag
			row.SavedPath = sc.SavedPath
		}
		rows[i] = row
	}
	return rows
}
