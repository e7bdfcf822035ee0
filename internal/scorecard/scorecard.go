// Package scorecard grades a formatted transcript against a rubric prompt
// and persists the model's verdict.
package scorecard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"robocall-qa-go/internal/extractor"
	"robocall-qa-go/internal/llm"
	"robocall-qa-go/internal/logger"
	"robocall-qa-go/internal/transcript"
	"robocall-qa-go/internal/types"
)

// BuildPrompt appends the transcript block to the rubric instructions.
func BuildPrompt(rubric, transcriptText string) string {
	return rubric + "\n\nTranscript:\n" + transcriptText + "\n"
}

// Score is 0 under a zero-tolerance violation, otherwise the sum of the
// weights of items answered exactly "YES".
func Score(v types.Verdict) float64 {
	if v.ZeroToleranceFlag {
		return 0
	}
	total := 0.0
	for _, item := range v.Results {
		if item.Answer == types.AnswerYes {
			total += item.Weight
		}
	}
	return total
}

// LoadRubric reads the rubric prompt verbatim.
func LoadRubric(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read rubric prompt: %w", err)
	}
	return string(b), nil
}

type Evaluator struct {
	Completer  llm.Completer
	ResultsDir string
	// Now defaults to time.Now.
	Now func() time.Time

	// mu serialises saves so concurrent evaluations queue for file names.
	mu  sync.Mutex
	log *logrus.Entry
}

// maxSaveAttempts bounds how many seconds a save waits for a free name.
const maxSaveAttempts = 3

func NewEvaluator(c llm.Completer, resultsDir string) *Evaluator {
	return &Evaluator{
		Completer:  c,
		ResultsDir: resultsDir,
		Now:        time.Now,
		log:        logger.New().WithComponent("scorecard"),
	}
}

// Evaluate grades lines against rubric. A completion failure is returned
// unchanged; an unreadable verdict comes back as *extractor.ParseError and
// nothing is written.
func (e *Evaluator) Evaluate(ctx context.Context, lines []types.FormattedLine, rubric string) (*types.ScorecardResult, error) {
	prompt := BuildPrompt(rubric, transcript.Text(lines))
	e.logger().WithField("prompt_len", len(prompt)).WithField("lines", len(lines)).Debug("requesting completion")

	reply, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	e.logger().Debug("completion raw:\n" + reply)

	verdict, err := extractor.ParseVerdict(reply)
	if err != nil {
		return nil, err
	}

	res := &types.ScorecardResult{
		Verdict:    verdict,
		TotalScore: Score(verdict),
	}
	if verdict.ZeroToleranceFlag {
		e.logger().Warn("zero tolerance violation detected, total score set to 0")
	}

	path, ts, err := e.save(ctx, verdict)
	if err != nil {
		return nil, err
	}
	res.SavedPath = path
	res.EvaluatedAt = ts
	e.logger().WithFields(logrus.Fields{
		"total_score": res.TotalScore,
		"items":       len(verdict.Results),
		"path":        path,
	}).Info("scorecard saved")
	return res, nil
}

// save writes the verdict under the current second. When that name is
// taken it waits for the next second and tries again.
func (e *Evaluator) save(ctx context.Context, v types.Verdict) (string, time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ts := e.now()
	for attempt := 1; ; attempt++ {
		path, err := Save(e.resultsDir(), ts, v)
		if err == nil || !errors.Is(err, fs.ErrExist) || attempt == maxSaveAttempts {
			return path, ts, err
		}
		next := ts.Truncate(time.Second).Add(time.Second)
		e.logger().WithField("retry_at", next.Format(time.TimeOnly)).Debug("result file name taken, waiting for the next second")
		if err := sleepUntil(ctx, next, e.now()); err != nil {
			return "", ts, err
		}
		if ts = e.now(); ts.Before(next) {
			ts = next
		}
	}
}

func sleepUntil(ctx context.Context, until, now time.Time) error {
	d := until.Sub(now)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Evaluator) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Evaluator) resultsDir() string {
	if e.ResultsDir == "" {
		return "records"
	}
	return e.ResultsDir
}

func (e *Evaluator) logger() *logrus.Entry {
	if e.log == nil {
		e.log = logger.New().WithComponent("scorecard")
	}
	return e.log
}
