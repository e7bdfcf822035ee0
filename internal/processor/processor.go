package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"robocall-qa-go/internal/audioqa"
	"robocall-qa-go/internal/extractor"
	"robocall-qa-go/internal/logger"
	"robocall-qa-go/internal/metrics"
	"robocall-qa-go/internal/scorecard"
	"robocall-qa-go/internal/transcript"
	"robocall-qa-go/internal/types"
)

// ErrEmptyTranscript is reported when neither document shape has turns.
var ErrEmptyTranscript = errors.New("no transcript found in conversation")

// Source fetches conversation records and recordings.
type Source interface {
	GetConversationDetail(ctx context.Context, id string) (*types.ConversationDocument, []byte, error)
	GetConversationAudio(ctx context.Context, id string) ([]byte, error)
}

// Result is returned by /evaluate and the CLI.
type Result struct {
	RunID          string                 `json:"run_id"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	Transcript     []string               `json:"transcript"`
	Audit          audioqa.Report         `json:"audit"`
	Scorecard      *types.ScorecardResult `json:"scorecard,omitempty"`
	AudioPath      string                 `json:"audio_path,omitempty"`
	DurationMs     int64                  `json:"duration_ms"`
	Error          string                 `json:"error,omitempty"`
}

type Processor struct {
	Source    Source
	Evaluator *scorecard.Evaluator
	Rubric    string
	Audit     audioqa.Options
	// AudioDir, when set, receives <conversation_id>.mp3 for fetched audio.
	AudioDir string
	Metrics  *metrics.Metrics

	log *logrus.Entry
}

func New(src Source, ev *scorecard.Evaluator, rubric string) *Processor {
	return &Processor{
		Source:    src,
		Evaluator: ev,
		Rubric:    rubric,
		Audit:     audioqa.DefaultOptions(),
		Metrics:   metrics.DefaultMetrics,
		log:       logger.New().WithComponent("processor"),
	}
}

// ProcessConversation fetches a conversation (and optionally its audio)
// from the platform, then formats and scores it.
func (p *Processor) ProcessConversation(ctx context.Context, id string, withAudio bool) (Result, error) {
	start := time.Now()
	log := p.logger().WithField("conversation_id", id)
	res := Result{RunID: uuid.New().String(), ConversationID: id}

	fetchStart := time.Now()
	doc, _, err := p.Source.GetConversationDetail(ctx, id)
	p.observeExternal("elevenlabs", fetchStart)
	if err != nil {
		log.WithError(err).Error("fetch conversation failed")
		res.Error = fmt.Sprintf("fetch conversation: %v", err)
		return p.finish(res, start, metrics.OutcomeCallError), err
	}
	rec := doc.Resolve()

	if withAudio {
		audio, err := p.Source.GetConversationAudio(ctx, id)
		if err != nil {
			log.WithError(err).Error("fetch audio failed")
			res.Error = fmt.Sprintf("fetch audio: %v", err)
			return p.finish(res, start, metrics.OutcomeCallError), err
		}
		if res.AudioPath, err = p.saveAudio(id, audio); err != nil {
			log.WithError(err).Warn("audio not saved")
		}
		if rec.CallDurationSecs == nil {
			if d, err := audioqa.AudioDuration(bytes.NewReader(audio)); err == nil {
				rec.CallDurationSecs = types.Float(d)
				log.WithField("call_duration_secs", d).Debug("call duration taken from audio")
			} else {
				log.WithError(err).Warn("audio duration unavailable")
			}
		}
	}

	return p.process(ctx, rec, res, start)
}

// ProcessDocument formats and scores a conversation already in hand.
func (p *Processor) ProcessDocument(ctx context.Context, doc types.ConversationDocument) (Result, error) {
	res := Result{RunID: uuid.New().String(), ConversationID: doc.ConversationID}
	return p.process(ctx, doc.Resolve(), res, time.Now())
}

func (p *Processor) process(ctx context.Context, rec types.ConversationRecord, res Result, start time.Time) (Result, error) {
	log := p.logger().WithField("run_id", res.RunID).WithField("conversation_id", res.ConversationID)

	lines := transcript.Format(rec)
	res.Transcript = make([]string, len(lines))
	for i, l := range lines {
		res.Transcript[i] = l.String()
	}
	res.Audit = audioqa.Audit(lines, p.Audit)
	if p.Metrics != nil {
		p.Metrics.TurnsFormatted.Add(float64(len(lines)))
	}
	log.WithField("lines", len(lines)).Info("transcript formatted")

	if len(lines) == 0 {
		log.Warn("empty transcript, skipping evaluation")
		res.Error = ErrEmptyTranscript.Error()
		return p.finish(res, start, metrics.OutcomeSkipped), nil
	}

	llmStart := time.Now()
	sc, err := p.Evaluator.Evaluate(ctx, lines, p.Rubric)
	p.observeExternal("llm", llmStart)

	var perr *extractor.ParseError
	switch {
	case errors.As(err, &perr):
		log.WithError(perr.Err).WithField("raw", perr.Raw).Error("error calculating total score")
		res.Error = perr.Error()
		return p.finish(res, start, metrics.OutcomeParseError), nil
	case err != nil:
		log.WithError(err).Error("evaluation failed")
		res.Error = fmt.Sprintf("evaluate: %v", err)
		return p.finish(res, start, metrics.OutcomeCallError), err
	}

	res.Scorecard = sc
	log.WithFields(logrus.Fields{
		"total_score":    sc.TotalScore,
		"zero_tolerance": sc.Verdict.ZeroToleranceFlag,
		"saved_path":     sc.SavedPath,
	}).Info("conversation scored")
	return p.finish(res, start, metrics.OutcomeScored), nil
}

func (p *Processor) finish(res Result, start time.Time, outcome string) Result {
	elapsed := time.Since(start)
	res.DurationMs = elapsed.Milliseconds()
	if p.Metrics != nil {
		score, zt := 0.0, false
		if res.Scorecard != nil {
			score, zt = res.Scorecard.TotalScore, res.Scorecard.Verdict.ZeroToleranceFlag
		}
		p.Metrics.ObserveOutcome(outcome, score, zt)
		p.Metrics.EvaluationDuration.Observe(elapsed.Seconds())
	}
	return res
}

func (p *Processor) observeExternal(target string, since time.Time) {
	if p.Metrics != nil {
		p.Metrics.ExternalLatency.WithLabelValues(target).Observe(time.Since(since).Seconds())
	}
}

func (p *Processor) saveAudio(id string, audio []byte) (string, error) {
	if p.AudioDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(p.AudioDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(p.AudioDir, filepath.Base(id)+".mp3")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (p *Processor) logger() *logrus.Entry {
	if p.log == nil {
		p.log = logger.New().WithComponent("processor")
	}
	return p.log
}
