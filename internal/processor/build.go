package processor

import (
	"context"
	"io"

	"robocall-qa-go/internal/audioqa"
	"robocall-qa-go/internal/config"
	"robocall-qa-go/internal/elevenlabs"
	"robocall-qa-go/internal/llm"
	"robocall-qa-go/internal/scorecard"
)

// FromConfig wires the platform client, the configured LLM provider and the
// rubric prompt into a Processor. The returned close func releases the LLM
// client where the provider holds one.
func FromConfig(ctx context.Context, cfg *config.Config) (*Processor, func() error, error) {
	rubric, err := scorecard.LoadRubric(cfg.Paths.RubricPrompt)
	if err != nil {
		return nil, nil, err
	}
	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return nil }
	if c, ok := completer.(io.Closer); ok {
		closeFn = c.Close
	}

	p := New(elevenlabs.New(cfg.ElevenLabs), scorecard.NewEvaluator(completer, cfg.Paths.ResultsDir), rubric)
	p.Audit = audioqa.Options{
		MaxGreetingSecs: cfg.Audit.MaxGreetingSecs,
		MinHoldSecs:     cfg.Audit.MinHoldSecs,
		MaxHoldSecs:     cfg.Audit.MaxHoldSecs,
	}
	return p, closeFn, nil
}
