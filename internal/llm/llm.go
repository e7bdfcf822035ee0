// Package llm wraps the chat-completion providers used to grade transcripts.
package llm

import (
	"context"
	"fmt"
	"strings"

	"robocall-qa-go/internal/config"
)

// Completer turns a single text prompt into the model's text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New picks the provider named in cfg. Mock mode wins over any provider.
func New(ctx context.Context, cfg config.LLM) (Completer, error) {
	if cfg.Mock {
		return Mock{}, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return NewOpenAI(cfg), nil
	case "gemini":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// MockVerdict is the deterministic reply returned in mock mode.
const MockVerdict = "```json\n" + `{
  "zero_tolerance_flag": false,
  "results": [
    {"criterion": "Greeting within SOP", "weight": 10, "answer": "YES", "justification": "Agent greeted immediately."},
    {"criterion": "Verified customer identity", "weight": 20, "answer": "YES", "justification": "Name and policy number confirmed."},
    {"criterion": "Did not interrupt customer", "weight": 15, "answer": "NO", "justification": "Agent spoke over the customer once."},
    {"criterion": "Closing statement", "weight": 5, "answer": "YES", "justification": "Thanked the customer."}
  ]
}` + "\n```"

// Mock is an offline completer for demos and tests.
type Mock struct{}

func (Mock) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return MockVerdict, nil
}
