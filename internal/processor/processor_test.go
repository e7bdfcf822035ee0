package processor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"robocall-qa-go/internal/config"
	"robocall-qa-go/internal/elevenlabs"
	"robocall-qa-go/internal/llm"
	"robocall-qa-go/internal/metrics"
	"robocall-qa-go/internal/scorecard"
	"robocall-qa-go/internal/types"
)

const conversation = `{
  "conversation_id": "conv_1",
  "transcript": [
    {"role": "agent", "message": "Selamat pagi, dengan Rina.", "time_in_call_secs": 1},
    {"role": "user", "message": "", "time_in_call_secs": 3},
    {"role": "user", "message": "Saya mau klaim.", "time_in_call_secs": 4, "interrupted": true}
  ],
  "metadata": {"call_duration_secs": 20}
}`

type fakeSource struct {
	doc      string
	audio    []byte
	err      error
	audioErr error
}

func (f *fakeSource) GetConversationDetail(ctx context.Context, id string) (*types.ConversationDocument, []byte, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	var doc types.ConversationDocument
	if err := json.Unmarshal([]byte(f.doc), &doc); err != nil {
		return nil, nil, err
	}
	return &doc, []byte(f.doc), nil
}

func (f *fakeSource) GetConversationAudio(ctx context.Context, id string) ([]byte, error) {
	return f.audio, f.audioErr
}

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newProcessor(t *testing.T, src Source, c llm.Completer) (*Processor, *metrics.Metrics, string) {
	t.Helper()
	dir := t.TempDir()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := New(src, scorecard.NewEvaluator(c, filepath.Join(dir, "records")), "RUBRIC")
	p.Metrics = m
	return p, m, dir
}

func outcomes(m *metrics.Metrics, outcome string) float64 {
	return testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(outcome))
}

func TestProcessConversation(t *testing.T) {
	p, m, _ := newProcessor(t, &fakeSource{doc: conversation}, llm.Mock{})

	res, err := p.ProcessConversation(context.Background(), "conv_1", false)
	require.NoError(t, err)
	require.Empty(t, res.Error)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, []string{
		"[Agent 0:01-0:03]: Selamat pagi, dengan Rina.",
		"[User 0:04-0:20 [INTERRUPTED]]: Saya mau klaim.",
	}, res.Transcript)
	require.True(t, res.Audit.Greeting.Passed)
	require.Equal(t, 1, res.Audit.Interruptions.Count)

	require.NotNil(t, res.Scorecard)
	require.Equal(t, 35.0, res.Scorecard.TotalScore)
	require.FileExists(t, res.Scorecard.SavedPath)
	require.Equal(t, 1.0, outcomes(m, metrics.OutcomeScored))
	require.Equal(t, 2.0, testutil.ToFloat64(m.TurnsFormatted))
}

func TestProcessConversation_FetchErrorPropagates(t *testing.T) {
	serr := &elevenlabs.StatusError{StatusCode: 401, Body: "unauthorized"}
	c := &stubCompleter{}
	p, m, _ := newProcessor(t, &fakeSource{err: serr}, c)

	res, err := p.ProcessConversation(context.Background(), "conv_1", false)
	require.Same(t, serr, err)
	require.Contains(t, res.Error, "status 401")
	require.Zero(t, c.calls)
	require.Equal(t, 1.0, outcomes(m, metrics.OutcomeCallError))
}

func TestProcessConversation_SavesAudio(t *testing.T) {
	src := &fakeSource{doc: conversation, audio: []byte("ID3-not-really-mp3")}
	p, _, dir := newProcessor(t, src, llm.Mock{})
	p.AudioDir = filepath.Join(dir, "audio")

	res, err := p.ProcessConversation(context.Background(), "conv_1", true)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "audio", "conv_1.mp3"), res.AudioPath)

	data, err := os.ReadFile(res.AudioPath)
	require.NoError(t, err)
	require.Equal(t, src.audio, data)
}

func TestProcessConversation_AudioErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	p, _, _ := newProcessor(t, &fakeSource{doc: conversation, audioErr: boom}, llm.Mock{})

	_, err := p.ProcessConversation(context.Background(), "conv_1", true)
	require.ErrorIs(t, err, boom)
}

func TestProcessDocument_ParseErrorIsReported(t *testing.T) {
	c := &stubCompleter{reply: "Sorry, I cannot help with that."}
	p, m, dir := newProcessor(t, nil, c)

	var doc types.ConversationDocument
	require.NoError(t, json.Unmarshal([]byte(conversation), &doc))

	res, err := p.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Nil(t, res.Scorecard)
	require.Contains(t, res.Error, "parse verdict")
	require.NoDirExists(t, filepath.Join(dir, "records"))
	require.Equal(t, 1.0, outcomes(m, metrics.OutcomeParseError))
}

func TestProcessDocument_CompletionErrorPropagates(t *testing.T) {
	boom := errors.New("rate limited")
	p, _, _ := newProcessor(t, nil, &stubCompleter{err: boom})

	var doc types.ConversationDocument
	require.NoError(t, json.Unmarshal([]byte(conversation), &doc))

	res, err := p.ProcessDocument(context.Background(), doc)
	require.Same(t, boom, err)
	require.Contains(t, res.Error, "rate limited")
}

func TestProcessDocument_EmptyTranscript(t *testing.T) {
	c := &stubCompleter{}
	p, m, _ := newProcessor(t, nil, c)

	res, err := p.ProcessDocument(context.Background(), types.ConversationDocument{ConversationID: "x"})
	require.NoError(t, err)
	require.Equal(t, ErrEmptyTranscript.Error(), res.Error)
	require.Empty(t, res.Transcript)
	require.Zero(t, c.calls)
	require.Equal(t, 1.0, outcomes(m, metrics.OutcomeSkipped))
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	prompt := filepath.Join(dir, "qa_prompt.md")
	require.NoError(t, os.WriteFile(prompt, []byte("Score this call."), 0o644))

	cfg := config.Defaults()
	cfg.Paths.RubricPrompt = prompt
	cfg.Paths.ResultsDir = filepath.Join(dir, "out")
	cfg.LLM.Mock = true
	cfg.Audit.MaxGreetingSecs = 5

	p, closeFn, err := FromConfig(context.Background(), &cfg)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	require.Equal(t, "Score this call.", p.Rubric)
	require.Equal(t, 5.0, p.Audit.MaxGreetingSecs)
	require.IsType(t, &elevenlabs.Client{}, p.Source)
	require.Equal(t, filepath.Join(dir, "out"), p.Evaluator.ResultsDir)

	cfg.Paths.RubricPrompt = filepath.Join(dir, "missing.md")
	_, _, err = FromConfig(context.Background(), &cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
}
