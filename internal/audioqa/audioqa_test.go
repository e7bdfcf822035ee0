package audioqa

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"robocall-qa-go/internal/transcript"
	"robocall-qa-go/internal/types"
)

func f(v float64) *float64 { return types.Float(v) }

func lines() []types.FormattedLine {
	return transcript.Format(types.ConversationRecord{
		Turns: []types.Turn{
			{Role: types.RoleUser, Message: "Halo?", TimeInCallSecs: f(0.5)},
			{Role: types.RoleAgent, Message: "Selamat pagi", TimeInCallSecs: f(2)},
			{Role: types.RoleUser, Message: "Saya mau tanya", TimeInCallSecs: f(5), Interrupted: true},
			{Role: types.RoleAgent, Message: "Mohon ditunggu", TimeInCallSecs: f(8)},
			{Role: types.RoleAgent, Message: "Terima kasih sudah menunggu", TimeInCallSecs: f(140)},
		},
		CallDurationSecs: f(150),
	})
}

func TestGreetingLatency(t *testing.T) {
	g := GreetingLatency(lines(), 3)
	require.True(t, g.Found)
	require.True(t, g.Passed)
	require.Equal(t, 2.0, g.AtSecs)
	require.Equal(t, "agent greeted at 0:02 (limit 3s)", g.Details)

	late := GreetingLatency(lines(), 1.5)
	require.False(t, late.Passed)
	require.Contains(t, late.Details, "limit 1.5s")

	none := GreetingLatency([]types.FormattedLine{{Role: "User", Message: "Hi"}}, 3)
	require.False(t, none.Found)
	require.False(t, none.Passed)
}

func TestInterruptions(t *testing.T) {
	r := Interruptions(lines())
	require.Equal(t, 1, r.Count)
	require.Equal(t, 1, r.CallerCutOff)
	require.Zero(t, r.AgentCutOff)
	require.Equal(t, "User", r.Turns[0].Role)
	require.Equal(t, "0:05-0:08 [INTERRUPTED]", r.Turns[0].TimeLabel)

	empty := Interruptions(nil)
	require.Zero(t, empty.Count)
	require.Empty(t, empty.Turns)
}

func decodeLines(t *testing.T, doc string) []types.FormattedLine {
	t.Helper()
	var d types.ConversationDocument
	require.NoError(t, json.Unmarshal([]byte(doc), &d))
	return transcript.FormatDocument(d)
}

func TestInterruptions_CallerCutsInOnAgent(t *testing.T) {
	// the platform flags the agent turn that the caller talked over
	ls := decodeLines(t, `{
	  "transcript": [
	    {"role": "agent", "message": "Bapak memiliki tagihan sebesar", "time_in_call_secs": 2, "interrupted": true},
	    {"role": "user", "message": "Iya saya sudah tahu, nanti saya bayar.", "time_in_call_secs": 4},
	    {"role": "agent", "message": "Baik, terima kasih Bapak.", "time_in_call_secs": 7}
	  ],
	  "metadata": {"call_duration_secs": 10}
	}`)

	r := Interruptions(ls)
	require.Equal(t, 1, r.Count)
	require.Equal(t, 1, r.AgentCutOff)
	require.Zero(t, r.CallerCutOff)
	require.Equal(t, "Agent", r.Turns[0].Role)
	require.Equal(t, "1 interrupted turns: caller cut in on the agent 1 times, agent cut in on the caller 0 times", r.Details)
}

func TestHoldSegments_IgnoresMetricEnds(t *testing.T) {
	ls := decodeLines(t, `{
	  "transcript": [
	    {"role": "agent", "message": "Selamat pagi, saya akan jelaskan rincian tagihan Bapak.", "time_in_call_secs": 0,
	     "conversation_turn_metrics": {"metrics": {"convai_llm_service_ttf_sentence": {"elapsed_time": 0.8}}}},
	    {"role": "user", "message": "Baik.", "time_in_call_secs": 20}
	  ],
	  "metadata": {"call_duration_secs": 25}
	}`)
	require.True(t, ls[0].EndFromMetric)

	r := HoldSegments(ls, 10, 120)
	require.Empty(t, r.Holds)
	require.False(t, r.ExceedsLimit)
	require.Equal(t, "no hold detected", r.Details)
}

func TestHoldSegments_SilenceBeforeEmptyTurn(t *testing.T) {
	ls := decodeLines(t, `{
	  "transcript": [
	    {"role": "agent", "message": "Mohon ditunggu sebentar.", "time_in_call_secs": 5},
	    {"role": "user", "message": "", "time_in_call_secs": 8},
	    {"role": "agent", "message": "Terima kasih sudah menunggu.", "time_in_call_secs": 140}
	  ],
	  "metadata": {"call_duration_secs": 150}
	}`)

	r := HoldSegments(ls, 10, 120)
	require.Equal(t, []Hold{{Start: 8, End: 140, Duration: 132}}, r.Holds)
	require.True(t, r.ExceedsLimit)
}

func TestHoldSegments(t *testing.T) {
	ls := []types.FormattedLine{
		{Start: 0, End: 5},
		{Start: 20, End: 25},   // 15s gap
		{Start: 27, End: 30},   // 2s gap, below minimum
		{Start: 160, End: 170}, // 130s gap
	}

	r := HoldSegments(ls, 10, 120)
	require.Equal(t, []Hold{
		{Start: 5, End: 20, Duration: 15},
		{Start: 30, End: 160, Duration: 130},
	}, r.Holds)
	require.True(t, r.ExceedsLimit)
	require.Equal(t, "2 holds, longest 2:10 (limit 2:00)", r.Details)

	r = HoldSegments(ls, 10, 200)
	require.False(t, r.ExceedsLimit)
}

func TestHoldSegments_OverlapsIgnored(t *testing.T) {
	ls := []types.FormattedLine{
		{Start: 0, End: 10},
		{Start: 4, End: 6},
	}
	r := HoldSegments(ls, 0, 120)
	require.Empty(t, r.Holds)
	require.Equal(t, "no hold detected", r.Details)
}

func TestAudit(t *testing.T) {
	r := Audit(lines(), DefaultOptions())
	require.True(t, r.Greeting.Passed)
	require.Equal(t, 1, r.Interruptions.Count)
	// "Mohon ditunggu" ends at 140 where the next line starts, so no gap
	require.Empty(t, r.Hold.Holds)
}

func TestDetectSmilingVoice(t *testing.T) {
	_, err := DetectSmilingVoice(bytes.NewReader(nil))
	require.True(t, errors.Is(err, ErrNoProsodyModel))
}

func TestAudioDuration_InvalidInput(t *testing.T) {
	_, err := AudioDuration(bytes.NewReader(nil))
	require.Error(t, err)
}
