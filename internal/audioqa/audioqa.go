// Package audioqa runs the call-handling checks of the QA scorecard that
// can be answered from turn timing alone: greeting latency, interruptions
// and hold time. Prosody checks need an acoustic model and are not
// available.
package audioqa

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hajimehoshi/go-mp3"

	"robocall-qa-go/internal/transcript"
	"robocall-qa-go/internal/types"
)

// ErrNoProsodyModel is returned by checks that need voice emotion analysis.
var ErrNoProsodyModel = errors.New("audioqa: no prosody model available")

type Options struct {
	MaxGreetingSecs float64 `json:"max_greeting_secs"`
	MinHoldSecs     float64 `json:"min_hold_secs"`
	MaxHoldSecs     float64 `json:"max_hold_secs"`
}

// DefaultOptions follows the SOP: greet within 3s, hold at most 2 minutes.
func DefaultOptions() Options {
	return Options{MaxGreetingSecs: 3, MinHoldSecs: 10, MaxHoldSecs: 120}
}

type Greeting struct {
	Found   bool    `json:"found"`
	AtSecs  float64 `json:"at_secs"`
	Passed  bool    `json:"passed"`
	Details string  `json:"details"`
}

// GreetingLatency measures the start of the first agent line.
func GreetingLatency(lines []types.FormattedLine, maxSecs float64) Greeting {
	for _, l := range lines {
		if l.Role != types.RoleAgent.Label() {
			continue
		}
		g := Greeting{Found: true, AtSecs: l.Start, Passed: l.Start <= maxSecs}
		g.Details = fmt.Sprintf("agent greeted at %s (limit %ss)", transcript.FormatClock(l.Start), trimFloat(maxSecs))
		return g
	}
	return Greeting{Details: "no agent turn found"}
}

type Interruption struct {
	Role      string `json:"role"`
	TimeLabel string `json:"time"`
	Message   string `json:"message"`
}

type InterruptionReport struct {
	Count int `json:"interruptions"`
	// AgentCutOff counts agent turns the platform marked interrupted: the
	// caller spoke over the agent.
	AgentCutOff int `json:"agent_cut_off"`
	// CallerCutOff counts interrupted caller turns: the agent spoke over
	// the caller.
	CallerCutOff int            `json:"caller_cut_off"`
	Turns        []Interruption `json:"turns,omitempty"`
	Details      string         `json:"details"`
}

// Interruptions lists the turns the platform flagged as cut off, split by
// whose turn was cut.
func Interruptions(lines []types.FormattedLine) InterruptionReport {
	var r InterruptionReport
	for _, l := range lines {
		if !l.Interrupted {
			continue
		}
		r.Count++
		if l.Role == types.RoleAgent.Label() {
			r.AgentCutOff++
		} else {
			r.CallerCutOff++
		}
		r.Turns = append(r.Turns, Interruption{Role: l.Role, TimeLabel: l.TimeLabel, Message: l.Message})
	}
	r.Details = fmt.Sprintf("%d interrupted turns: caller cut in on the agent %d times, agent cut in on the caller %d times",
		r.Count, r.AgentCutOff, r.CallerCutOff)
	return r
}

type Hold struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

type HoldReport struct {
	Holds        []Hold `json:"holds"`
	ExceedsLimit bool   `json:"exceeds_limit"`
	Details      string `json:"details"`
}

// HoldSegments reports silent gaps of at least minSecs between the end of
// one line and the start of the next, and whether any exceeds maxSecs.
// A line whose end is the LLM latency metric says nothing about when the
// speaker stopped, so no gap is measured after it.
func HoldSegments(lines []types.FormattedLine, minSecs, maxSecs float64) HoldReport {
	r := HoldReport{Holds: []Hold{}}
	longest := 0.0
	for i := 1; i < len(lines); i++ {
		if lines[i-1].EndFromMetric {
			continue
		}
		gap := lines[i].Start - lines[i-1].End
		if gap < minSecs || gap <= 0 {
			continue
		}
		r.Holds = append(r.Holds, Hold{Start: lines[i-1].End, End: lines[i].Start, Duration: gap})
		longest = max(longest, gap)
		if gap > maxSecs {
			r.ExceedsLimit = true
		}
	}
	switch {
	case len(r.Holds) == 0:
		r.Details = "no hold detected"
	default:
		r.Details = fmt.Sprintf("%d holds, longest %s (limit %s)",
			len(r.Holds), transcript.FormatClock(longest), transcript.FormatClock(maxSecs))
	}
	return r
}

type SmilingVoice struct {
	Smiling    bool    `json:"smiling"`
	Confidence float64 `json:"confidence"`
	Details    string  `json:"details"`
}

// DetectSmilingVoice would score the agent's tone from the recording.
func DetectSmilingVoice(audio io.Reader) (SmilingVoice, error) {
	return SmilingVoice{Details: "prosody analysis not available"}, ErrNoProsodyModel
}

type Report struct {
	Greeting      Greeting           `json:"greeting"`
	Interruptions InterruptionReport `json:"interruptions"`
	Hold          HoldReport         `json:"hold"`
}

// Audit runs every timing check over the formatted transcript.
func Audit(lines []types.FormattedLine, opts Options) Report {
	return Report{
		Greeting:      GreetingLatency(lines, opts.MaxGreetingSecs),
		Interruptions: Interruptions(lines),
		Hold:          HoldSegments(lines, opts.MinHoldSecs, opts.MaxHoldSecs),
	}
}

// AudioDuration decodes an MP3 stream far enough to know its length.
func AudioDuration(r io.Reader) (float64, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	rate := dec.SampleRate()
	n := dec.Length()
	if n < 0 {
		// not seekable; drain to count decoded bytes
		c, err := io.Copy(io.Discard, dec)
		if err != nil {
			return 0, fmt.Errorf("decode mp3: %w", err)
		}
		n = c
	}
	if rate <= 0 {
		return 0, errors.New("decode mp3: unknown sample rate")
	}
	// go-mp3 always emits 16-bit stereo: 4 bytes per sample frame
	return float64(n) / float64(4*rate), nil
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
