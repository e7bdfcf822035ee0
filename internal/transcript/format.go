// Package transcript turns a conversation record into time-stamped dialogue
// lines suitable for an LLM prompt.
package transcript

import (
	"fmt"
	"math"
	"strings"

	"robocall-qa-go/internal/types"
)

const interruptedMarker = " [INTERRUPTED]"

// Format renders one line per non-empty turn, preserving turn order.
func Format(rec types.ConversationRecord) []types.FormattedLine {
	out := make([]types.FormattedLine, 0, len(rec.Turns))
	for idx, turn := range rec.Turns {
		if strings.TrimSpace(turn.Message) == "" {
			continue
		}
		start, end, fromMetric := turnBounds(rec, idx)

		label := FormatRange(start, end)
		if turn.Interrupted {
			label += interruptedMarker
		}
		out = append(out, types.FormattedLine{
			Role:          turn.Role.Label(),
			Start:         start,
			End:           end,
			TimeLabel:     label,
			Interrupted:   turn.Interrupted,
			Message:       turn.Message,
			EndFromMetric: fromMetric,
		})
	}
	return out
}

// FormatDocument resolves the document shape and formats the result.
func FormatDocument(doc types.ConversationDocument) []types.FormattedLine {
	return Format(doc.Resolve())
}

// Text joins formatted lines into the transcript block sent to the model.
func Text(lines []types.FormattedLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}

// turnBounds resolves start and end for rec.Turns[idx] and reports whether
// the end came from the elapsed-time metric. The next turn is looked up in
// the raw transcript, so an empty neighbour still bounds it.
func turnBounds(rec types.ConversationRecord, idx int) (float64, float64, bool) {
	turn := rec.Turns[idx]
	start := turn.TimeInCallSecs

	var end *float64
	fromMetric := false
	if elapsed, ok := turn.ElapsedTime(); ok && start != nil {
		end = types.Float(round3(*start + elapsed))
		fromMetric = true
	} else if idx+1 < len(rec.Turns) {
		if next := rec.Turns[idx+1].TimeInCallSecs; next != nil {
			end = next
		} else {
			end = start
		}
	} else if rec.CallDurationSecs != nil {
		end = rec.CallDurationSecs
	} else {
		end = start
	}

	s := 0.0
	if start != nil {
		s = *start
	}
	if end == nil {
		return s, s, false
	}
	return s, *end, fromMetric
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// FormatClock renders seconds as m:ss, or h:mm:ss once an hour has passed.
// Fractions are truncated and negative offsets clamp to zero.
func FormatClock(secs float64) string {
	if secs < 0 || math.IsNaN(secs) {
		secs = 0
	}
	total := int64(secs)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h != 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatRange renders "start-end", collapsing to one label when both ends
// display the same.
func FormatRange(start, end float64) string {
	a, b := FormatClock(start), FormatClock(end)
	if a == b {
		return a
	}
	return a + "-" + b
}
