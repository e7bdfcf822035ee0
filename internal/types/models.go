package types

import (
	"strings"
	"unicode/utf8"
)

type Role string

const (
	RoleAgent    Role = "agent"
	RoleUser     Role = "user"
	RoleCustomer Role = "customer"
)

// Label renders the role the way it appears in a formatted transcript.
func (r Role) Label() string {
	s := strings.TrimSpace(string(r))
	if s == "" {
		return "Unknown"
	}
	_, n := utf8.DecodeRuneInString(s)
	return strings.ToUpper(s[:n]) + strings.ToLower(s[n:])
}

type ElapsedMetric struct {
	ElapsedTime *float64 `json:"elapsed_time,omitempty"`
}

type TurnMetrics struct {
	Metrics map[string]ElapsedMetric `json:"metrics,omitempty"`
}

// LLMFirstSentence is the metric whose elapsed time bounds an agent turn.
const LLMFirstSentence = "convai_llm_service_ttf_sentence"

type Turn struct {
	Role                    Role         `json:"role"`
	Message                 string       `json:"message"`
	TimeInCallSecs          *float64     `json:"time_in_call_secs,omitempty"`
	Interrupted             bool         `json:"interrupted,omitempty"`
	ConversationTurnMetrics *TurnMetrics `json:"conversation_turn_metrics,omitempty"`
}

// ElapsedTime returns the per-turn LLM timing metric when the platform reported one.
func (t Turn) ElapsedTime() (float64, bool) {
	if t.ConversationTurnMetrics == nil {
		return 0, false
	}
	m, ok := t.ConversationTurnMetrics.Metrics[LLMFirstSentence]
	if !ok || m.ElapsedTime == nil {
		return 0, false
	}
	return *m.ElapsedTime, true
}

type ConversationRecord struct {
	ConversationID   string   `json:"conversation_id,omitempty"`
	AgentID          string   `json:"agent_id,omitempty"`
	Status           string   `json:"status,omitempty"`
	Turns            []Turn   `json:"transcript"`
	CallDurationSecs *float64 `json:"call_duration_secs,omitempty"`
}

type FormattedLine struct {
	Role        string  `json:"role"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	TimeLabel   string  `json:"time"`
	Interrupted bool    `json:"interrupted,omitempty"`
	Message     string  `json:"message"`
	// EndFromMetric is set when End comes from the LLM first-sentence
	// latency rather than a recorded offset; such an End is not when
	// speech stopped.
	EndFromMetric bool `json:"end_from_metric,omitempty"`
}

func (l FormattedLine) String() string {
	return "[" + l.Role + " " + l.TimeLabel + "]: " + l.Message
}

// Float is a small helper for building optional numeric fields.
func Float(v float64) *float64 { return &v }
