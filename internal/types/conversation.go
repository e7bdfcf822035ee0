package types

// ConversationMetadata is the subset of call metadata the formatter uses.
type ConversationMetadata struct {
	CallDurationSecs  *float64 `json:"call_duration_secs,omitempty"`
	StartTimeUnixSecs *int64   `json:"start_time_unix_secs,omitempty"`
}

// TranscriptPayload is the body shared by both document shapes.
type TranscriptPayload struct {
	Transcript []Turn                `json:"transcript,omitempty"`
	Metadata   *ConversationMetadata `json:"metadata,omitempty"`
}

type CallTranscription struct {
	Data *TranscriptPayload `json:"data,omitempty"`
}

// ConversationDocument is a conversation detail as returned by the platform
// or exported to disk. Newer exports nest the transcript under
// call_transcription.data; older ones keep it at the top level.
type ConversationDocument struct {
	ConversationID    string             `json:"conversation_id,omitempty"`
	AgentID           string             `json:"agent_id,omitempty"`
	Status            string             `json:"status,omitempty"`
	CallTranscription *CallTranscription `json:"call_transcription,omitempty"`

	TranscriptPayload
}

// Nested returns the call_transcription.data payload, or nil.
func (d ConversationDocument) Nested() *TranscriptPayload {
	if d.CallTranscription == nil {
		return nil
	}
	return d.CallTranscription.Data
}

// Flat returns the top-level payload, or nil when it carries no data.
func (d ConversationDocument) Flat() *TranscriptPayload {
	if d.Transcript == nil && d.Metadata == nil {
		return nil
	}
	p := d.TranscriptPayload
	return &p
}

// Resolve picks the nested shape first and falls back to the flat shape
// only when the nested transcript is empty.
func (d ConversationDocument) Resolve() ConversationRecord {
	rec := ConversationRecord{
		ConversationID: d.ConversationID,
		AgentID:        d.AgentID,
		Status:         d.Status,
	}
	for _, p := range []*TranscriptPayload{d.Nested(), d.Flat()} {
		if p == nil || len(p.Transcript) == 0 {
			continue
		}
		rec.Turns = p.Transcript
		if p.Metadata != nil {
			rec.CallDurationSecs = p.Metadata.CallDurationSecs
		}
		return rec
	}
	return rec
}
