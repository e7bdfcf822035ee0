// Package stt defines the speech-to-text boundary used when a call has a
// recording but no platform transcript.
package stt

import "context"

// Transcriber turns a call recording into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
