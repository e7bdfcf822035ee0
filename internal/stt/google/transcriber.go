// Package google provides a Google Cloud Speech-to-Text transcriber.
package google

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/hajimehoshi/go-mp3"

	"robocall-qa-go/internal/config"
)

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// Transcriber implements stt.Transcriber with the synchronous Recognize
// call, so recordings are limited to what Google accepts inline.
type Transcriber struct {
	cfg       config.STT
	recognize recognizeFunc
	closer    io.Closer
}

// New creates a transcriber.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg config.STT) (*Transcriber, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &Transcriber{
		cfg: cfg,
		recognize: func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return c.Recognize(ctx, req)
		},
		closer: c,
	}, nil
}

// Transcribe decodes MP3 audio to mono LINEAR16 and returns the joined
// top alternative of every result.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	pcm, rate, err := decodeMono(bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	return t.transcribePCM(ctx, pcm, rate)
}

func (t *Transcriber) transcribePCM(ctx context.Context, pcm []byte, rate int) (string, error) {
	resp, err := t.recognize(ctx, t.request(pcm, rate))
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(resp.GetResults()))
	for _, r := range resp.GetResults() {
		if len(r.GetAlternatives()) == 0 {
			continue
		}
		if text := strings.TrimSpace(r.GetAlternatives()[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (t *Transcriber) request(pcm []byte, rate int) *speechpb.RecognizeRequest {
	lang := t.cfg.LanguageCode
	if lang == "" {
		lang = "en-US"
	}
	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(rate),
			AudioChannelCount:          1,
			LanguageCode:               lang,
			EnableAutomaticPunctuation: t.cfg.Punctuation,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	}
}

func (t *Transcriber) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// decodeMono downmixes go-mp3's 16-bit stereo output to mono PCM.
func decodeMono(r io.Reader) ([]byte, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	stereo, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	return downmix(stereo), dec.SampleRate(), nil
}

func downmix(stereo []byte) []byte {
	frames := len(stereo) / 4
	mono := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(stereo[i*4:]))
		r := int16(binary.LittleEndian.Uint16(stereo[i*4+2:]))
		binary.LittleEndian.PutUint16(mono[i*2:], uint16((int32(l)+int32(r))/2))
	}
	return mono
}
