// Package elevenlabs fetches conversation records and recordings from the
// ElevenLabs Conversational AI API.
package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"robocall-qa-go/internal/config"
	"robocall-qa-go/internal/logger"
	"robocall-qa-go/internal/types"
)

const conversationsPath = "/convai/conversations"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("elevenlabs: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	http       *http.Client
	log        *logrus.Entry
}

// New builds a client from explicit settings. The API key is sent as
// xi-api-key on every request; an empty key surfaces as the platform's 401.
func New(cfg config.ElevenLabs) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultElevenLabsURL
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		http:       &http.Client{Timeout: cfg.Timeout},
		log:        logger.New().WithComponent("elevenlabs"),
	}
}

// GetConversationDetail returns the decoded conversation document together
// with the raw JSON body.
func (c *Client) GetConversationDetail(ctx context.Context, id string) (*types.ConversationDocument, []byte, error) {
	body, err := c.get(ctx, c.conversationURL(id))
	if err != nil {
		return nil, nil, err
	}
	var doc types.ConversationDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, body, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	if doc.ConversationID == "" {
		doc.ConversationID = id
	}
	c.log.WithFields(logrus.Fields{
		"conversation_id": id,
		"status":          doc.Status,
	}).Debug("conversation detail fetched")
	return &doc, body, nil
}

// GetConversationAudio returns the recording bytes (MP3).
func (c *Client) GetConversationAudio(ctx context.Context, id string) ([]byte, error) {
	audio, err := c.get(ctx, c.conversationURL(id)+"/audio")
	if err != nil {
		return nil, err
	}
	c.log.WithField("conversation_id", id).WithField("bytes", len(audio)).Debug("conversation audio fetched")
	return audio, nil
}

func (c *Client) conversationURL(id string) string {
	return c.baseURL + conversationsPath + "/" + url.PathEscape(id)
}

// get performs one GET, retried with exponential backoff only when
// maxRetries > 0. Client errors are never retried.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var out []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("xi-api-key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
			if resp.StatusCode < 500 {
				return backoff.Permanent(serr)
			}
			return serr
		}
		out = body
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(max(c.maxRetries, 0))),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.log.WithError(err).WithField("url", u).WithField("retry_in", wait.String()).Warn("request failed, retrying")
	}
	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return nil, err
	}
	return out, nil
}
