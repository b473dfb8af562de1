// Package minimax is a small REST client for the MiniMax endpoints the
// podcast pipeline drives: chat completion, speech, voice listing and music.
package minimax

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.minimax.chat"
	DefaultTimeout = 60 * time.Second
)

type Client struct {
	Text   *TextService
	Speech *SpeechService
	Voice  *VoiceService
	Music  *MusicService

	http       *http.Client
	baseURL    string
	apiKey     string
	groupID    string
	maxRetries int
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetry enables client-level retries of retryable errors. Zero by
// default since the pipeline stages carry their own retry policy.
func WithRetry(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithGroupID appends the GroupId query parameter that older accounts require.
func WithGroupID(id string) Option {
	return func(c *Client) { c.groupID = id }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Text = &TextService{client: c}
	c.Speech = &SpeechService{client: c}
	c.Voice = &VoiceService{client: c}
	c.Music = &MusicService{client: c}
	return c
}

// HTTPClient exposes the underlying client, used to fetch audio URLs
// returned by the speech endpoint.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

type baseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.do(ctx, path, data, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if apiErr, ok := AsError(err); ok && !apiErr.Retryable() {
			return err
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, path string, data []byte, result any) error {
	u := c.baseURL + path
	if c.groupID != "" {
		u += "?GroupId=" + url.QueryEscape(c.groupID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var envelope struct {
		BaseResp *baseResp `json:"base_resp"`
	}
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && envelope.BaseResp != nil && envelope.BaseResp.StatusCode != 0 {
			return &Error{StatusCode: envelope.BaseResp.StatusCode, StatusMsg: envelope.BaseResp.StatusMsg, HTTPStatus: resp.StatusCode}
		}
		return &Error{StatusCode: resp.StatusCode, StatusMsg: string(body), HTTPStatus: resp.StatusCode}
	}
	if decodeErr == nil && envelope.BaseResp != nil && envelope.BaseResp.StatusCode != 0 {
		return &Error{
			StatusCode: envelope.BaseResp.StatusCode,
			StatusMsg:  envelope.BaseResp.StatusMsg,
			TraceID:    resp.Header.Get("Trace-Id"),
			HTTPStatus: resp.StatusCode,
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// DecodeHexAudio decodes the hex audio encoding used across MiniMax
// responses, tolerating embedded whitespace.
func DecodeHexAudio(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}
