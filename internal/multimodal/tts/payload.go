package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/podcastgen/internal/minimax"
)

// AudioPayload is audio in one of the wire encodings speech services use.
// Resolve turns any of them into raw bytes so callers never branch on format.
type AudioPayload interface {
	Encoding() string
	Resolve(ctx context.Context, client *http.Client) ([]byte, error)
}

type HexPayload string

func (p HexPayload) Encoding() string { return "hex" }

func (p HexPayload) Resolve(context.Context, *http.Client) ([]byte, error) {
	b, err := minimax.DecodeHexAudio(string(p))
	if err != nil {
		return nil, fmt.Errorf("decode hex audio: %w", err)
	}
	return b, nil
}

type Base64Payload string

func (p Base64Payload) Encoding() string { return "base64" }

func (p Base64Payload) Resolve(context.Context, *http.Client) ([]byte, error) {
	s := strings.TrimSpace(string(p))
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("decode base64 audio: %w", err)
	}
	return b, nil
}

type URLPayload string

func (p URLPayload) Encoding() string { return "url" }

func (p URLPayload) Resolve(ctx context.Context, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(p), nil)
	if err != nil {
		return nil, fmt.Errorf("audio url request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio url: %w", err)
	}
	return b, nil
}

var ErrUnknownPayload = errors.New("tts: unrecognised audio payload encoding")

// DetectPayload classifies a wire string. URLs win, then hex, then base64;
// hex is tried first because every hex string is also valid base64 text.
func DetectPayload(s string) (AudioPayload, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty", ErrUnknownPayload)
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		return URLPayload(s), nil
	case isHex(s):
		return HexPayload(s), nil
	case isBase64(s):
		return Base64Payload(s), nil
	}
	return nil, ErrUnknownPayload
}

func isHex(s string) bool {
	n := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			n++
		case r == ' ' || r == '\n' || r == '\r' || r == '\t':
		default:
			return false
		}
	}
	return n > 0 && n%2 == 0
}

func isBase64(s string) bool {
	_, err := Base64Payload(s).Resolve(context.Background(), nil)
	return err == nil
}
