package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/nikhilbhutani/podcastgen/internal/minimax"
)

// SynthesisRequest holds the parameters for text-to-speech generation.
type SynthesisRequest struct {
	Input   string  `json:"input"`
	Voice   string  `json:"voice,omitempty"`
	Emotion string  `json:"emotion,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
	Volume  float64 `json:"volume,omitempty"`
	Pitch   int     `json:"pitch,omitempty"`
}

// SynthesisResult holds the generated audio and its content type.
type SynthesisResult struct {
	Audio       []byte
	ContentType string // "audio/mpeg" (MiniMax, OpenAI) or "audio/wav" (Piper)
	DurationMs  int    // 0 when the backend does not report it
	Encoding    string // wire encoding the audio arrived in: hex, base64, url or binary
}

// TTSProvider is the interface for text-to-speech backends.
type TTSProvider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}

var ErrPayloadTooSmall = errors.New("tts: audio payload below minimum size")

// CheckSize rejects payloads too small to hold real speech.
func CheckSize(audio []byte, min int) error {
	if len(audio) < min {
		return fmt.Errorf("%w: %d < %d bytes", ErrPayloadTooSmall, len(audio), min)
	}
	return nil
}

// StatusError is a non-200 response from an HTTP speech backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tts failed (status %d): %s", e.StatusCode, e.Body)
}

// IsTransient reports whether err belongs to the timeout, network,
// rate-limit or 5xx class and is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if apiErr, ok := minimax.AsError(err); ok {
		return apiErr.Retryable()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
