package podcast

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/nikhilbhutani/podcastgen/internal/ffmpeg"
	"github.com/nikhilbhutani/podcastgen/internal/genlog"
	"github.com/nikhilbhutani/podcastgen/internal/llm"
	"github.com/nikhilbhutani/podcastgen/internal/multimodal/tts"
)

type fakeChat struct {
	content string
	err     error
	calls   int
	last    llm.ChatRequest
}

func (f *fakeChat) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	f.last = req
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Provider: "fake", Model: "fake-model", Content: f.content, CostUSD: 0.001}, nil
}

// fakeTTS answers each call with respond, or with a plausible mp3 payload.
type fakeTTS struct {
	mu       sync.Mutex
	requests []tts.SynthesisRequest
	respond  func(call int, req tts.SynthesisRequest) (*tts.SynthesisResult, error)
}

func (f *fakeTTS) Name() string { return "fake" }

func (f *fakeTTS) Synthesize(_ context.Context, req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	call := len(f.requests)
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(call, req)
	}
	return okAudio(), nil
}

func okAudio() *tts.SynthesisResult {
	return &tts.SynthesisResult{Audio: bytes.Repeat([]byte{0xff}, 1500), ContentType: "audio/mpeg", DurationMs: 2000}
}

// fakeRunner stands in for ffmpeg. Run writes a small file at the output
// path, which ffmpeg always takes as its last argument.
type fakeRunner struct {
	available bool
	duration  float64
	failOn    string
	volume    *ffmpeg.VolumeStats
	mu        sync.Mutex
	calls     [][]string
}

func (f *fakeRunner) Available(context.Context) bool { return f.available }

func (f *fakeRunner) Run(_ context.Context, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	if f.failOn != "" && strings.Contains(strings.Join(args, " "), f.failOn) {
		return errors.New("fake ffmpeg failure")
	}
	return os.WriteFile(args[len(args)-1], []byte("processed-mp3"), 0o644)
}

func (f *fakeRunner) Duration(context.Context, string) (float64, error) {
	if f.duration == 0 {
		return 0, errors.New("no duration")
	}
	return f.duration, nil
}

func (f *fakeRunner) Volume(context.Context, string) (*ffmpeg.VolumeStats, error) {
	if f.volume == nil {
		return nil, errors.New("no volume")
	}
	return f.volume, nil
}

func (f *fakeRunner) ran(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if strings.Contains(strings.Join(c, " "), substr) {
			return true
		}
	}
	return false
}

type recordingSink struct {
	mu      sync.Mutex
	entries []genlog.Entry
}

func (s *recordingSink) Write(_ context.Context, e genlog.Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return nil
}

const dialogueJSON = `[
  {"speaker": "Alex", "text": "Welcome to the show, today we talk about coffee.", "voice_id": "male-qn-jingying", "emotion": "excited"},
  {"speaker": "Mia", "text": "I have been waiting for this episode all week.", "emotion": "joyful"},
  {"speaker": "Alex", "text": "Let's start with where coffee comes from.", "voice_id": "bogus-voice"}
]`
