package podcast

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/nikhilbhutani/podcastgen/internal/multimodal/tts"
)

func testSynth(p tts.TTSProvider) *Synthesizer {
	return NewSynthesizer(p, SynthConfig{Retries: 2, Backoff: time.Millisecond, MinAudioBytes: 1000, MaxChars: 300})
}

func seg(i int, text string) DialogueSegment {
	return DialogueSegment{Index: i, Speaker: "Host", VoiceID: "v1", Emotion: EmotionCalm, Text: text}
}

func TestSynthesizeRetriesTransient(t *testing.T) {
	p := &fakeTTS{respond: func(call int, _ tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		if call == 1 {
			return nil, &tts.StatusError{StatusCode: 503, Body: "busy"}
		}
		return okAudio(), nil
	}}
	audio, err := testSynth(p).Synthesize(context.Background(), seg(4, "hello there"))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(p.requests) != 2 || audio.Index != 4 || audio.Size() != 1500 {
		t.Errorf("calls = %d, audio = %+v", len(p.requests), audio.Index)
	}
}

func TestSynthesizeDoesNotRetryPermanent(t *testing.T) {
	p := &fakeTTS{respond: func(int, tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		return nil, &tts.StatusError{StatusCode: 400, Body: "bad voice"}
	}}
	if _, err := testSynth(p).Synthesize(context.Background(), seg(0, "hello")); err == nil {
		t.Fatal("expected error")
	}
	if len(p.requests) != 1 {
		t.Errorf("calls = %d, want 1", len(p.requests))
	}
}

func TestSynthesizeRejectsTinyPayload(t *testing.T) {
	p := &fakeTTS{respond: func(int, tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		return &tts.SynthesisResult{Audio: []byte("tiny")}, nil
	}}
	_, err := testSynth(p).Synthesize(context.Background(), seg(0, "hello"))
	if !errors.Is(err, tts.ErrPayloadTooSmall) {
		t.Fatalf("err = %v, want ErrPayloadTooSmall", err)
	}
	if len(p.requests) != 1 {
		t.Errorf("calls = %d, want 1", len(p.requests))
	}
}

func TestSynthesizeTruncatesLongText(t *testing.T) {
	p := &fakeTTS{}
	long := ""
	for i := 0; i < 40; i++ {
		long += "A sentence of filler. "
	}
	if _, err := testSynth(p).Synthesize(context.Background(), seg(0, long)); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if n := utf8.RuneCountInString(p.requests[0].Input); n > 300 {
		t.Errorf("sent %d runes, want at most 300", n)
	}
}

func TestSynthesizeAllSkipsFailures(t *testing.T) {
	p := &fakeTTS{respond: func(_ int, req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		if req.Input == "second" {
			return nil, errors.New("rejected")
		}
		return okAudio(), nil
	}}
	var progress []int
	res, err := testSynth(p).SynthesizeAll(context.Background(),
		[]DialogueSegment{seg(0, "first"), seg(1, "second"), seg(2, "third")},
		func(done, total int) { progress = append(progress, done) })
	if err != nil {
		t.Fatalf("SynthesizeAll: %v", err)
	}
	if len(res.Segments) != 2 || res.Segments[0].Index != 0 || res.Segments[1].Index != 2 {
		t.Errorf("segments = %+v", res.Segments)
	}
	if len(res.Failed) != 1 || res.Failed[0].Index != 1 {
		t.Errorf("failed = %+v", res.Failed)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v", progress)
	}
}

func TestSynthesizeAllNoAudio(t *testing.T) {
	p := &fakeTTS{respond: func(int, tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		return nil, errors.New("rejected")
	}}
	_, err := testSynth(p).SynthesizeAll(context.Background(), []DialogueSegment{seg(0, "only")}, nil)
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("err = %v, want ErrNoAudio", err)
	}
}
