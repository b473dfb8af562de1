package podcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikhilbhutani/podcastgen/internal/multimodal/tts"
	"github.com/nikhilbhutani/podcastgen/pkg/chunker"
)

// ErrNoAudio means no segment produced usable audio; the job cannot
// produce an artifact.
var ErrNoAudio = errors.New("no segment produced usable audio")

type SynthConfig struct {
	Retries       int           // extra attempts for transient errors
	Backoff       time.Duration // linear: attempt n waits n*Backoff
	Pace          time.Duration // gap between successive calls
	Timeout       time.Duration // per call
	MinAudioBytes int
	MaxChars      int
	Speed         float64
	Volume        float64
}

type Synthesizer struct {
	tts tts.TTSProvider
	cfg SynthConfig
}

func NewSynthesizer(p tts.TTSProvider, cfg SynthConfig) *Synthesizer {
	if cfg.MaxChars == 0 {
		cfg.MaxChars = 300
	}
	return &Synthesizer{tts: p, cfg: cfg}
}

// SegmentFailure is a turn that was dropped after synthesis gave up on it.
type SegmentFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type SynthResult struct {
	Segments []AudioSegment
	Failed   []SegmentFailure
}

// Synthesize renders one segment, retrying transient errors only.
func (s *Synthesizer) Synthesize(ctx context.Context, seg DialogueSegment) (AudioSegment, error) {
	req := tts.SynthesisRequest{
		Input:   chunker.Truncate(seg.Text, s.cfg.MaxChars),
		Voice:   seg.VoiceID,
		Emotion: string(seg.Emotion),
		Speed:   s.cfg.Speed,
		Volume:  s.cfg.Volume,
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, time.Duration(attempt)*s.cfg.Backoff); err != nil {
				return AudioSegment{}, err
			}
			Logger(ctx).Debug("retrying speech synthesis", "segment", seg.Index, "attempt", attempt)
		}

		res, err := s.call(ctx, req)
		if err == nil {
			return AudioSegment{
				Index:       seg.Index,
				Speaker:     seg.Speaker,
				VoiceID:     seg.VoiceID,
				Audio:       res.Audio,
				ContentType: res.ContentType,
				DurationMs:  res.DurationMs,
			}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return AudioSegment{}, ctx.Err()
		}
		if !tts.IsTransient(err) {
			break
		}
	}
	return AudioSegment{}, fmt.Errorf("segment %d: %w", seg.Index, lastErr)
}

func (s *Synthesizer) call(ctx context.Context, req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	res, err := s.tts.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := tts.CheckSize(res.Audio, s.cfg.MinAudioBytes); err != nil {
		return nil, err
	}
	return res, nil
}

// SynthesizeAll renders segments one at a time in order. A failed segment
// is logged and skipped. onDone, when non-nil, is called after each
// segment resolves. Output order always follows segment index.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, segs []DialogueSegment, onDone func(done, total int)) (*SynthResult, error) {
	log := Logger(ctx)
	res := &SynthResult{}

	for i, seg := range segs {
		if i > 0 {
			if err := sleepCtx(ctx, s.cfg.Pace); err != nil {
				return nil, err
			}
		}

		audio, err := s.Synthesize(ctx, seg)
		switch {
		case err == nil:
			res.Segments = append(res.Segments, audio)
			log.Debug("segment synthesized", "segment", seg.Index, "speaker", seg.Speaker, "bytes", audio.Size())
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			res.Failed = append(res.Failed, SegmentFailure{Index: seg.Index, Error: err.Error()})
			log.Warn("segment synthesis failed, skipping", "segment", seg.Index, "speaker", seg.Speaker, "error", err)
		}
		if onDone != nil {
			onDone(i+1, len(segs))
		}
	}

	if len(res.Segments) == 0 {
		return res, fmt.Errorf("%w (%d of %d failed)", ErrNoAudio, len(res.Failed), len(segs))
	}
	return res, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
