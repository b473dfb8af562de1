package podcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilbhutani/podcastgen/internal/ffmpeg"
)

// Degradations recorded on an artifact when assembly falls back.
const (
	DegradeRawConcat     = "voice_track_raw_concat"
	DegradeSingleSegment = "voice_track_single_segment"
	DegradeNoMusic       = "background_music_skipped"
	DegradeMixFailed     = "music_mix_failed"
	DegradeNoLoudnorm    = "loudness_normalization_skipped"
)

var ErrNoSegments = errors.New("assemble: no audio segments")

type AssemblerConfig struct {
	Bitrate     string
	Loudness    string
	MusicVolume float64
	FadeIn      time.Duration
	FadeOut     time.Duration
}

func (c *AssemblerConfig) defaults() {
	if c.Bitrate == "" {
		c.Bitrate = "192k"
	}
	if c.Loudness == "" {
		c.Loudness = "I=-16:TP=-1.5:LRA=11"
	}
	if c.MusicVolume <= 0 || c.MusicVolume > 1 {
		c.MusicVolume = 0.3
	}
	if c.FadeIn <= 0 {
		c.FadeIn = 2 * time.Second
	}
	if c.FadeOut <= 0 {
		c.FadeOut = 3 * time.Second
	}
}

// Assembler turns ordered segments into one normalized file. Each step
// degrades to a less processed output instead of failing while any audio
// exists.
type Assembler struct {
	ff  ffmpeg.Runner
	cfg AssemblerConfig
}

func NewAssembler(ff ffmpeg.Runner, cfg AssemblerConfig) *Assembler {
	cfg.defaults()
	return &Assembler{ff: ff, cfg: cfg}
}

func (a *Assembler) Available(ctx context.Context) bool {
	return a.ff != nil && a.ff.Available(ctx)
}

// Track is an intermediate or final audio file plus what was lost making it.
type Track struct {
	Path         string
	Degradations []string
}

func (t *Track) degrade(d string) { t.Degradations = append(t.Degradations, d) }

// VoiceTrack writes segments under dir in ordinal order and joins them.
func (a *Assembler) VoiceTrack(ctx context.Context, segs []AudioSegment, dir string) (*Track, error) {
	if len(segs) == 0 {
		return nil, ErrNoSegments
	}
	paths := make([]string, 0, len(segs))
	for i, seg := range segs {
		p := filepath.Join(dir, fmt.Sprintf("seg_%03d.%s", i, extFor(seg.ContentType)))
		if err := os.WriteFile(p, seg.Audio, 0o644); err != nil {
			return nil, fmt.Errorf("write segment %d: %w", seg.Index, err)
		}
		paths = append(paths, p)
	}

	out := filepath.Join(dir, "voice.mp3")
	track := &Track{Path: out}
	if len(paths) == 1 && extFor(segs[0].ContentType) == "mp3" {
		track.Path = paths[0]
		return track, nil
	}

	if a.Available(ctx) {
		err := a.concat(ctx, paths, dir, out)
		if err == nil {
			return track, nil
		}
		Logger(ctx).Warn("ffmpeg concat failed, falling back", "error", err)
	}

	if allMP3(segs) {
		if err := rawConcat(paths, out); err != nil {
			return nil, err
		}
		track.degrade(DegradeRawConcat)
		return track, nil
	}
	track.Path = paths[0]
	track.degrade(DegradeSingleSegment)
	return track, nil
}

func (a *Assembler) concat(ctx context.Context, paths []string, dir, out string) error {
	var list strings.Builder
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	listPath := filepath.Join(dir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return a.ff.Run(ctx,
		"-f", "concat", "-safe", "0", "-i", listPath,
		"-c:a", "libmp3lame", "-b:a", a.cfg.Bitrate,
		out,
	)
}

// MixArgs builds the overlay command. The bed is looped and amix stops
// with the voice, so the bed always matches the voice length.
func (a *Assembler) MixArgs(voice, background string, voiceSeconds float64, out string) []string {
	vol := strconv.FormatFloat(a.cfg.MusicVolume, 'f', -1, 64)
	bg := fmt.Sprintf("[1:a]volume=%s,afade=t=in:st=0:d=%s", vol, secs(a.cfg.FadeIn))
	if voiceSeconds > 0 {
		start := voiceSeconds - a.cfg.FadeOut.Seconds()
		if start < 0 {
			start = 0
		}
		bg += fmt.Sprintf(",afade=t=out:st=%s:d=%s", strconv.FormatFloat(start, 'f', 2, 64), secs(a.cfg.FadeOut))
	}
	filter := bg + "[bg];[0:a][bg]amix=inputs=2:duration=first:dropout_transition=2[out]"
	return []string{
		"-i", voice,
		"-stream_loop", "-1", "-i", background,
		"-filter_complex", filter,
		"-map", "[out]",
		"-c:a", "libmp3lame", "-b:a", a.cfg.Bitrate,
		out,
	}
}

// Mix overlays background under voice. On failure the voice track is
// returned unchanged with a degradation.
func (a *Assembler) Mix(ctx context.Context, voice *Track, background, dir string) *Track {
	out := &Track{Path: voice.Path, Degradations: append([]string(nil), voice.Degradations...)}
	if background == "" {
		return out
	}
	if !a.Available(ctx) {
		out.degrade(DegradeNoMusic)
		return out
	}
	dur, err := a.ff.Duration(ctx, voice.Path)
	if err != nil {
		Logger(ctx).Warn("probe voice track", "error", err)
		dur = 0
	}
	mixed := filepath.Join(dir, "mixed.mp3")
	if err := a.ff.Run(ctx, a.MixArgs(voice.Path, background, dur, mixed)...); err != nil {
		Logger(ctx).Warn("music mix failed, keeping voice only", "error", err)
		out.degrade(DegradeMixFailed)
		return out
	}
	out.Path = mixed
	return out
}

// Enhance loudness-normalizes in into dest. Without the tool, or on
// failure, in is copied as-is.
func (a *Assembler) Enhance(ctx context.Context, in *Track, dest string) (*Track, error) {
	out := &Track{Path: dest, Degradations: append([]string(nil), in.Degradations...)}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if a.Available(ctx) {
		err := a.ff.Run(ctx,
			"-i", in.Path,
			"-af", "loudnorm="+a.cfg.Loudness,
			"-c:a", "libmp3lame", "-b:a", a.cfg.Bitrate,
			dest,
		)
		if err == nil {
			return out, nil
		}
		Logger(ctx).Warn("loudness normalization failed", "error", err)
	}
	if err := copyFile(in.Path, dest); err != nil {
		return nil, err
	}
	out.degrade(DegradeNoLoudnorm)
	return out, nil
}

// Duration probes path, falling back to the synthesis-reported lengths.
func (a *Assembler) Duration(ctx context.Context, path string, segs []AudioSegment) float64 {
	if a.Available(ctx) {
		if d, err := a.ff.Duration(ctx, path); err == nil && d > 0 {
			return d
		}
	}
	ms := 0
	for _, s := range segs {
		ms += s.DurationMs
	}
	return float64(ms) / 1000
}

// Analyze measures mean and peak volume of the final file. It is
// informational only; failures are logged and yield nil.
func (a *Assembler) Analyze(ctx context.Context, path string) *ffmpeg.VolumeStats {
	if !a.Available(ctx) {
		return nil
	}
	v, err := a.ff.Volume(ctx, path)
	if err != nil {
		Logger(ctx).Warn("volume analysis failed", "path", path, "error", err)
		return nil
	}
	return v
}

func secs(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func extFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "wav"):
		return "wav"
	case strings.Contains(contentType, "flac"):
		return "flac"
	case strings.Contains(contentType, "pcm"):
		return "pcm"
	default:
		return "mp3"
	}
}

func allMP3(segs []AudioSegment) bool {
	for _, s := range segs {
		if extFor(s.ContentType) != "mp3" {
			return false
		}
	}
	return true
}

// rawConcat joins MP3 frames byte-wise; players tolerate the repeated
// headers.
func rawConcat(paths []string, out string) error {
	var buf bytes.Buffer
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read segment: %w", err)
		}
		buf.Write(data)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write voice track: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	if src == dst {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}
