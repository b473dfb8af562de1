package podcast

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nikhilbhutani/podcastgen/internal/ffmpeg"
)

func segments(contentTypes ...string) []AudioSegment {
	out := make([]AudioSegment, len(contentTypes))
	for i, ct := range contentTypes {
		out[i] = AudioSegment{Index: i, Audio: []byte{byte('a' + i), byte('a' + i)}, ContentType: ct, DurationMs: 1000}
	}
	return out
}

func TestVoiceTrackConcatInOrder(t *testing.T) {
	dir := t.TempDir()
	ff := &fakeRunner{available: true}
	a := NewAssembler(ff, AssemblerConfig{})

	track, err := a.VoiceTrack(context.Background(), segments("audio/mpeg", "audio/mpeg", "audio/mpeg"), dir)
	if err != nil {
		t.Fatalf("VoiceTrack: %v", err)
	}
	if len(track.Degradations) != 0 || track.Path != filepath.Join(dir, "voice.mp3") {
		t.Errorf("track = %+v", track)
	}
	list, err := os.ReadFile(filepath.Join(dir, "concat.txt"))
	if err != nil {
		t.Fatalf("concat list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(list)), "\n")
	for i, l := range lines {
		if !strings.HasSuffix(l, "seg_00"+string(rune('0'+i))+".mp3'") {
			t.Errorf("line %d = %q", i, l)
		}
	}
	if !ff.ran("-f concat -safe 0") {
		t.Errorf("concat not run: %v", ff.calls)
	}
}

func TestVoiceTrackRawConcatWithoutTool(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(&fakeRunner{}, AssemblerConfig{})

	track, err := a.VoiceTrack(context.Background(), segments("audio/mpeg", "audio/mpeg"), dir)
	if err != nil {
		t.Fatalf("VoiceTrack: %v", err)
	}
	if !slices.Contains(track.Degradations, DegradeRawConcat) {
		t.Errorf("degradations = %v", track.Degradations)
	}
	data, _ := os.ReadFile(track.Path)
	if string(data) != "aabb" {
		t.Errorf("voice track = %q", data)
	}
}

func TestVoiceTrackMixedFormatsKeepsFirst(t *testing.T) {
	a := NewAssembler(&fakeRunner{available: true, failOn: "concat"}, AssemblerConfig{})
	track, err := a.VoiceTrack(context.Background(), segments("audio/wav", "audio/mpeg"), t.TempDir())
	if err != nil {
		t.Fatalf("VoiceTrack: %v", err)
	}
	if !slices.Contains(track.Degradations, DegradeSingleSegment) || !strings.HasSuffix(track.Path, "seg_000.wav") {
		t.Errorf("track = %+v", track)
	}
}

func TestVoiceTrackEmpty(t *testing.T) {
	if _, err := NewAssembler(nil, AssemblerConfig{}).VoiceTrack(context.Background(), nil, t.TempDir()); err != ErrNoSegments {
		t.Errorf("err = %v", err)
	}
}

func TestMixArgs(t *testing.T) {
	a := NewAssembler(nil, AssemblerConfig{})
	args := strings.Join(a.MixArgs("voice.mp3", "bed.mp3", 10, "out.mp3"), " ")
	for _, want := range []string{
		"-stream_loop -1 -i bed.mp3",
		"volume=0.3",
		"afade=t=in:st=0:d=2",
		"afade=t=out:st=7.00:d=3",
		"amix=inputs=2:duration=first:dropout_transition=2",
		"-b:a 192k out.mp3",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("mix args missing %q: %s", want, args)
		}
	}
	if strings.Contains(strings.Join(a.MixArgs("v", "b", 0, "o"), " "), "t=out") {
		t.Error("fade-out without a known voice duration")
	}
}

func TestMixFailureKeepsVoice(t *testing.T) {
	a := NewAssembler(&fakeRunner{available: true, duration: 5, failOn: "amix"}, AssemblerConfig{})
	voice := &Track{Path: "voice.mp3"}
	out := a.Mix(context.Background(), voice, "bed.mp3", t.TempDir())
	if out.Path != "voice.mp3" || !slices.Contains(out.Degradations, DegradeMixFailed) {
		t.Errorf("out = %+v", out)
	}
}

func TestEnhanceFallsBackToCopy(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.mp3")
	os.WriteFile(in, []byte("voice"), 0o644)
	a := NewAssembler(&fakeRunner{available: true, failOn: "loudnorm"}, AssemblerConfig{})

	dest := filepath.Join(dir, "out", "final.mp3")
	out, err := a.Enhance(context.Background(), &Track{Path: in}, dest)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if !slices.Contains(out.Degradations, DegradeNoLoudnorm) {
		t.Errorf("degradations = %v", out.Degradations)
	}
	if data, _ := os.ReadFile(dest); string(data) != "voice" {
		t.Errorf("dest = %q", data)
	}
}

func TestDurationFallsBackToSegments(t *testing.T) {
	a := NewAssembler(&fakeRunner{}, AssemblerConfig{})
	if got := a.Duration(context.Background(), "x", segments("audio/mpeg", "audio/mpeg")); got != 2 {
		t.Errorf("Duration = %v", got)
	}
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	ff := &fakeRunner{available: true, volume: &ffmpeg.VolumeStats{MeanDB: -20, MaxDB: -2}}
	if v := NewAssembler(ff, AssemblerConfig{}).Analyze(ctx, "x.mp3"); v == nil || v.MeanDB != -20 {
		t.Errorf("Analyze = %+v", v)
	}
	if v := NewAssembler(&fakeRunner{available: true}, AssemblerConfig{}).Analyze(ctx, "x.mp3"); v != nil {
		t.Errorf("Analyze on tool error = %+v, want nil", v)
	}
	if v := NewAssembler(&fakeRunner{}, AssemblerConfig{}).Analyze(ctx, "x.mp3"); v != nil {
		t.Errorf("Analyze without tool = %+v, want nil", v)
	}
}
