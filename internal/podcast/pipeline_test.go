package podcast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/podcastgen/internal/ffmpeg"
	"github.com/nikhilbhutani/podcastgen/internal/multimodal/tts"
)

type pipelineFixture struct {
	chat  *fakeChat
	tts   *fakeTTS
	ff    *fakeRunner
	sink  *recordingSink
	out   string
	tmp   string
	music MusicSource
	at    time.Time
}

func newFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	bed := filepath.Join(t.TempDir(), "bed.mp3")
	if err := os.WriteFile(bed, []byte("ID3-bed"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &pipelineFixture{
		chat:  &fakeChat{content: dialogueJSON},
		tts:   &fakeTTS{},
		ff:    &fakeRunner{available: true, duration: 42.5, volume: &ffmpeg.VolumeStats{MeanDB: -17.2, MaxDB: -1.6}},
		sink:  &recordingSink{},
		out:   t.TempDir(),
		tmp:   t.TempDir(),
		music: FileMusic{Path: bed},
		at:    time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC),
	}
}

func (f *pipelineFixture) pipeline() *Pipeline {
	return NewPipeline(
		NewGenerator(f.chat, GeneratorConfig{}),
		NewSynthesizer(f.tts, SynthConfig{MinAudioBytes: 1000, Backoff: time.Millisecond}),
		NewAssembler(f.ff, AssemblerConfig{}),
		f.music,
		f.sink,
		PipelineConfig{OutputDir: f.out, TempDir: f.tmp, Now: func() time.Time { return f.at }},
	)
}

func TestPipelineSuccess(t *testing.T) {
	f := newFixture(t)
	var stages []Stage
	art, err := f.pipeline().Generate(context.Background(), dialogueJob(), WithProgress(func(p Progress) {
		stages = append(stages, p.Stage)
	}))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Status != StatusSuccess {
		t.Fatalf("status = %s, degradations = %v, reason = %s", art.Status, art.Degradations, art.Reason)
	}
	want := filepath.Join(f.out, "podcast_dialogue_coffee_20250504_030201.mp3")
	if art.Path != want {
		t.Errorf("Path = %q, want %q", art.Path, want)
	}
	if _, err := os.Stat(art.Path); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
	if art.DurationSeconds != 42.5 || len(art.Segments) != 3 || art.Requested != 3 {
		t.Errorf("artifact = %+v", art)
	}
	if art.Volume == nil || art.Volume.MeanDB != -17.2 || art.Volume.MaxDB != -1.6 {
		t.Errorf("volume = %+v", art.Volume)
	}
	if !f.ff.ran("amix") || !f.ff.ran("loudnorm") {
		t.Errorf("expected mix and loudnorm runs: %v", f.ff.calls)
	}
	if stages[len(stages)-1] != StageDone {
		t.Errorf("stages = %v", stages)
	}
	if len(f.sink.entries) != 1 || f.sink.entries[0].Status != "success" || f.sink.entries[0].SegmentCount != 3 {
		t.Errorf("genlog = %+v", f.sink.entries)
	}
	if entries, _ := os.ReadDir(f.tmp); len(entries) != 0 {
		t.Errorf("temp dir not cleaned: %d entries", len(entries))
	}
}

func TestPipelineMusicFailureSkipsStage(t *testing.T) {
	f := newFixture(t)
	f.music = FileMusic{Path: filepath.Join(t.TempDir(), "missing.mp3")}

	art, err := f.pipeline().Generate(context.Background(), dialogueJob())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Status != StatusPartial || !slices.Contains(art.Degradations, DegradeNoMusic) {
		t.Errorf("artifact = %+v", art)
	}
	if s := art.Stages[2]; s.Stage != StageMusic || s.Status != StageSkipped {
		t.Errorf("music stage = %+v", s)
	}
	if f.ff.ran("amix") {
		t.Error("mixed without a background track")
	}
}

func TestPipelineWithoutTool(t *testing.T) {
	f := newFixture(t)
	f.ff.available = false

	art, err := f.pipeline().Generate(context.Background(), dialogueJob())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Status != StatusPartial {
		t.Errorf("status = %s", art.Status)
	}
	for _, d := range []string{DegradeNoMusic, DegradeRawConcat, DegradeNoLoudnorm} {
		if !slices.Contains(art.Degradations, d) {
			t.Errorf("missing degradation %s in %v", d, art.Degradations)
		}
	}
	if art.DurationSeconds != 6 {
		t.Errorf("duration = %v, want sum of segment lengths", art.DurationSeconds)
	}
	if art.Volume != nil {
		t.Errorf("volume measured without the tool: %+v", art.Volume)
	}
	data, _ := os.ReadFile(art.Path)
	if len(data) != 3*1500 {
		t.Errorf("artifact is %d bytes", len(data))
	}
}

func TestPipelineWelcomeAndNoMusic(t *testing.T) {
	f := newFixture(t)
	job := dialogueJob()
	job.Welcome = "Welcome to the coffee hour!"
	job.NoMusic = true

	art, err := f.pipeline().Generate(context.Background(), job)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	first := f.tts.requests[0]
	if first.Input != job.Welcome || first.Voice != "male-qn-jingying" || first.Emotion != "happy" {
		t.Errorf("welcome request = %+v", first)
	}
	if art.Requested != 4 || art.Status != StatusSuccess {
		t.Errorf("artifact = %+v", art)
	}
	if art.Stages[2].Status != StageSkipped {
		t.Errorf("music stage = %+v", art.Stages[2])
	}
}

func TestPipelinePreauthoredScript(t *testing.T) {
	f := newFixture(t)
	job := dialogueJob()
	job.Script = []Turn{{Speaker: "Alex", Text: "Straight from the script file."}}

	art, err := f.pipeline().Generate(context.Background(), job)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.chat.calls != 0 || art.ScriptSource != SourcePreauthored {
		t.Errorf("chat calls = %d, source = %s", f.chat.calls, art.ScriptSource)
	}
}

func TestPipelineInvalidJob(t *testing.T) {
	f := newFixture(t)
	art, err := f.pipeline().Generate(context.Background(), Job{Scene: "opera", Duration: 99})
	if !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("err = %v", err)
	}
	if art.Status != StatusFailed || !strings.Contains(art.Reason, "duration") || !strings.Contains(art.Reason, "scene") {
		t.Errorf("artifact = %+v", art)
	}
	if len(f.sink.entries) != 0 {
		t.Error("invalid job was logged")
	}
}

func TestPipelineAllSegmentsFail(t *testing.T) {
	f := newFixture(t)
	f.tts.respond = func(int, tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		return nil, errors.New("voice rejected")
	}
	art, err := f.pipeline().Generate(context.Background(), dialogueJob())
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("err = %v", err)
	}
	if art.Status != StatusFailed || art.Path != "" {
		t.Errorf("artifact = %+v", art)
	}
	if len(f.sink.entries) != 1 || f.sink.entries[0].Status != "failed" {
		t.Errorf("genlog = %+v", f.sink.entries)
	}
	if entries, _ := os.ReadDir(f.tmp); len(entries) != 0 {
		t.Errorf("temp dir not cleaned: %d entries", len(entries))
	}
}

func TestPipelinePartialWhenSegmentDropped(t *testing.T) {
	f := newFixture(t)
	f.tts.respond = func(call int, _ tts.SynthesisRequest) (*tts.SynthesisResult, error) {
		if call == 2 {
			return nil, errors.New("voice rejected")
		}
		return okAudio(), nil
	}
	art, err := f.pipeline().Generate(context.Background(), dialogueJob())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Status != StatusPartial || len(art.Segments) != 2 || art.Requested != 3 {
		t.Errorf("artifact = %+v", art)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Remote Work: Pros & Cons!", "remote_work_pros_cons"},
		{"人工智能的未来", "人工智能的未来"},
		{"???", "untitled"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in, 30); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Slug("abcdefghij", 4); got != "abcd" {
		t.Errorf("Slug truncation = %q", got)
	}
}
