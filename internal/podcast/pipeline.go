package podcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/podcastgen/internal/genlog"
)

const DegradeFallbackScript = "fallback_script"

type PipelineConfig struct {
	OutputDir string
	TempDir   string // parent for per-job scratch directories
	Now       func() time.Time
}

// Pipeline runs one job end to end. It is safe for concurrent use; each
// Generate call gets its own scratch directory and tracker.
type Pipeline struct {
	gen    *Generator
	synth  *Synthesizer
	asm    *Assembler
	music  MusicSource
	genlog genlog.Sink
	cfg    PipelineConfig
}

func NewPipeline(gen *Generator, synth *Synthesizer, asm *Assembler, music MusicSource, sink genlog.Sink, cfg PipelineConfig) *Pipeline {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{gen: gen, synth: synth, asm: asm, music: music, genlog: sink, cfg: cfg}
}

func (p *Pipeline) Generator() *Generator { return p.gen }

type runOptions struct {
	brief string
	watch func(Progress)
}

type RunOption func(*runOptions)

// WithBrief adds background material, such as an extracted document, to
// the generation prompt.
func WithBrief(text string) RunOption {
	return func(o *runOptions) { o.brief = text }
}

// WithProgress receives a snapshot after every stage transition.
func WithProgress(fn func(Progress)) RunOption {
	return func(o *runOptions) { o.watch = fn }
}

// Generate produces one artifact. The returned artifact is never nil; on
// failure its Status is failed, Reason says why, and the error is returned
// as well.
func (p *Pipeline) Generate(ctx context.Context, job Job, opts ...RunOption) (*Artifact, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	log := Logger(ctx).With("job_id", job.ID, "scene", job.Scene)
	ctx = WithLogger(ctx, log)

	tracker := NewTracker(p.cfg.Now)
	if o.watch != nil {
		tracker.Watch(o.watch)
	}
	art := &Artifact{JobID: job.ID}
	run := &run{p: p, job: job, art: art, tracker: tracker}

	if err := job.Validate(); err != nil {
		return run.fail(ctx, err)
	}

	dir, err := os.MkdirTemp(p.cfg.TempDir, "podcast-"+job.ID+"-")
	if err != nil {
		return run.fail(ctx, fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(dir)

	log.Info("podcast generation started", "topic", job.Topic, "duration", job.Duration)
	return run.execute(ctx, dir, o.brief)
}

type run struct {
	p       *Pipeline
	job     Job
	art     *Artifact
	tracker *Tracker
	script  *Script
}

func (r *run) execute(ctx context.Context, dir, brief string) (*Artifact, error) {
	log := Logger(ctx)
	job := r.job

	r.tracker.Start(StageContent)
	script, err := r.loadScript(ctx, brief)
	if err != nil {
		return r.fail(ctx, err)
	}
	r.script = script
	r.art.ScriptSource = script.Source
	if script.Source == SourceFallback {
		r.art.Degradations = append(r.art.Degradations, DegradeFallbackScript)
	}

	segs := script.Segments
	if w := strings.TrimSpace(job.Welcome); w != "" {
		segs = withWelcome(segs, w, job)
	}
	r.art.Requested = len(segs)

	r.tracker.Start(StageSpeech)
	synth, err := r.p.synth.SynthesizeAll(ctx, segs, func(done, total int) {
		log.Debug("synthesis progress", "done", done, "total", total)
	})
	if err != nil {
		return r.fail(ctx, err)
	}
	for _, f := range synth.Failed {
		log.Warn("segment dropped", "segment", f.Index, "error", f.Error)
	}

	background := r.background(ctx, dir)

	r.tracker.Start(StageMixing)
	voice, err := r.p.asm.VoiceTrack(ctx, synth.Segments, dir)
	if err != nil {
		return r.fail(ctx, err)
	}
	mixed := r.p.asm.Mix(ctx, voice, background, dir)

	r.tracker.Start(StageEnhance)
	out := job.OutputPath
	if out == "" {
		out = filepath.Join(r.p.cfg.OutputDir, OutputFilename(job, r.p.cfg.Now()))
	}
	final, err := r.p.asm.Enhance(ctx, mixed, out)
	if err != nil {
		return r.fail(ctx, err)
	}

	r.art.Path = final.Path
	r.art.Degradations = append(r.art.Degradations, final.Degradations...)
	r.art.DurationSeconds = r.p.asm.Duration(ctx, final.Path, synth.Segments)
	r.art.Volume = r.p.asm.Analyze(ctx, final.Path)
	if info, err := os.Stat(final.Path); err == nil {
		r.art.SizeBytes = info.Size()
	}
	for _, s := range synth.Segments {
		r.art.Segments = append(r.art.Segments, SegmentRef{Index: s.Index, Speaker: s.Speaker, VoiceID: s.VoiceID, Bytes: s.Size()})
	}
	r.art.Status = StatusSuccess
	if len(synth.Failed) > 0 || len(r.art.Degradations) > 0 {
		r.art.Status = StatusPartial
	}

	elapsed, _ := r.tracker.Finish()
	r.art.Elapsed = elapsed
	r.art.Stages = r.tracker.Stages()
	r.writeLog(ctx)

	log.Info("podcast generation finished",
		"status", r.art.Status,
		"path", r.art.Path,
		"segments", len(r.art.Segments),
		"requested", r.art.Requested,
		"duration_seconds", r.art.DurationSeconds,
		"elapsed", elapsed,
	)
	if v := r.art.Volume; v != nil {
		log.Debug("final loudness", "mean_volume_db", v.MeanDB, "max_volume_db", v.MaxDB)
	}
	return r.art, nil
}

func (r *run) loadScript(ctx context.Context, brief string) (*Script, error) {
	if len(r.job.Script) > 0 {
		return r.p.gen.Load(r.job, r.job.Script)
	}
	return r.p.gen.Generate(ctx, r.job, brief)
}

// background resolves the music stage. Failures skip the stage and never
// fail the job.
func (r *run) background(ctx context.Context, dir string) string {
	switch {
	case r.job.NoMusic:
		r.tracker.Skip(StageMusic, "disabled for job")
		return ""
	case r.p.music == nil:
		r.tracker.Skip(StageMusic, "no music source configured")
		return ""
	case !r.p.asm.Available(ctx):
		r.tracker.Skip(StageMusic, "mixing tool unavailable")
		r.art.Degradations = append(r.art.Degradations, DegradeNoMusic)
		return ""
	}

	r.tracker.Start(StageMusic)
	path, err := r.p.music.Background(ctx, r.job, dir)
	if err != nil {
		Logger(ctx).Warn("background music unavailable", "error", err)
		r.tracker.Skip(StageMusic, err.Error())
		r.art.Degradations = append(r.art.Degradations, DegradeNoMusic)
		return ""
	}
	return path
}

func (r *run) fail(ctx context.Context, err error) (*Artifact, error) {
	r.tracker.Fail(err.Error())
	r.art.Status = StatusFailed
	r.art.Reason = err.Error()
	r.art.Elapsed = r.tracker.Elapsed()
	r.art.Stages = r.tracker.Stages()
	if !errors.Is(err, ErrInvalidJob) {
		r.writeLog(ctx)
	}
	Logger(ctx).Error("podcast generation failed", "error", err)
	return r.art, err
}

func (r *run) writeLog(ctx context.Context) {
	if r.p.genlog == nil {
		return
	}
	e := genlog.Entry{
		JobID:       r.job.ID,
		Topic:       r.job.Topic,
		Scene:       string(r.job.Scene),
		Duration:    r.job.Duration,
		Synthesized: len(r.art.Segments),
		Status:      string(r.art.Status),
		Reason:      r.art.Reason,
		OutputPath:  r.art.Path,
		ElapsedMs:   r.art.Elapsed.Milliseconds(),
		CreatedAt:   r.p.cfg.Now(),
	}
	if s := r.script; s != nil {
		e.Provider, e.Model, e.Source = s.Provider, s.Model, string(s.Source)
		e.RawResponse = s.Raw
		e.SegmentCount = len(s.Segments)
		e.CostUSD = s.CostUSD
	}
	if err := r.p.genlog.Write(context.WithoutCancel(ctx), e); err != nil {
		Logger(ctx).Warn("write generation log", "error", err)
	}
}

// withWelcome prepends the greeting, spoken by the first speaker, and
// renumbers the segments.
func withWelcome(segs []DialogueSegment, text string, job Job) []DialogueSegment {
	roster := NewRoster(job.Scene, job.voices(), job.names())
	voice, _ := roster.Assign(roster.Name(0), "", "")
	out := make([]DialogueSegment, 0, len(segs)+1)
	out = append(out, DialogueSegment{Speaker: roster.Name(0), VoiceID: voice, Emotion: EmotionHappy, Text: text})
	out = append(out, segs...)
	for i := range out {
		out[i].Index = i
	}
	return out
}

// OutputFilename is podcast_<scene>_<topic-slug>_<timestamp>.mp3.
func OutputFilename(job Job, at time.Time) string {
	return fmt.Sprintf("podcast_%s_%s_%s.mp3", job.Scene, Slug(job.Topic, 30), at.Format("20060102_150405"))
}

// Slug keeps letters and digits of any script, lowercased, joining runs
// of anything else with a single underscore.
func Slug(s string, maxRunes int) string {
	var b strings.Builder
	n := 0
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if n >= maxRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
				n++
			}
			b.WriteRune(r)
			n++
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
