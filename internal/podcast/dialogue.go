package podcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/nikhilbhutani/podcastgen/internal/llm"
	"github.com/nikhilbhutani/podcastgen/pkg/chunker"
	"github.com/nikhilbhutani/podcastgen/pkg/speechrate"
)

// ChatClient is the text-generation dependency; llm.Gateway satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// ScriptSource records which rung of the parse ladder produced a script.
type ScriptSource string

const (
	SourceStructured  ScriptSource = "structured"
	SourceLabelled    ScriptSource = "labelled"
	SourceRoundRobin  ScriptSource = "round_robin"
	SourceFallback    ScriptSource = "fallback"
	SourcePreauthored ScriptSource = "preauthored"
)

type Script struct {
	Segments       []DialogueSegment `json:"segments"`
	Source         ScriptSource      `json:"source"`
	Raw            string            `json:"-"`
	Provider       string            `json:"provider,omitempty"`
	Model          string            `json:"model,omitempty"`
	CostUSD        float64           `json:"cost_usd,omitempty"`
	FallbackReason string            `json:"fallback_reason,omitempty"`
	// Truncated means the model hit its token limit; the tail of the
	// dialogue was repaired or dropped.
	Truncated bool `json:"truncated,omitempty"`
}

// Turns converts the script back to its portable form, for writing a
// generated script to disk and loading it later.
func (s *Script) Turns() []Turn {
	turns := make([]Turn, len(s.Segments))
	for i, seg := range s.Segments {
		turns[i] = Turn{Speaker: seg.Speaker, Text: seg.Text, VoiceID: seg.VoiceID, Emotion: string(seg.Emotion)}
	}
	return turns
}

type GeneratorConfig struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	// MaxSegmentRunes bounds a single segment's text; longer turns are split.
	MaxSegmentRunes int
}

type Generator struct {
	chat ChatClient
	cfg  GeneratorConfig
}

func NewGenerator(chat ChatClient, cfg GeneratorConfig) *Generator {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxSegmentRunes == 0 {
		cfg.MaxSegmentRunes = 300
	}
	return &Generator{chat: chat, cfg: cfg}
}

var ErrEmptyScript = errors.New("script has no usable segments")

// Generate produces the dialogue for a job. It falls back to a canned
// script rather than failing; the only error is context cancellation.
func (g *Generator) Generate(ctx context.Context, job Job, brief string) (*Script, error) {
	log := Logger(ctx)
	roster := NewRoster(job.Scene, job.voices(), job.names())

	if g.chat == nil {
		return g.fallback(job, roster, "no text generation service configured"), nil
	}

	system, user, err := BuildPrompt(job, brief)
	if err != nil {
		return g.fallback(job, roster, err.Error()), nil
	}

	resp, err := g.chat.Chat(ctx, llm.ChatRequest{
		Provider: g.cfg.Provider,
		Model:    g.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		TopP:        g.cfg.TopP,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("dialogue generation failed, using fallback script", "error", err)
		return g.fallback(job, roster, err.Error()), nil
	}

	if resp.Truncated() {
		log.Warn("dialogue response hit the token limit", "max_tokens", g.cfg.MaxTokens, "output_tokens", resp.OutputTokens)
	}
	script := g.parse(resp.Content, job, roster)
	script.Truncated = resp.Truncated()
	script.Raw = resp.Content
	script.Provider = resp.Provider
	script.Model = resp.Model
	script.CostUSD = resp.CostUSD
	if len(script.Segments) == 0 {
		log.Warn("generated dialogue had no usable segments, using fallback script", "raw_len", len(resp.Content))
		fb := g.fallback(job, NewRoster(job.Scene, job.voices(), job.names()), "no usable segments in response")
		fb.Raw, fb.Provider, fb.Model, fb.CostUSD = script.Raw, script.Provider, script.Model, script.CostUSD
		return fb, nil
	}

	log.Info("dialogue generated", "source", script.Source, "segments", len(script.Segments), "provider", resp.Provider)
	return script, nil
}

// Parse runs the decomposition ladder over raw model output: structured
// payload, then labelled lines, then round-robin sentence chunks.
func (g *Generator) Parse(raw string, job Job) *Script {
	return g.parse(raw, job, NewRoster(job.Scene, job.voices(), job.names()))
}

func (g *Generator) parse(raw string, job Job, roster *Roster) *Script {
	switch p := ParseResponse(raw).(type) {
	case Structured:
		segs := segmentsFromTurns(p.Turns, roster, true, g.cfg.MaxSegmentRunes)
		if len(segs) > 0 {
			return &Script{Segments: segs, Source: SourceStructured}
		}
		return &Script{}
	case FreeText:
		text := p.Text
		if speechrate.TooLong(text, job.Duration) {
			text = chunker.Truncate(text, truncateLimit(job))
		}
		if turns := decomposeLabelled(text); len(turns) > 0 {
			if segs := segmentsFromTurns(turns, roster, true, g.cfg.MaxSegmentRunes); len(segs) > 0 {
				return &Script{Segments: segs, Source: SourceLabelled}
			}
		}
		segs := segmentsFromTurns(decomposeRoundRobin(text), roster, true, g.cfg.MaxSegmentRunes)
		return &Script{Segments: segs, Source: SourceRoundRobin}
	}
	return &Script{}
}

// truncateLimit is the expected script length, but never so short that a
// multi-speaker job collapses into a single round-robin chunk.
func truncateLimit(job Job) int {
	limit := speechrate.ExpectedChars(job.Duration)
	if n := len(job.names()); n > 1 && limit < MaxSplitRunes*n {
		limit = MaxSplitRunes * n
	}
	return limit
}

func (g *Generator) fallback(job Job, roster *Roster, reason string) *Script {
	segs := segmentsFromTurns(fallbackTurns(job.Scene, job.Topic, job.names()), roster, false, g.cfg.MaxSegmentRunes)
	return &Script{Segments: segs, Source: SourceFallback, FallbackReason: reason}
}

// Load builds segments from a pre-authored script, bypassing generation.
// Voice IDs in the script are trusted as given.
func (g *Generator) Load(job Job, turns []Turn) (*Script, error) {
	roster := NewRoster(job.Scene, job.voices(), job.names())
	segs := segmentsFromTurns(turns, roster, false, g.cfg.MaxSegmentRunes)
	if len(segs) == 0 {
		return nil, ErrEmptyScript
	}
	return &Script{Segments: segs, Source: SourcePreauthored}, nil
}

// LoadScriptFile reads a pre-authored script in JSON or YAML.
func LoadScriptFile(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var turns []Turn
		if err := yaml.Unmarshal(data, &turns); err != nil {
			var wrapped struct {
				Dialogues []Turn `yaml:"dialogues"`
			}
			if werr := yaml.Unmarshal(data, &wrapped); werr != nil || len(wrapped.Dialogues) == 0 {
				return nil, fmt.Errorf("parse script yaml: %w", err)
			}
			turns = wrapped.Dialogues
		}
		return turns, nil
	default:
		turns, err := DecodeTurns(data)
		if err != nil {
			return nil, fmt.Errorf("parse script json: %w", err)
		}
		return turns, nil
	}
}

// WriteScriptFile stores turns as indented JSON, or YAML by extension.
func WriteScriptFile(path string, turns []Turn) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(turns)
	default:
		data, err = marshalIndent(turns)
	}
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create script dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
