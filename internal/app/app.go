// Package app assembles the podcast pipeline and its clients from
// configuration. The API, worker and CLI binaries share it.
package app

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/podcastgen/internal/config"
	"github.com/nikhilbhutani/podcastgen/internal/ffmpeg"
	"github.com/nikhilbhutani/podcastgen/internal/genlog"
	"github.com/nikhilbhutani/podcastgen/internal/llm"
	"github.com/nikhilbhutani/podcastgen/internal/minimax"
	"github.com/nikhilbhutani/podcastgen/internal/multimodal/tts"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
)

// NewMiniMax returns nil when no API key is configured.
func NewMiniMax(cfg config.MiniMaxConfig) *minimax.Client {
	if cfg.APIKey == "" {
		return nil
	}
	opts := []minimax.Option{minimax.WithBaseURL(cfg.BaseURL), minimax.WithTimeout(cfg.Timeout)}
	if cfg.GroupID != "" {
		opts = append(opts, minimax.WithGroupID(cfg.GroupID))
	}
	return minimax.NewClient(cfg.APIKey, opts...)
}

// Options override configuration for one process, mostly from CLI flags.
type Options struct {
	NoMusic   bool
	MusicFile string
	OutputDir string
}

// MusicSource picks the background music source. nil means no music.
func MusicSource(cfg config.MusicConfig, mm *minimax.Client, model string, opts Options) podcast.MusicSource {
	switch {
	case opts.NoMusic || !cfg.Enabled:
		return nil
	case opts.MusicFile != "":
		return podcast.FileMusic{Path: opts.MusicFile}
	case cfg.Source == "file" && cfg.File != "":
		return podcast.FileMusic{Path: cfg.File}
	case cfg.Source == "generated" && mm != nil:
		return podcast.NewGeneratedMusic(mm.Music, model)
	}
	return nil
}

// GenLogSink always writes files; Postgres is added when enabled and a
// pool is available.
func GenLogSink(cfg config.GenLogConfig, db *pgxpool.Pool) genlog.Sink {
	sinks := genlog.Multi{genlog.NewFileSink(cfg.Dir)}
	if cfg.Postgres && db != nil {
		sinks = append(sinks, genlog.NewPostgresSink(db))
	}
	return sinks
}

// BuildPipeline wires text generation, speech, assembly and music.
func BuildPipeline(cfg *config.Config, mm *minimax.Client, db *pgxpool.Pool, opts Options) (*podcast.Pipeline, error) {
	gateway := llm.NewGateway(cfg.LLM, mm)

	speech, err := tts.New(cfg.TTS, mm, cfg.MiniMax.SpeechModel)
	if err != nil {
		return nil, fmt.Errorf("speech backend: %w", err)
	}

	gen := podcast.NewGenerator(gateway, podcast.GeneratorConfig{
		Provider:        cfg.LLM.DefaultProvider,
		Model:           cfg.LLM.DefaultModel,
		MaxTokens:       cfg.LLM.MaxTokens,
		Temperature:     cfg.LLM.Temperature,
		TopP:            cfg.LLM.TopP,
		MaxSegmentRunes: cfg.Podcast.MaxSegmentChars,
	})
	synth := podcast.NewSynthesizer(speech, podcast.SynthConfig{
		Retries:       cfg.Podcast.SynthRetries,
		Backoff:       cfg.Podcast.SynthBackoff,
		Pace:          cfg.Podcast.SynthPace,
		Timeout:       cfg.Podcast.SynthTimeout,
		MinAudioBytes: cfg.Podcast.MinAudioBytes,
		MaxChars:      cfg.Podcast.MaxSegmentChars,
	})
	asm := podcast.NewAssembler(ffmpeg.New(cfg.Podcast.FFmpegPath, cfg.Podcast.FFprobePath), podcast.AssemblerConfig{
		Bitrate:     cfg.Podcast.Bitrate,
		Loudness:    cfg.Podcast.Loudness,
		MusicVolume: cfg.Music.Volume,
		FadeIn:      cfg.Podcast.FadeIn,
		FadeOut:     cfg.Podcast.FadeOut,
	})

	outputDir := cfg.Podcast.OutputDir
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}
	music := MusicSource(cfg.Music, mm, cfg.MiniMax.MusicModel, opts)
	return podcast.NewPipeline(gen, synth, asm, music, GenLogSink(cfg.GenLog, db), podcast.PipelineConfig{
		OutputDir: outputDir,
		TempDir:   cfg.Podcast.TempDir,
	}), nil
}
