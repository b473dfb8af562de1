package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MINIMAX_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Podcast.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Podcast.Concurrency)
	}
	if cfg.Podcast.SynthPace != 1500*time.Millisecond {
		t.Errorf("SynthPace = %v", cfg.Podcast.SynthPace)
	}
	if cfg.Podcast.MinAudioBytes != 1000 {
		t.Errorf("MinAudioBytes = %d", cfg.Podcast.MinAudioBytes)
	}
	if cfg.Music.Volume != 0.3 {
		t.Errorf("Music.Volume = %v", cfg.Music.Volume)
	}
	if cfg.MiniMax.BaseURL != "https://api.minimax.chat" {
		t.Errorf("BaseURL = %q", cfg.MiniMax.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("PODCAST_SYNTH_PACE", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"SERVER_PORT", "PODCAST_SYNTH_PACE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidateMissing(t *testing.T) {
	cfg := &Config{
		LLM:     LLMConfig{DefaultProvider: "minimax"},
		Storage: StorageConfig{Backend: "minio"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"MINIMAX_API_KEY", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("API_KEYS", " a, ,b ,")
	got := getEnvList("API_KEYS")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("getEnvList = %q", got)
	}
}
