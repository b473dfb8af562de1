package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikhilbhutani/podcastgen/internal/podcast"
)

func TestEstimateCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newEstimateCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--duration", "10"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "about 2m50s") {
		t.Errorf("output = %q", out.String())
	}

	cmd = newEstimateCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--duration", "31"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for 31 minutes")
	}
}

func TestBatchSampleCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	cmd := newBatchSampleCmd()
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	cfg, err := podcast.LoadBatchConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Topics) != 4 {
		t.Errorf("topics = %d", len(cfg.Topics))
	}
}

func TestJobFlagsTopicFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocean_currents.md")
	if err := os.WriteFile(path, []byte("# Currents\n\nThe **Gulf Stream** moves warm water north."), 0o644); err != nil {
		t.Fatal(err)
	}
	f := jobFlags{topicFile: path, scene: "Dialogue", duration: 3}
	job, brief, err := f.job(nil)
	if err != nil {
		t.Fatal(err)
	}
	if job.Topic != "ocean_currents" || job.Scene != podcast.SceneDialogue {
		t.Errorf("job = %+v", job)
	}
	if !strings.Contains(brief, "Gulf Stream") || strings.Contains(brief, "**") {
		t.Errorf("brief = %q", brief)
	}
}

func TestFormatting(t *testing.T) {
	if got := formatBytes(1536); got != "1.5 KB" {
		t.Errorf("formatBytes = %q", got)
	}
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate short = %q", got)
	}
}
