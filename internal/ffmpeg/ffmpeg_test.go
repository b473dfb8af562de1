package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMissingBinary(t *testing.T) {
	e := New("/nonexistent/ffmpeg-podcastgen", "/nonexistent/ffprobe-podcastgen")
	if e.Available(context.Background()) {
		t.Fatal("Available = true for missing binary")
	}
	if err := e.Run(context.Background(), "-i", "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Run err = %v", err)
	}
	if _, err := e.Duration(context.Background(), "x.mp3"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Duration err = %v", err)
	}
}

func TestExecErrorKeepsTail(t *testing.T) {
	err := &ExecError{Tool: "ffmpeg", Stderr: "a\nb\nc\nd\ne\nf\ng", Err: errors.New("exit status 1")}
	msg := err.Error()
	if strings.Contains(msg, "a |") || !strings.Contains(msg, "c | d | e | f | g") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestAvailableProbesOnce(t *testing.T) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "calls")
	bin := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\necho x >> " + counter + "\necho 'ffmpeg version 6.1'\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	e := New(bin, "")
	for i := 0; i < 5; i++ {
		if !e.Available(context.Background()) {
			t.Fatalf("Available = false on call %d", i)
		}
	}
	data, err := os.ReadFile(counter)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "x"); n != 1 {
		t.Errorf("ffmpeg -version ran %d times, want 1", n)
	}
}

func TestAvailableIgnoresCancelledCaller(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !New(bin, "").Available(ctx) {
		t.Error("cancelled caller cached an unavailable tool")
	}
}

func TestParseVolume(t *testing.T) {
	out := `[Parsed_volumedetect_0 @ 0x1] n_samples: 882000
[Parsed_volumedetect_0 @ 0x1] mean_volume: -18.4 dB
[Parsed_volumedetect_0 @ 0x1] max_volume: -1.5 dB
[Parsed_volumedetect_0 @ 0x1] histogram_1db: 12`
	v, err := ParseVolume(out)
	if err != nil {
		t.Fatalf("ParseVolume: %v", err)
	}
	if v.MeanDB != -18.4 || v.MaxDB != -1.5 {
		t.Errorf("stats = %+v", v)
	}

	silent, err := ParseVolume("mean_volume: -inf dB\nmax_volume: -inf dB")
	if err != nil || silent.MeanDB != SilenceDB || silent.MaxDB != SilenceDB {
		t.Errorf("silent = %+v, %v", silent, err)
	}

	if _, err := ParseVolume("no filter output"); err == nil {
		t.Error("expected error for missing stats")
	}
}

func TestVolumeRunsVolumedetect(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\ncase \"$*\" in *volumedetect*) echo 'mean_volume: -21.0 dB' >&2; echo 'max_volume: -3.0 dB' >&2;; esac\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	v, err := New(bin, "").Volume(context.Background(), "in.mp3")
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if v.MeanDB != -21 || v.MaxDB != -3 {
		t.Errorf("stats = %+v", v)
	}
}
