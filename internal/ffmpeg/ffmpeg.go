// Package ffmpeg wraps the ffmpeg and ffprobe executables.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrUnavailable = errors.New("ffmpeg: executable not found")

// Runner is what the assembler needs from the audio tool. Exec is the real
// implementation; tests substitute fakes.
type Runner interface {
	Available(ctx context.Context) bool
	Run(ctx context.Context, args ...string) error
	Duration(ctx context.Context, path string) (float64, error)
	Volume(ctx context.Context, path string) (*VolumeStats, error)
}

// SilenceDB stands in for volumedetect's -inf so stats stay JSON-encodable.
const SilenceDB = -120.0

// VolumeStats is the volumedetect summary of a file, in dBFS.
type VolumeStats struct {
	MeanDB float64 `json:"mean_volume_db"`
	MaxDB  float64 `json:"max_volume_db"`
}

type Exec struct {
	FFmpegPath  string
	FFprobePath string

	probeOnce sync.Once
	available bool
}

func New(ffmpegPath, ffprobePath string) *Exec {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Exec{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// ExecError carries the tool's stderr, which is where ffmpeg reports the
// failing filter or input.
type ExecError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s failed: %v (stderr: %s)", e.Tool, e.Err, lastLines(e.Stderr, 5))
}

func (e *ExecError) Unwrap() error { return e.Err }

// Available probes ffmpeg once per Exec and caches the answer. The probe
// uses its own timeout so a cancelled caller cannot cache a false result.
func (e *Exec) Available(context.Context) bool {
	e.probeOnce.Do(func() {
		if _, err := exec.LookPath(e.FFmpegPath); err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		e.available = exec.CommandContext(ctx, e.FFmpegPath, "-version").Run() == nil
	})
	return e.available
}

func (e *Exec) Run(ctx context.Context, args ...string) error {
	_, _, err := e.run(ctx, e.FFmpegPath, append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...))
	return err
}

var (
	meanVolume = regexp.MustCompile(`mean_volume:\s*(-?[\d.]+|-inf) dB`)
	maxVolume  = regexp.MustCompile(`max_volume:\s*(-?[\d.]+|-inf) dB`)
)

// Volume runs the volumedetect filter over path. ffmpeg prints the result
// on stderr at info level.
func (e *Exec) Volume(ctx context.Context, path string) (*VolumeStats, error) {
	_, stderr, err := e.run(ctx, e.FFmpegPath, []string{
		"-hide_banner", "-nostats",
		"-i", path,
		"-af", "volumedetect",
		"-f", "null", "-",
	})
	if err != nil {
		return nil, err
	}
	return ParseVolume(stderr)
}

// ParseVolume extracts mean and max volume from volumedetect output.
func ParseVolume(out string) (*VolumeStats, error) {
	mean, err := volumeValue(meanVolume, out)
	if err != nil {
		return nil, err
	}
	peak, err := volumeValue(maxVolume, out)
	if err != nil {
		return nil, err
	}
	return &VolumeStats{MeanDB: mean, MaxDB: peak}, nil
}

func volumeValue(re *regexp.Regexp, out string) (float64, error) {
	m := re.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("volumedetect: %s not found in output", strings.SplitN(re.String(), ":", 2)[0])
	}
	if m[1] == "-inf" {
		return SilenceDB, nil
	}
	return strconv.ParseFloat(m[1], 64)
}

func (e *Exec) Duration(ctx context.Context, path string) (float64, error) {
	out, _, err := e.run(ctx, e.FFprobePath, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	})
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return d, nil
}

func (e *Exec) run(ctx context.Context, bin string, args []string) (string, string, error) {
	if _, err := exec.LookPath(bin); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrUnavailable, bin)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", "", &ExecError{Tool: bin, Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), stderr.String(), nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
