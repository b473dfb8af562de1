package tts

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type LocalTTSConfig struct {
	PiperBinPath string // default: piper
	ModelPath    string // .onnx voice model
	Speakers     int    // >1 for multi-speaker models
}

// LocalTTS runs Piper as a subprocess. A dialogue needs distinct voices, so
// a voice ID ending in .onnx selects that model file, and on a
// multi-speaker model any other ID maps to a stable speaker index.
// Emotion is ignored.
type LocalTTS struct {
	cfg LocalTTSConfig
}

func NewLocalTTS(cfg LocalTTSConfig) *LocalTTS {
	if cfg.PiperBinPath == "" {
		cfg.PiperBinPath = "piper"
	}
	return &LocalTTS{cfg: cfg}
}

func (l *LocalTTS) Name() string { return "local-piper" }

// args builds the Piper command line for one segment.
func (l *LocalTTS) args(req SynthesisRequest, outPath string) ([]string, error) {
	model := l.cfg.ModelPath
	if strings.HasSuffix(req.Voice, ".onnx") {
		model = req.Voice
	}
	if model == "" {
		return nil, fmt.Errorf("piper model path is required (set TTS_LOCAL_PIPER_MODEL)")
	}

	args := []string{"--model", model, "--output_file", outPath}
	if model == l.cfg.ModelPath && l.cfg.Speakers > 1 && req.Voice != "" {
		args = append(args, "--speaker", strconv.Itoa(l.speaker(req.Voice)))
	}
	if req.Speed > 0 && req.Speed != 1 {
		// length_scale is the inverse of speaking rate
		args = append(args, "--length_scale", strconv.FormatFloat(1/req.Speed, 'f', 3, 64))
	}
	return args, nil
}

func (l *LocalTTS) speaker(voice string) int {
	if n, err := strconv.Atoi(voice); err == nil && n >= 0 && n < l.cfg.Speakers {
		return n
	}
	h := fnv.New32a()
	h.Write([]byte(voice))
	return int(h.Sum32() % uint32(l.cfg.Speakers))
}

// Synthesize pipes text into Piper and returns the WAV file it writes.
func (l *LocalTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	out, err := os.CreateTemp("", "piper-*.wav")
	if err != nil {
		return nil, fmt.Errorf("piper output file: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	args, err := l.args(req, out.Name())
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, l.cfg.PiperBinPath, args...)
	cmd.Stdin = strings.NewReader(req.Input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("piper failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	audio, err := os.ReadFile(out.Name())
	if err != nil {
		return nil, fmt.Errorf("read piper output: %w", err)
	}
	return &SynthesisResult{Audio: audio, ContentType: "audio/wav", Encoding: "binary"}, nil
}
