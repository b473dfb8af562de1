package tts

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestLocalArgs(t *testing.T) {
	l := NewLocalTTS(LocalTTSConfig{ModelPath: "en.onnx", Speakers: 4})

	args, err := l.args(SynthesisRequest{Voice: "2", Speed: 2}, "out.wav")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"--model", "en.onnx", "--output_file", "out.wav", "--speaker", "2", "--length_scale", "0.500"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v", args)
	}

	args, _ = l.args(SynthesisRequest{Voice: "voices/amy.onnx"}, "out.wav")
	if args[1] != "voices/amy.onnx" || slices.Contains(args, "--speaker") {
		t.Errorf("model override args = %v", args)
	}

	if l.speaker("female-shaonv") != l.speaker("female-shaonv") {
		t.Error("speaker mapping is not stable")
	}

	if _, err := NewLocalTTS(LocalTTSConfig{}).args(SynthesisRequest{}, "x"); err == nil {
		t.Error("expected error without a model")
	}
}

func TestLocalSynthesize(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "piper")
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  if [ "$1" = "--output_file" ]; then out="$2"; fi
  shift
done
cat > /dev/null
printf 'RIFFfakewav' > "$out"
`
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := NewLocalTTS(LocalTTSConfig{PiperBinPath: bin, ModelPath: "m.onnx"}).
		Synthesize(context.Background(), SynthesisRequest{Input: "hello there"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(res.Audio), "RIFF") || res.ContentType != "audio/wav" {
		t.Errorf("result = %+v", res)
	}
}
