package podcast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikhilbhutani/podcastgen/internal/minimax"
)

type fakeMusic struct {
	req *minimax.MusicRequest
	err error
}

func (f *fakeMusic) Generate(_ context.Context, req *minimax.MusicRequest) (*minimax.MusicResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &minimax.MusicResponse{Audio: []byte("ID3-music")}, nil
}

func TestMusicPromptAndLyrics(t *testing.T) {
	if p := MusicPrompt(MusicPop, "Tech careers"); !strings.HasSuffix(p, "modern, innovative") {
		t.Errorf("prompt = %q", p)
	}
	lyrics := MusicLyrics(MusicFolk, "a very long topic that keeps going on and on")
	if !strings.HasPrefix(lyrics, "[Intro]") || !strings.Contains(lyrics, "[Verse]") || !strings.Contains(lyrics, "[Outro]") {
		t.Errorf("lyrics = %q", lyrics)
	}
	if strings.Contains(lyrics, "on and on") {
		t.Error("topic not shortened in lyrics")
	}
}

func TestGeneratedMusicUsesSceneStyle(t *testing.T) {
	client := &fakeMusic{}
	dir := t.TempDir()
	path, err := NewGeneratedMusic(client, "").Background(context.Background(), Job{Topic: "news today", Scene: SceneNews}, dir)
	if err != nil {
		t.Fatalf("Background: %v", err)
	}
	if path != filepath.Join(dir, "bgm_classical.mp3") {
		t.Errorf("path = %q", path)
	}
	if client.req.Model != "music-1.5" || !strings.Contains(client.req.Prompt, "classical") {
		t.Errorf("request = %+v", client.req)
	}
}

func TestGeneratedMusicError(t *testing.T) {
	_, err := NewGeneratedMusic(&fakeMusic{err: errors.New("quota")}, "m").Background(context.Background(), Job{Scene: SceneSolo}, t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFileMusic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bed.mp3")
	if _, err := (FileMusic{Path: path}).Background(context.Background(), Job{}, ""); err == nil {
		t.Error("expected error for missing file")
	}
	os.WriteFile(path, []byte("ID3"), 0o644)
	got, err := FileMusic{Path: path}.Background(context.Background(), Job{}, "")
	if err != nil || got != path {
		t.Errorf("got (%q, %v)", got, err)
	}
}
