package podcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikhilbhutani/podcastgen/internal/minimax"
)

type MusicStyle string

const (
	MusicElectronic MusicStyle = "electronic"
	MusicFolk       MusicStyle = "folk"
	MusicClassical  MusicStyle = "classical"
	MusicPop        MusicStyle = "pop"
	MusicAmbient    MusicStyle = "ambient"
)

type musicTemplate struct {
	prompt string
	lyrics string
}

var musicTemplates = map[MusicStyle]musicTemplate{
	MusicElectronic: {
		prompt: "modern electronic, tech atmosphere, light upbeat rhythm, unobtrusive work background",
		lyrics: `[Intro]
Soft electronic beats begin
[Verse]
Light of progress shows the way
New ideas change the world
[Chorus]
Building what comes next
[Outro]
The signal fades to calm`,
	},
	MusicFolk: {
		prompt: "gentle healing folk, warm acoustic guitar, reflective everyday mood",
		lyrics: `[Intro]
A guitar starts softly
[Verse]
Life is like a simple song
Highs and lows along the way
[Chorus]
Warmth is close at hand
[Outro]
Quiet moments drifting on`,
	},
	MusicClassical: {
		prompt: "light classical, elegant piano and strings, calm studious atmosphere",
		lyrics: `[Intro]
Piano rises gracefully
[Verse]
Knowledge flows like a river
Every lesson helps us grow
[Chorus]
Thinking makes the world richer
[Outro]
Grace and wisdom walk along`,
	},
	MusicPop: {
		prompt: "bright pop, youthful energy, positive mood, light drums",
		lyrics: `[Intro]
A lively beat comes in
[Verse]
These are the brightest days
Dreams are shining in our hearts
[Chorus]
So much still to find
[Outro]
Sunshine all around`,
	},
	MusicAmbient: {
		prompt: "ambient pads, peaceful and focused, soft texture for background listening",
		lyrics: `[Intro]
Calm sound slowly flows
[Verse]
Quiet all around
Focus clears the mind
[Chorus]
Stillness makes room to think
[Outro]
Peace stays with us`,
	},
}

var topicMoods = []struct {
	keywords []string
	mood     string
}{
	{[]string{"tech", "software", "科技"}, "modern, innovative"},
	{[]string{"business", "market", "商业"}, "professional, confident"},
	{[]string{"life", "daily", "生活"}, "homely, warm"},
	{[]string{"education", "learn", "教育"}, "growth, curious"},
	{[]string{"entertainment", "fun", "娱乐"}, "playful, relaxed"},
	{[]string{"emotion", "love", "情感"}, "tender, healing"},
	{[]string{"news", "新闻"}, "formal, authoritative"},
}

// MusicPrompt returns the generation prompt for style, tuned to the topic.
func MusicPrompt(style MusicStyle, topic string) string {
	tpl, ok := musicTemplates[style]
	if !ok {
		tpl = musicTemplates[MusicAmbient]
	}
	lower := strings.ToLower(topic)
	for _, m := range topicMoods {
		for _, kw := range m.keywords {
			if strings.Contains(lower, kw) {
				return tpl.prompt + ", " + m.mood
			}
		}
	}
	return tpl.prompt
}

// MusicLyrics prefixes the style's structured lyrics with a topic verse.
func MusicLyrics(style MusicStyle, topic string) string {
	tpl, ok := musicTemplates[style]
	if !ok {
		tpl = musicTemplates[MusicAmbient]
	}
	short := []rune(strings.TrimSpace(topic))
	if len(short) > 20 {
		short = short[:20]
	}
	return fmt.Sprintf("[Intro]\nMusic about %s\n[Verse]\nLet's talk about %s\n%s", string(short), string(short), tpl.lyrics)
}

// MusicSource supplies a background track for a job, written under dir.
type MusicSource interface {
	Background(ctx context.Context, job Job, dir string) (string, error)
}

type MusicClient interface {
	Generate(ctx context.Context, req *minimax.MusicRequest) (*minimax.MusicResponse, error)
}

// GeneratedMusic composes a bed in the scene's style.
type GeneratedMusic struct {
	client MusicClient
	model  string
}

func NewGeneratedMusic(client MusicClient, model string) *GeneratedMusic {
	if model == "" {
		model = "music-1.5"
	}
	return &GeneratedMusic{client: client, model: model}
}

func (g *GeneratedMusic) Background(ctx context.Context, job Job, dir string) (string, error) {
	style := job.Scene.MusicStyle()
	resp, err := g.client.Generate(ctx, &minimax.MusicRequest{
		Model:        g.model,
		Prompt:       MusicPrompt(style, job.Topic),
		Lyrics:       MusicLyrics(style, job.Topic),
		AudioSetting: minimax.DefaultMusicAudioSetting,
	})
	if err != nil {
		return "", fmt.Errorf("generate %s music: %w", style, err)
	}
	if len(resp.Audio) == 0 {
		return "", errors.New("generate music: empty audio")
	}
	path := filepath.Join(dir, "bgm_"+string(style)+".mp3")
	if err := os.WriteFile(path, resp.Audio, 0o644); err != nil {
		return "", fmt.Errorf("write music: %w", err)
	}
	return path, nil
}

// FileMusic always returns the same bed file.
type FileMusic struct {
	Path string
}

func (f FileMusic) Background(_ context.Context, _ Job, _ string) (string, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return "", fmt.Errorf("music file: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return "", fmt.Errorf("music file %s is not a usable audio file", f.Path)
	}
	return f.Path, nil
}
