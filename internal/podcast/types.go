// Package podcast turns a topic into a finished multi-speaker audio program:
// dialogue generation, per-turn speech synthesis, assembly and batch runs.
package podcast

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikhilbhutani/podcastgen/internal/ffmpeg"
)

type Scene string

const (
	SceneSolo         Scene = "solo"
	SceneDialogue     Scene = "dialogue"
	ScenePanel        Scene = "panel"
	SceneNews         Scene = "news"
	SceneStorytelling Scene = "storytelling"
	SceneInterview    Scene = "interview"
)

type sceneProfile struct {
	voices      []string
	recommended []string
	names       []string
	music       MusicStyle
	description string
}

var sceneProfiles = map[Scene]sceneProfile{
	SceneSolo: {
		voices:      []string{"female-chengshu"},
		recommended: []string{"female-chengshu", "presenter_female", "audiobook_female_1"},
		names:       []string{"Host"},
		music:       MusicFolk,
		description: "single host talking to the listener",
	},
	SceneDialogue: {
		voices:      []string{"male-qn-jingying", "female-yujie"},
		recommended: []string{"male-qn-jingying", "female-yujie"},
		names:       []string{"Alex", "Mia"},
		music:       MusicPop,
		description: "two co-hosts in conversation",
	},
	ScenePanel: {
		voices:      []string{"male-qn-jingying", "female-chengshu", "male-qn-daxuesheng"},
		recommended: []string{"male-qn-jingying", "female-chengshu", "male-qn-daxuesheng"},
		names:       []string{"Alex", "Mia", "Guest"},
		music:       MusicElectronic,
		description: "moderated round table with several voices",
	},
	SceneNews: {
		voices:      []string{"presenter_male"},
		recommended: []string{"presenter_male", "presenter_female"},
		names:       []string{"Anchor"},
		music:       MusicClassical,
		description: "news bulletin with analysis",
	},
	SceneStorytelling: {
		voices:      []string{"audiobook_female_1"},
		recommended: []string{"audiobook_female_1", "audiobook_male_1"},
		names:       []string{"Narrator"},
		music:       MusicFolk,
		description: "narrated story",
	},
	SceneInterview: {
		voices:      []string{"presenter_male", "female-yujie"},
		recommended: []string{"presenter_male", "female-yujie"},
		names:       []string{"Host", "Guest"},
		music:       MusicAmbient,
		description: "host interviewing a guest",
	},
}

// Scenes lists the scene archetypes in a stable order.
func Scenes() []Scene {
	return []Scene{SceneSolo, SceneDialogue, ScenePanel, SceneNews, SceneStorytelling, SceneInterview}
}

func ParseScene(s string) (Scene, error) {
	sc := Scene(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sceneProfiles[sc]; !ok {
		return "", fmt.Errorf("unknown scene %q", s)
	}
	return sc, nil
}

func (s Scene) Valid() bool {
	_, ok := sceneProfiles[s]
	return ok
}

func (s Scene) DefaultVoices() []string     { return clone(sceneProfiles[s].voices) }
func (s Scene) RecommendedVoices() []string { return clone(sceneProfiles[s].recommended) }
func (s Scene) SpeakerNames() []string      { return clone(sceneProfiles[s].names) }
func (s Scene) MusicStyle() MusicStyle      { return sceneProfiles[s].music }
func (s Scene) Description() string         { return sceneProfiles[s].description }

func clone(s []string) []string {
	return append([]string(nil), s...)
}

const (
	MinDuration = 1
	MaxDuration = 30
)

// Job is one podcast request. It is treated as immutable once synthesis starts.
type Job struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"`
	Topic        string   `json:"topic" yaml:"topic"`
	Scene        Scene    `json:"scene" yaml:"scene"`
	Duration     int      `json:"duration" yaml:"duration"`
	Voices       []string `json:"voices,omitempty" yaml:"voices,omitempty"`
	SpeakerNames []string `json:"speaker_names,omitempty" yaml:"speaker_names,omitempty"`
	OutputPath   string   `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Welcome      string   `json:"welcome,omitempty" yaml:"welcome,omitempty"`
	NoMusic      bool     `json:"no_music,omitempty" yaml:"no_music,omitempty"`
	// Script bypasses generation when set.
	Script      []Turn `json:"script,omitempty" yaml:"script,omitempty"`
	CallbackURL string `json:"callback_url,omitempty" yaml:"callback_url,omitempty"`
}

var ErrInvalidJob = errors.New("invalid job")

// Validate reports every problem with the job at once.
func (j Job) Validate() error {
	var problems []string
	if strings.TrimSpace(j.Topic) == "" && len(j.Script) == 0 {
		problems = append(problems, "topic is required")
	}
	if !j.Scene.Valid() {
		problems = append(problems, fmt.Sprintf("scene %q is not one of %s", j.Scene, sceneList()))
	}
	if j.Duration < MinDuration || j.Duration > MaxDuration {
		problems = append(problems, fmt.Sprintf("duration %d outside %d-%d minutes", j.Duration, MinDuration, MaxDuration))
	}
	for i, v := range j.Voices {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, fmt.Sprintf("voice %d is empty", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidJob, strings.Join(problems, "; "))
	}
	return nil
}

func sceneList() string {
	names := make([]string, 0, len(sceneProfiles))
	for _, s := range Scenes() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// voices resolves the job's voice list, falling back to scene defaults.
func (j Job) voices() []string {
	if len(j.Voices) > 0 {
		return j.Voices
	}
	return j.Scene.DefaultVoices()
}

// names resolves speaker display names. When more voices than scene
// names are supplied, extra speakers get numbered labels.
func (j Job) names() []string {
	if len(j.SpeakerNames) > 0 {
		return j.SpeakerNames
	}
	names := j.Scene.SpeakerNames()
	voices := j.voices()
	if len(voices) <= len(names) {
		return names
	}
	out := make([]string, len(voices))
	for i := range voices {
		if i < len(names) {
			out[i] = names[i]
		} else {
			out[i] = fmt.Sprintf("Speaker %d", i+1)
		}
	}
	return out
}

// DialogueSegment is one spoken turn. Index defines playback order.
type DialogueSegment struct {
	Index   int     `json:"index"`
	Speaker string  `json:"speaker"`
	VoiceID string  `json:"voice_id"`
	Emotion Emotion `json:"emotion"`
	Text    string  `json:"text"`
}

// AudioSegment is the synthesized audio for the DialogueSegment with the same Index.
type AudioSegment struct {
	Index       int
	Speaker     string
	VoiceID     string
	Audio       []byte
	ContentType string
	DurationMs  int
}

func (a AudioSegment) Size() int { return len(a.Audio) }

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// SegmentRef records which dialogue turns made it into the artifact.
type SegmentRef struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker"`
	VoiceID string `json:"voice_id"`
	Bytes   int    `json:"bytes"`
}

// Artifact is the sole durable output of a job.
type Artifact struct {
	JobID           string        `json:"job_id,omitempty"`
	Path            string        `json:"path,omitempty"`
	URL             string        `json:"url,omitempty"`
	DurationSeconds float64       `json:"duration_seconds"`
	SizeBytes       int64         `json:"size_bytes"`
	Segments        []SegmentRef  `json:"segments"`
	Requested       int           `json:"requested_segments"`
	ScriptSource    ScriptSource  `json:"script_source,omitempty"`
	Status          Status        `json:"status"`
	Reason          string        `json:"reason,omitempty"`
	Degradations    []string      `json:"degradations,omitempty"`
	Stages          []StageReport `json:"stages,omitempty"`
	Elapsed         time.Duration `json:"elapsed"`
	// Volume is measured on the final file; nil when the tool is missing.
	Volume *ffmpeg.VolumeStats `json:"volume,omitempty"`
}
