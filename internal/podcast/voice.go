package podcast

import (
	"strings"
)

type Emotion string

const (
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionFearful   Emotion = "fearful"
	EmotionDisgusted Emotion = "disgusted"
	EmotionSurprised Emotion = "surprised"
	EmotionCalm      Emotion = "calm"
)

// Emotions is the closed set the speech service accepts.
var Emotions = []Emotion{
	EmotionHappy, EmotionSad, EmotionAngry, EmotionFearful,
	EmotionDisgusted, EmotionSurprised, EmotionCalm,
}

var emotionAliases = map[string]Emotion{
	"happy": EmotionHappy, "excited": EmotionHappy, "joyful": EmotionHappy,
	"delighted": EmotionHappy, "cheerful": EmotionHappy, "enthusiastic": EmotionHappy,
	"playful": EmotionHappy, "warm": EmotionHappy, "开心": EmotionHappy, "高兴": EmotionHappy,

	"sad": EmotionSad, "upset": EmotionSad, "depressed": EmotionSad,
	"disappointed": EmotionSad, "melancholy": EmotionSad, "伤心": EmotionSad, "难过": EmotionSad,

	"angry": EmotionAngry, "mad": EmotionAngry, "furious": EmotionAngry,
	"irritated": EmotionAngry, "annoyed": EmotionAngry, "生气": EmotionAngry, "愤怒": EmotionAngry,

	"fearful": EmotionFearful, "scared": EmotionFearful, "terrified": EmotionFearful,
	"anxious": EmotionFearful, "nervous": EmotionFearful, "worried": EmotionFearful, "害怕": EmotionFearful,

	"disgusted": EmotionDisgusted, "disgust": EmotionDisgusted, "revolted": EmotionDisgusted, "厌恶": EmotionDisgusted,

	"surprised": EmotionSurprised, "shocked": EmotionSurprised, "amazed": EmotionSurprised,
	"startled": EmotionSurprised, "curious": EmotionSurprised, "astonished": EmotionSurprised, "惊讶": EmotionSurprised,

	"calm": EmotionCalm, "neutral": EmotionCalm, "thoughtful": EmotionCalm,
	"serious": EmotionCalm, "relaxed": EmotionCalm, "平静": EmotionCalm,
}

// NormalizeEmotion maps any label onto the closed set. Unknown or empty
// labels become calm; it never fails.
func NormalizeEmotion(label string) Emotion {
	if e, ok := emotionAliases[strings.ToLower(strings.TrimSpace(label))]; ok {
		return e
	}
	return EmotionCalm
}

// Normalize resolves the voice and emotion for one turn. An explicit voice
// wins; otherwise position picks round-robin from voices, or from the
// scene's defaults when voices is empty.
func Normalize(requestedVoice, requestedEmotion string, scene Scene, voices []string, position int) (string, Emotion) {
	emotion := NormalizeEmotion(requestedEmotion)
	if v := strings.TrimSpace(requestedVoice); v != "" {
		return v, emotion
	}
	if len(voices) == 0 {
		voices = scene.DefaultVoices()
	}
	if len(voices) == 0 {
		voices = SceneSolo.DefaultVoices()
	}
	if position < 0 {
		position = -position
	}
	return voices[position%len(voices)], emotion
}

// Roster fixes each speaker role to a slot for the lifetime of a job, so a
// role always resolves to the same voice. Known speaker names take the
// first slots in order; other roles are appended as they first appear.
type Roster struct {
	scene  Scene
	voices []string
	names  []string
	slots  map[string]int
	// declared is how many names the job supplied; unlabelled turns
	// alternate among these only, not roles discovered while parsing.
	declared int
	// allowed voice IDs a generated script may request explicitly
	allowed map[string]bool
}

func NewRoster(scene Scene, voices, names []string) *Roster {
	if len(voices) == 0 {
		voices = scene.DefaultVoices()
	}
	r := &Roster{
		scene:   scene,
		voices:  voices,
		slots:   make(map[string]int),
		allowed: make(map[string]bool),
	}
	for _, v := range voices {
		r.allowed[v] = true
	}
	for _, n := range names {
		r.Slot(n)
	}
	r.declared = len(r.names)
	return r
}

func rosterKey(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// Slot returns the stable position for role, registering it if new.
func (r *Roster) Slot(role string) int {
	key := rosterKey(role)
	if i, ok := r.slots[key]; ok {
		return i
	}
	i := len(r.slots)
	r.slots[key] = i
	r.names = append(r.names, strings.TrimSpace(role))
	return i
}

// Name returns the display name registered for a slot.
func (r *Roster) Name(slot int) string {
	if len(r.names) == 0 {
		return ""
	}
	return r.names[slot%len(r.names)]
}

func (r *Roster) Names() []string { return clone(r.names) }

func (r *Roster) Voices() []string { return clone(r.voices) }

// Assign resolves voice and emotion for a named role.
func (r *Roster) Assign(role, requestedVoice, requestedEmotion string) (string, Emotion) {
	return Normalize(requestedVoice, requestedEmotion, r.scene, r.voices, r.Slot(role))
}

// AssignGenerated is Assign for model output: a requested voice outside the
// job's voice list is ignored in favour of the role's voice.
func (r *Roster) AssignGenerated(role, requestedVoice, requestedEmotion string) (string, Emotion) {
	if !r.allowed[strings.TrimSpace(requestedVoice)] {
		requestedVoice = ""
	}
	return r.Assign(role, requestedVoice, requestedEmotion)
}

// AssignPosition resolves a turn with no speaker label. Position picks one
// of the declared speakers; the voice then comes from that speaker's slot,
// so a speaker keeps one voice however names and voices line up.
func (r *Roster) AssignPosition(position int, requestedEmotion string) (string, string, Emotion) {
	if r.declared == 0 {
		voice, emotion := Normalize("", requestedEmotion, r.scene, r.voices, position)
		return "", voice, emotion
	}
	if position < 0 {
		position = -position
	}
	name := r.names[position%r.declared]
	voice, emotion := r.Assign(name, "", requestedEmotion)
	return name, voice, emotion
}
