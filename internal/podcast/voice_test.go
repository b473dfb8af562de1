package podcast

import (
	"strings"
	"testing"
)

func TestNormalizeEmotion(t *testing.T) {
	tests := []struct {
		in   string
		want Emotion
	}{
		{"happy", EmotionHappy},
		{"Excited", EmotionHappy},
		{" furious ", EmotionAngry},
		{"curious", EmotionSurprised},
		{"terrified", EmotionFearful},
		{"disappointed", EmotionSad},
		{"thoughtful", EmotionCalm},
		{"开心", EmotionHappy},
		{"", EmotionCalm},
		{"bewildered-ish", EmotionCalm},
	}
	for _, tt := range tests {
		if got := NormalizeEmotion(tt.in); got != tt.want {
			t.Errorf("NormalizeEmotion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEmotionClosedSet(t *testing.T) {
	allowed := map[Emotion]bool{}
	for _, e := range Emotions {
		allowed[e] = true
	}
	for label := range emotionAliases {
		if e := NormalizeEmotion(label); !allowed[e] {
			t.Errorf("%q maps outside the closed set: %q", label, e)
		}
	}
}

func TestNormalizeVoice(t *testing.T) {
	voices := []string{"a", "b"}
	for pos, want := range []string{"a", "b", "a", "b"} {
		if got, _ := Normalize("", "", SceneDialogue, voices, pos); got != want {
			t.Errorf("position %d: voice = %q, want %q", pos, got, want)
		}
	}
	if got, _ := Normalize("explicit", "", SceneDialogue, voices, 1); got != "explicit" {
		t.Errorf("explicit voice = %q", got)
	}
	if got, _ := Normalize("", "", SceneNews, nil, 3); got != "presenter_male" {
		t.Errorf("scene default voice = %q", got)
	}
}

func TestRosterKeepsRoleVoiceStable(t *testing.T) {
	r := NewRoster(SceneDialogue, []string{"v1", "v2"}, []string{"Alex", "Mia"})

	for i := 0; i < 3; i++ {
		if v, _ := r.Assign("Mia", "", ""); v != "v2" {
			t.Fatalf("Mia voice = %q on pass %d", v, i)
		}
		if v, _ := r.Assign(" alex ", "", ""); v != "v1" {
			t.Fatalf("Alex voice = %q on pass %d", v, i)
		}
	}
	if slot := r.Slot("Sam"); slot != 2 {
		t.Errorf("new role slot = %d, want 2", slot)
	}
	if v, _ := r.Assign("Sam", "", ""); v != "v1" {
		t.Errorf("third role voice = %q, want round-robin v1", v)
	}
}

func TestRosterAssignGeneratedRejectsUnknownVoice(t *testing.T) {
	r := NewRoster(SceneDialogue, []string{"v1", "v2"}, []string{"Alex", "Mia"})
	if v, _ := r.AssignGenerated("Mia", "made-up", "sad"); v != "v2" {
		t.Errorf("voice = %q, want role voice v2", v)
	}
	v, e := r.AssignGenerated("Mia", "v1", "sad")
	if v != "v1" || e != EmotionSad {
		t.Errorf("got (%q, %q), want (v1, sad)", v, e)
	}
}

// assertStableVoices checks that every speaker kept a single voice.
func assertStableVoices(t *testing.T, segs []DialogueSegment) map[string]string {
	t.Helper()
	seen := map[string]string{}
	for _, s := range segs {
		if v, ok := seen[s.Speaker]; ok && v != s.VoiceID {
			t.Errorf("speaker %q got %q at segment %d, earlier %q", s.Speaker, s.VoiceID, s.Index, v)
			continue
		}
		seen[s.Speaker] = s.VoiceID
	}
	return seen
}

func TestRoundRobinMoreNamesThanVoices(t *testing.T) {
	g := NewGenerator(nil, GeneratorConfig{})
	job := Job{
		Topic:        "coffee",
		Scene:        SceneDialogue,
		Duration:     10,
		SpeakerNames: []string{"A", "B", "C"},
		Voices:       []string{"v1", "v2"},
	}
	prose := strings.Repeat("Coffee beans travel a long way before they reach the cup. ", 30)

	script := g.Parse(prose, job)
	if script.Source != SourceRoundRobin || len(script.Segments) < 6 {
		t.Fatalf("source = %s, segments = %d", script.Source, len(script.Segments))
	}
	for i, s := range script.Segments {
		if want := job.SpeakerNames[i%3]; s.Speaker != want {
			t.Errorf("segment %d speaker = %q, want %q", i, s.Speaker, want)
		}
	}
	got := assertStableVoices(t, script.Segments)
	want := map[string]string{"A": "v1", "B": "v2", "C": "v1"}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s voice = %q, want %q", name, got[name], v)
		}
	}
}

func TestStructuredUnlabelledTurnsAfterNewRole(t *testing.T) {
	g := NewGenerator(nil, GeneratorConfig{})
	payload := `[
		{"speaker": "Bob", "text": "I brought a guest opinion on coffee."},
		{"speaker": "", "text": "Welcome, tell us where the beans come from."},
		{"speaker": "", "text": "Mostly from the highlands of Ethiopia."},
		{"speaker": "", "text": "And how did it spread so far?"},
		{"speaker": "Alex", "text": "Trade routes carried it everywhere."}
	]`

	script := g.Parse(payload, dialogueJob())
	if script.Source != SourceStructured || len(script.Segments) != 5 {
		t.Fatalf("script = %+v", script)
	}
	got := assertStableVoices(t, script.Segments)
	if got["Alex"] != "male-qn-jingying" || got["Mia"] != "female-yujie" {
		t.Errorf("voices = %v", got)
	}
	for _, s := range script.Segments[1:4] {
		if s.Speaker != "Alex" && s.Speaker != "Mia" {
			t.Errorf("unlabelled turn assigned to %q, want a declared speaker", s.Speaker)
		}
	}
}
