package podcast

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kaptinlin/jsonrepair"

	"github.com/nikhilbhutani/podcastgen/pkg/chunker"
)

// Turn is one dialogue entry as it appears in structured scripts, whether
// generated or pre-authored.
type Turn struct {
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`
	VoiceID string `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
	Emotion string `json:"emotion,omitempty" yaml:"emotion,omitempty"`
}

// UnmarshalJSON accepts the field spellings models tend to use.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Speaker string `json:"speaker"`
		Role    string `json:"role"`
		Name    string `json:"name"`
		Text    string `json:"text"`
		Content string `json:"content"`
		Line    string `json:"line"`
		VoiceID string `json:"voice_id"`
		Voice   string `json:"voice"`
		Emotion string `json:"emotion"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Turn{
		Speaker: firstNonEmpty(raw.Speaker, raw.Role, raw.Name),
		Text:    firstNonEmpty(raw.Text, raw.Content, raw.Line),
		VoiceID: firstNonEmpty(raw.VoiceID, raw.Voice),
		Emotion: raw.Emotion,
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ParsedResponse is what the text service returned, resolved at the
// boundary: either Structured turns or FreeText prose.
type ParsedResponse interface {
	parsed()
}

type Structured struct {
	Turns []Turn
}

type FreeText struct {
	Text string
}

func (Structured) parsed() {}
func (FreeText) parsed()   {}

// MinSegmentRunes is the shortest text kept as a segment.
const MinSegmentRunes = 5

// MaxSplitRunes bounds segments produced from unlabelled prose.
const MaxSplitRunes = 250

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\n?```$")

// ParseResponse decodes raw model output. It never fails: anything that is
// not a usable structured payload comes back as FreeText.
func ParseResponse(raw string) ParsedResponse {
	s := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	if turns, err := DecodeTurns([]byte(s)); err == nil && len(turns) > 0 {
		return Structured{Turns: turns}
	}
	// JSON embedded in surrounding prose
	if i, j := strings.Index(s, "["), strings.LastIndex(s, "]"); i >= 0 && j > i {
		if turns, err := DecodeTurns([]byte(s[i : j+1])); err == nil && len(turns) > 0 {
			return Structured{Turns: turns}
		}
	}
	return FreeText{Text: s}
}

var errNotTurns = errors.New("payload is not a list of turns")

// DecodeTurns reads a list of turns from JSON, accepting a bare array, an
// object wrapping the array, or a JSON string holding either. Malformed JSON
// is repaired once before giving up.
func DecodeTurns(data []byte) ([]Turn, error) {
	return decodeTurns(data, 0)
}

func decodeTurns(data []byte, depth int) ([]Turn, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > 2 {
		return nil, errNotTurns
	}
	switch data[0] {
	case '[', '{', '"':
	default:
		return nil, errNotTurns
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return nil, err
		}
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return nil, err
		}
		data = []byte(fixed)
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
	}

	switch x := v.(type) {
	case string:
		return decodeTurns([]byte(x), depth+1)
	case []any:
		var turns []Turn
		if err := json.Unmarshal(data, &turns); err != nil {
			return nil, err
		}
		return turns, nil
	case map[string]any:
		for _, key := range []string{"dialogues", "dialogue", "turns", "segments", "script"} {
			if inner, ok := x[key]; ok {
				b, err := json.Marshal(inner)
				if err != nil {
					return nil, err
				}
				return decodeTurns(b, depth+1)
			}
		}
	}
	return nil, errNotTurns
}

// segmentsFromTurns builds validated dialogue segments. Turns shorter than
// MinSegmentRunes after cleanup are dropped; turns longer than maxRunes are
// split on sentence boundaries into consecutive segments for the same
// speaker. generated controls whether voice references are checked against
// the roster.
func segmentsFromTurns(turns []Turn, roster *Roster, generated bool, maxRunes int) []DialogueSegment {
	var out []DialogueSegment
	for _, t := range turns {
		text := cleanText(t.Speaker, t.Text)
		if utf8.RuneCountInString(text) < MinSegmentRunes {
			continue
		}

		speaker := strings.TrimSpace(t.Speaker)
		var voice string
		var emotion Emotion
		switch {
		case speaker == "":
			speaker, voice, emotion = roster.AssignPosition(len(out), t.Emotion)
			if (generated && roster.allowed[t.VoiceID]) || (!generated && t.VoiceID != "") {
				voice = t.VoiceID
			}
		case generated:
			voice, emotion = roster.AssignGenerated(speaker, t.VoiceID, t.Emotion)
		default:
			voice, emotion = roster.Assign(speaker, t.VoiceID, t.Emotion)
		}

		for _, piece := range splitLong(text, maxRunes) {
			out = append(out, DialogueSegment{
				Index:   len(out),
				Speaker: speaker,
				VoiceID: voice,
				Emotion: emotion,
				Text:    piece,
			})
		}
	}
	return out
}

func splitLong(text string, maxRunes int) []string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}
	chunks := chunker.New().Chunk(text, chunker.ChunkOptions{MaxRunes: maxRunes, Strategy: "sentence"})
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out
}

// speakerLine matches "Name: text", "Name：text" and "Name says: text".
// Names are capped in length so ordinary sentences with a colon are not
// mistaken for labels.
var speakerLine = regexp.MustCompile(`^\s*(?:[*_]{1,2})?([\p{L}\p{N}][\p{L}\p{N} ._'-]{0,23}?)(?:[*_]{1,2})?\s*(?:说|says)?\s*[:：]\s*(.*)$`)

// commonNonSpeakers are prefixes that look like labels but are not.
var commonNonSpeakers = map[string]bool{
	"note": true, "http": true, "https": true, "title": true, "topic": true, "summary": true,
	"time": true, "duration": true, "注意": true, "标题": true, "主题": true,
}

func parseSpeakerLine(line string) (speaker, text string, ok bool) {
	m := speakerLine.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	name := strings.TrimSpace(m[1])
	if commonNonSpeakers[strings.ToLower(name)] || len(strings.Fields(name)) > 3 {
		return "", "", false
	}
	return name, strings.TrimSpace(m[2]), true
}

// cleanText strips a leading speaker prefix the model repeated inside the text.
func cleanText(speaker, text string) string {
	text = strings.TrimSpace(text)
	if name, rest, ok := parseSpeakerLine(text); ok {
		if speaker == "" || strings.EqualFold(name, strings.TrimSpace(speaker)) {
			text = rest
		}
	}
	return strings.Trim(text, " \t\"“”")
}

// decomposeLabelled collects "Name: text" turns. Unlabelled lines continue
// the previous turn; lines before the first label form an unlabelled turn.
// Fewer than two labelled lines is treated as no labels at all, since a
// single "Word:" in prose is more likely a heading than a speaker.
func decomposeLabelled(text string) []Turn {
	var turns []Turn
	labelled := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if speaker, rest, ok := parseSpeakerLine(line); ok {
			turns = append(turns, Turn{Speaker: speaker, Text: rest})
			labelled++
			continue
		}
		if len(turns) == 0 {
			turns = append(turns, Turn{})
		}
		last := &turns[len(turns)-1]
		last.Text = strings.TrimSpace(last.Text + " " + line)
	}
	if labelled < 2 {
		return nil
	}
	return turns
}

// decomposeRoundRobin splits prose into short chunks on sentence
// boundaries, to be assigned to speakers by position.
func decomposeRoundRobin(text string) []Turn {
	chunks := chunker.New().Chunk(text, chunker.ChunkOptions{MaxRunes: MaxSplitRunes, Strategy: "sentence"})
	turns := make([]Turn, 0, len(chunks))
	for _, c := range chunks {
		turns = append(turns, Turn{Text: c.Content})
	}
	return turns
}
