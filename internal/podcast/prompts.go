package podcast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nikhilbhutani/podcastgen/internal/prompt"
	"github.com/nikhilbhutani/podcastgen/pkg/speechrate"
)

type sceneTemplate struct {
	prompt    *prompt.Template
	style     string
	structure string
}

var sceneTemplates = map[Scene]sceneTemplate{
	SceneSolo: {
		prompt:    prompt.New("solo", "You are an experienced solo podcast host. Create a {{duration}}-minute episode about {{topic}}."),
		style:     "warm and natural, like talking with a friend, with real depth",
		structure: "opening (30s) -> introduce the topic (1 min) -> in-depth analysis -> reflections (1 min) -> warm sign-off (30s)",
	},
	SceneDialogue: {
		prompt:    prompt.New("dialogue", "You are writing a two-host conversational podcast presented by {{speaker_names}}. Write a {{duration}}-minute discussion about {{topic}}."),
		style:     "contrasting viewpoints, natural back-and-forth, light and engaging",
		structure: "joint opening -> each host shares a view -> deeper discussion -> joint wrap-up",
	},
	ScenePanel: {
		prompt:    prompt.New("panel", "You are writing a {{speaker_count}}-person round table hosted by {{speaker_names}}. Write a {{duration}}-minute expert discussion about {{topic}}."),
		style:     "expert and thorough, diverse perspectives, clear logic",
		structure: "moderator opening -> first view -> second view -> third view -> open discussion -> summary",
	},
	SceneNews: {
		prompt:    prompt.New("news", "You are a professional news anchor. Write a {{duration}}-minute news bulletin and analysis about {{topic}}."),
		style:     "formal and authoritative, measured pace, accurate",
		structure: "lead -> details -> background -> impact -> summary",
	},
	SceneStorytelling: {
		prompt:    prompt.New("storytelling", "You are a gifted storyteller. Write a {{duration}}-minute emotional story about {{topic}}."),
		style:     "emotionally rich, unhurried, vivid imagery",
		structure: "opening -> rising action -> climax -> warm resolution -> reflection",
	},
	SceneInterview: {
		prompt:    prompt.New("interview", "You are writing an interview show in which {{speaker_names}} talk about {{topic}} for {{duration}} minutes."),
		style:     "sharp questions, in-depth answers, natural exchange",
		structure: "introductions -> background -> probing questions -> debate -> summary and thanks",
	},
}

const systemPrompt = "You write scripts for spoken audio. Output only the requested JSON, with no commentary."

const requirementsTemplate = `{{scene_prompt}}

Requirements:
1. Style: {{style}}
2. Structure: {{structure}}
3. Length: about {{chars}} characters of spoken text in total ({{duration}} minutes)
4. Language: conversational and natural, no written-style prose
5. Content: stay on the topic "{{topic}}"
6. Pacing: short turns suited to listening, one idea per turn
7. Speakers: {{speaker_list}}
{{#brief}}
Background material:
{{brief}}
{{/brief}}
Output format:
A JSON array of turns, each {"speaker": name, "text": spoken words, "voice_id": voice, "emotion": one of happy, sad, angry, fearful, disgusted, surprised, calm}.
Do not put the speaker's name inside "text".`

var requirements = prompt.New("requirements", requirementsTemplate)

// BuildPrompt returns the system and user messages for a job.
func BuildPrompt(job Job, brief string) (system, user string, err error) {
	tpl, ok := sceneTemplates[job.Scene]
	if !ok {
		return "", "", fmt.Errorf("no prompt template for scene %q", job.Scene)
	}

	names := job.names()
	voices := job.voices()
	vars := map[string]string{
		"topic":         job.Topic,
		"duration":      strconv.Itoa(job.Duration),
		"speaker_count": strconv.Itoa(len(names)),
		"speaker_names": joinNames(names),
	}
	scenePrompt, err := tpl.prompt.Render(vars)
	if err != nil {
		return "", "", err
	}

	speakers := make([]string, len(names))
	for i, n := range names {
		speakers[i] = fmt.Sprintf("%s (voice_id %s)", n, voices[i%len(voices)])
	}
	user, err = requirements.Render(map[string]string{
		"scene_prompt": scenePrompt,
		"style":        tpl.style,
		"structure":    tpl.structure,
		"chars":        strconv.Itoa(speechrate.ExpectedChars(job.Duration)),
		"duration":     strconv.Itoa(job.Duration),
		"topic":        job.Topic,
		"speaker_list": strings.Join(speakers, "; "),
		"brief":        strings.TrimSpace(brief),
	})
	if err != nil {
		return "", "", err
	}
	return systemPrompt, user, nil
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
