package podcast

import "fmt"

// fallbackTurns is the canned script used when generation yields nothing
// usable. Only solo, dialogue and news have dedicated scripts.
func fallbackTurns(scene Scene, topic string, names []string) []Turn {
	name := func(i int) string {
		if len(names) == 0 {
			return ""
		}
		return names[i%len(names)]
	}

	switch scene {
	case SceneDialogue:
		return []Turn{
			{Speaker: name(0), Emotion: "happy", Text: fmt.Sprintf("Welcome back, everyone. Today we're talking about %s.", topic)},
			{Speaker: name(1), Emotion: "happy", Text: "It's a topic a lot of listeners have asked about, so I'm glad we're finally doing it."},
			{Speaker: name(0), Emotion: "curious", Text: fmt.Sprintf("Let's start simple. Why should people care about %s right now?", topic)},
			{Speaker: name(1), Emotion: "thoughtful", Text: "Because it already shapes everyday decisions, often in ways we don't notice until we stop and look."},
			{Speaker: name(0), Emotion: "neutral", Text: "That matches what I've seen. The details change quickly, but the underlying questions stay the same."},
			{Speaker: name(1), Emotion: "calm", Text: "Exactly. Ask who benefits, what it costs, and what you would do differently once you know."},
			{Speaker: name(0), Emotion: "happy", Text: "Great place to leave it. Thanks for listening, and see you next time."},
		}
	case SceneNews:
		return []Turn{
			{Speaker: name(0), Emotion: "neutral", Text: fmt.Sprintf("Good evening. Our main story tonight concerns %s.", topic)},
			{Speaker: name(0), Emotion: "neutral", Text: "The development has drawn wide attention, and experts are still assessing its full implications."},
			{Speaker: name(0), Emotion: "thoughtful", Text: "Background matters here. Similar changes in the past took time to show their real effects."},
			{Speaker: name(0), Emotion: "neutral", Text: "We will continue to follow the story and bring you updates as they come in. Thank you for watching."},
		}
	default:
		return []Turn{
			{Speaker: name(0), Emotion: "happy", Text: fmt.Sprintf("Hello and welcome. In this episode we're exploring %s.", topic)},
			{Speaker: name(0), Emotion: "thoughtful", Text: "It's one of those subjects that sounds abstract until you notice how often it touches daily life."},
			{Speaker: name(0), Emotion: "calm", Text: "So rather than chase every headline, let's focus on what it means for you and the people around you."},
			{Speaker: name(0), Emotion: "calm", Text: "Take a moment after this episode to think about where it shows up in your own routine."},
			{Speaker: name(0), Emotion: "happy", Text: "Thanks for spending this time with me. Until next time, take care."},
		}
	}
}
