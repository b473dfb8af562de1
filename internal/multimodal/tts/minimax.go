package tts

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/podcastgen/internal/minimax"
)

// MiniMaxTTS is the default speech backend and the only one that honours
// emotion tags.
type MiniMaxTTS struct {
	client *minimax.Client
	model  string
	audio  minimax.AudioSetting
}

func NewMiniMaxTTS(client *minimax.Client, model string) *MiniMaxTTS {
	if model == "" {
		model = "speech-2.5-hd-preview"
	}
	return &MiniMaxTTS{client: client, model: model, audio: minimax.DefaultAudioSetting}
}

func (m *MiniMaxTTS) Name() string { return "minimax" }

func (m *MiniMaxTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	speed, vol := req.Speed, req.Volume
	if speed == 0 {
		speed = 1.0
	}
	if vol == 0 {
		vol = 1.0
	}

	resp, err := m.client.Speech.Synthesize(ctx, &minimax.SpeechRequest{
		Model: m.model,
		Text:  req.Input,
		VoiceSetting: minimax.VoiceSetting{
			VoiceID: req.Voice,
			Speed:   speed,
			Vol:     vol,
			Pitch:   req.Pitch,
			Emotion: req.Emotion,
		},
		AudioSetting: m.audio,
	})
	if err != nil {
		return nil, err
	}

	wire := resp.Data.Audio
	if wire == "" {
		wire = resp.Data.AudioURL
	}
	payload, err := DetectPayload(wire)
	if err != nil {
		return nil, fmt.Errorf("minimax speech: %w", err)
	}
	audio, err := payload.Resolve(ctx, m.client.HTTPClient())
	if err != nil {
		return nil, fmt.Errorf("minimax speech: %w", err)
	}

	return &SynthesisResult{
		Audio:       audio,
		ContentType: "audio/mpeg",
		DurationMs:  resp.ExtraInfo.AudioLength,
		Encoding:    payload.Encoding(),
	}, nil
}
