package tts

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"slices"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAITTSConfig struct {
	APIKey  string
	BaseURL string
	Model   string // default: tts-1
}

// OpenAITTS speaks through the OpenAI audio API. Scripts carry catalog
// voice IDs, so each one is mapped onto a built-in OpenAI voice.
type OpenAITTS struct {
	client *openai.Client
	model  openai.SpeechModel
}

func NewOpenAITTS(cfg OpenAITTSConfig) *OpenAITTS {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := openai.TTSModel1
	if cfg.Model != "" {
		model = openai.SpeechModel(cfg.Model)
	}
	return &OpenAITTS{client: openai.NewClientWithConfig(oc), model: model}
}

func (o *OpenAITTS) Name() string { return "openai-tts" }

var (
	openAIFemale = []openai.SpeechVoice{openai.VoiceNova, openai.VoiceShimmer, openai.VoiceAlloy}
	openAIMale   = []openai.SpeechVoice{openai.VoiceOnyx, openai.VoiceEcho, openai.VoiceFable}
)

// openAIVoice keeps OpenAI voice names as they are. Other IDs map by the
// gender hint in the ID, and a hash keeps distinct IDs on distinct voices
// where the pool allows.
func openAIVoice(id string) openai.SpeechVoice {
	v := openai.SpeechVoice(strings.ToLower(id))
	if slices.Contains(openAIFemale, v) || slices.Contains(openAIMale, v) {
		return v
	}
	if id == "" {
		return openai.VoiceAlloy
	}
	pool := openAIMale
	if strings.Contains(strings.ToLower(id), "female") {
		pool = openAIFemale
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return pool[h.Sum32()%uint32(len(pool))]
}

// Synthesize ignores req.Emotion; the API has no emotion control.
func (o *OpenAITTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	sreq := openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          req.Input,
		Voice:          openAIVoice(req.Voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}
	if req.Speed > 0 {
		sreq.Speed = min(max(req.Speed, 0.25), 4.0)
	}

	resp, err := o.client.CreateSpeech(ctx, sreq)
	if err != nil {
		return nil, openAIError(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return &SynthesisResult{Audio: audio, ContentType: "audio/mpeg", Encoding: "binary"}, nil
}

// openAIError turns HTTP failures into StatusError so IsTransient can
// classify them.
func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return fmt.Errorf("openai tts: %w", err)
}
