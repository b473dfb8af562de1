package tts

import (
	"fmt"

	"github.com/nikhilbhutani/podcastgen/internal/config"
	"github.com/nikhilbhutani/podcastgen/internal/minimax"
)

// New selects the backend named by cfg.Backend. mm is required for the
// MiniMax backend and ignored otherwise.
func New(cfg config.TTSConfig, mm *minimax.Client, speechModel string) (TTSProvider, error) {
	switch cfg.Backend {
	case "", "minimax":
		if mm == nil {
			return nil, fmt.Errorf("tts backend minimax requires a MiniMax client")
		}
		return NewMiniMaxTTS(mm, speechModel), nil
	case "openai":
		return NewOpenAITTS(OpenAITTSConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	case "local":
		return NewLocalTTS(LocalTTSConfig{
			PiperBinPath: cfg.LocalBinPath,
			ModelPath:    cfg.LocalModel,
			Speakers:     cfg.LocalSpeakers,
		}), nil
	}
	return nil, fmt.Errorf("unknown tts backend %q", cfg.Backend)
}
