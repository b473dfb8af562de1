package minimax

import "context"

type SpeechService struct {
	client *Client
}

type VoiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Vol     float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
	Emotion string  `json:"emotion,omitempty"`
}

type AudioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
	Channel    int    `json:"channel,omitempty"`
}

type SpeechRequest struct {
	Model        string       `json:"model"`
	Text         string       `json:"text"`
	Stream       bool         `json:"stream"`
	VoiceSetting VoiceSetting `json:"voice_setting"`
	AudioSetting AudioSetting `json:"audio_setting"`
	OutputFormat string       `json:"output_format,omitempty"`
}

// DefaultAudioSetting is mono 32kHz MP3, the format the assembler expects.
var DefaultAudioSetting = AudioSetting{SampleRate: 32000, Bitrate: 128000, Format: "mp3", Channel: 1}

type AudioInfo struct {
	AudioLength     int    `json:"audio_length"`
	AudioSampleRate int    `json:"audio_sample_rate"`
	AudioSize       int    `json:"audio_size"`
	Bitrate         int    `json:"bitrate"`
	AudioFormat     string `json:"audio_format"`
	AudioChannel    int    `json:"audio_channel"`
	UsageCharacters int    `json:"usage_characters"`
}

// SpeechResponse keeps the audio in its wire form. Data.Audio is hex unless
// OutputFormat was "url", in which case Data.AudioURL is set instead.
type SpeechResponse struct {
	Data struct {
		Audio    string `json:"audio"`
		AudioURL string `json:"audio_url"`
		Status   int    `json:"status"`
	} `json:"data"`
	ExtraInfo AudioInfo `json:"extra_info"`
	TraceID   string    `json:"trace_id"`
}

func (s *SpeechService) Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error) {
	var resp SpeechResponse
	if err := s.client.post(ctx, "/v1/t2a_v2", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
