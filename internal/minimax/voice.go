package minimax

import "context"

type VoiceService struct {
	client *Client
}

type VoiceType string

const (
	VoiceTypeAll        VoiceType = "all"
	VoiceTypeSystem     VoiceType = "system"
	VoiceTypeCloning    VoiceType = "voice_cloning"
	VoiceTypeGeneration VoiceType = "voice_generation"
)

type VoiceInfo struct {
	VoiceID     string   `json:"voice_id"`
	VoiceName   string   `json:"voice_name,omitempty"`
	Description []string `json:"description,omitempty"`
	CreatedTime string   `json:"created_time,omitempty"`
}

type VoiceList struct {
	SystemVoice     []VoiceInfo `json:"system_voice"`
	VoiceCloning    []VoiceInfo `json:"voice_cloning"`
	VoiceGeneration []VoiceInfo `json:"voice_generation"`
}

func (s *VoiceService) List(ctx context.Context, t VoiceType) (*VoiceList, error) {
	var resp VoiceList
	if err := s.client.post(ctx, "/v1/get_voice", map[string]string{"voice_type": string(t)}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
