package minimax

import (
	"context"
	"errors"
	"fmt"
)

type MusicService struct {
	client *Client
}

type MusicRequest struct {
	Model        string       `json:"model"`
	Prompt       string       `json:"prompt"`
	Lyrics       string       `json:"lyrics"`
	AudioSetting AudioSetting `json:"audio_setting"`
}

var DefaultMusicAudioSetting = AudioSetting{SampleRate: 44100, Bitrate: 256000, Format: "mp3"}

type MusicResponse struct {
	Audio     []byte
	ExtraInfo AudioInfo
}

// Generate returns decoded audio; the wire format is always hex.
func (s *MusicService) Generate(ctx context.Context, req *MusicRequest) (*MusicResponse, error) {
	var resp struct {
		Data struct {
			Audio  string `json:"audio"`
			Status int    `json:"status"`
		} `json:"data"`
		ExtraInfo AudioInfo `json:"extra_info"`
	}
	if err := s.client.post(ctx, "/v1/music_generation", req, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Audio == "" {
		return nil, errors.New("minimax: music response has no audio")
	}
	audio, err := DecodeHexAudio(resp.Data.Audio)
	if err != nil {
		return nil, fmt.Errorf("decode music audio: %w", err)
	}
	return &MusicResponse{Audio: audio, ExtraInfo: resp.ExtraInfo}, nil
}
