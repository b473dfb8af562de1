package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/nikhilbhutani/podcastgen/internal/minimax"
)

// MiniMaxProvider shares its client with the speech and music stages.
type MiniMaxProvider struct {
	client *minimax.Client
}

func NewMiniMaxProvider(client *minimax.Client) *MiniMaxProvider {
	return &MiniMaxProvider{client: client}
}

func (p *MiniMaxProvider) Name() string         { return "minimax" }
func (p *MiniMaxProvider) DefaultModel() string { return "MiniMax-Text-01" }

func (p *MiniMaxProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	msgs := make([]minimax.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = minimax.Message{Role: m.Role, Content: m.Content}
	}

	resp, err := p.client.Text.ChatCompletion(ctx, &minimax.ChatRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return nil, fmt.Errorf("minimax chat: %w", err)
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return &ChatResponse{
		ID:           resp.ID,
		Provider:     p.Name(),
		Model:        model,
		Content:      resp.Content(),
		FinishReason: resp.Choices[0].FinishReason,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		CostUSD:      CalculateCost(req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
