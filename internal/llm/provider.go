// Package llm routes dialogue-generation prompts to a text model. Every
// backend answers the same two-message exchange (a system prompt and the
// scene brief) and reports whether its output was cut off.
package llm

import "context"

type Provider interface {
	Name() string
	// DefaultModel is used when neither the request nor config names one.
	DefaultModel() string
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Provider(name string) (Provider, error)
	// Providers lists the configured backends in name order.
	Providers() []string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatRequest struct {
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
}

type ChatResponse struct {
	ID           string  `json:"id,omitempty"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	FinishReason string  `json:"finish_reason,omitempty"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

// Truncated reports that the model stopped at the token limit, which
// usually leaves a JSON script unterminated.
func (r *ChatResponse) Truncated() bool {
	switch r.FinishReason {
	case "length", "max_tokens":
		return true
	}
	return false
}

// split separates system text from the conversation turns. Backends with a
// dedicated system field use it; the rest keep messages as they are.
func split(msgs []Message) (system []string, turns []Message) {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
