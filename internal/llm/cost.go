package llm

import "strings"

// USD per million tokens, input then output. Keys are model prefixes so
// dated snapshots ("gpt-4o-2024-08-06") price like their family; the
// longest matching prefix wins.
var pricing = map[string][2]float64{
	"MiniMax-Text-01": {0.2, 1.1},
	"abab6.5s":        {0.14, 0.14},

	"gpt-4o":        {2.5, 10},
	"gpt-4o-mini":   {0.15, 0.6},
	"gpt-4.1":       {2, 8},
	"gpt-4.1-mini":  {0.4, 1.6},
	"deepseek-chat": {0.27, 1.1},

	"claude-3-haiku":   {0.25, 1.25},
	"claude-3-5-haiku": {0.8, 4},
	"claude-sonnet-4":  {3, 15},
	"claude-opus-4":    {15, 75},
}

// CalculateCost is zero for unknown and local models.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	var (
		best  string
		price [2]float64
	)
	for prefix, p := range pricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, price = prefix, p
		}
	}
	return (float64(inputTokens)*price[0] + float64(outputTokens)*price[1]) / 1e6
}
