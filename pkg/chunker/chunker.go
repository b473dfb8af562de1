// Package chunker splits narration text into speakable pieces that respect
// sentence boundaries in both CJK and Latin scripts.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Chunker interface {
	Chunk(text string, opts ChunkOptions) []TextChunk
}

type ChunkOptions struct {
	MaxRunes int    // upper bound on a chunk's length in runes
	Strategy string // "sentence" or "fixed"
}

type TextChunk struct {
	Content string
	Index   int
}

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		MaxRunes: 250,
		Strategy: "sentence",
	}
}

type defaultChunker struct{}

func New() Chunker {
	return &defaultChunker{}
}

func (c *defaultChunker) Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = DefaultOptions().MaxRunes
	}

	var parts []string
	switch opts.Strategy {
	case "fixed":
		parts = splitFixed(strings.TrimSpace(text), opts.MaxRunes)
	default:
		parts = packSentences(SplitSentences(text), opts.MaxRunes)
	}

	chunks := make([]TextChunk, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		chunks = append(chunks, TextChunk{Content: p, Index: len(chunks)})
	}
	return chunks
}

// Truncate returns the longest prefix of whole sentences that fits in limit
// runes, cutting mid-sentence only when the first sentence is too long.
func Truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	var b strings.Builder
	n := 0
	for _, s := range SplitSentences(text) {
		if n+utf8.RuneCountInString(strings.TrimRightFunc(s, unicode.IsSpace)) > limit {
			break
		}
		b.WriteString(s)
		n += utf8.RuneCountInString(s)
	}
	if out := strings.TrimSpace(b.String()); out != "" {
		return out
	}
	return strings.TrimSpace(string([]rune(text)[:limit]))
}

func packSentences(sentences []string, limit int) []string {
	var out []string
	var current strings.Builder
	n := 0

	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
			n = 0
		}
	}

	for _, s := range sentences {
		sn := utf8.RuneCountInString(s)
		if sn > limit {
			flush()
			out = append(out, splitFixed(s, limit)...)
			continue
		}
		if n > 0 && n+sn > limit {
			flush()
		}
		current.WriteString(s)
		n += sn
	}
	flush()
	return out
}

func splitFixed(text string, limit int) []string {
	var out []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += limit {
		end := min(i+limit, len(runes))
		out = append(out, string(runes[i:end]))
	}
	return out
}

// SplitSentences splits after CJK terminators unconditionally and after
// Latin terminators when followed by whitespace or end of text. Line breaks
// also end a sentence. Trailing whitespace stays attached to its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		end := false
		switch r {
		case '。', '！', '？', '\n':
			end = true
		case '.', '!', '?':
			end = i+1 == len(runes) || unicode.IsSpace(runes[i+1])
		}
		if !end {
			continue
		}
		// keep closing quotes and following spaces with this sentence
		for i+1 < len(runes) && (isCloser(runes[i+1]) || runes[i+1] == ' ') {
			i++
			current.WriteRune(runes[i])
		}
		if strings.TrimSpace(current.String()) != "" {
			sentences = append(sentences, current.String())
		}
		current.Reset()
	}

	if strings.TrimSpace(current.String()) != "" {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', '」', '』', ')', '）':
		return true
	}
	return false
}
