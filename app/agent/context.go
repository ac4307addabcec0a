package agent

import (
	"fmt"
	"strings"

	"policylens/types"

	"github.com/pkoukk/tiktoken-go"
)

// charsPerToken approximates token counts when no tokenizer is available.
const charsPerToken = 4

// ContextBuilder concatenates retrieved fragments into a numbered context
// block, bounded by a token budget.
type ContextBuilder struct {
	enc       *tiktoken.Tiktoken
	maxTokens int
}

func NewContextBuilder(maxTokens int) *ContextBuilder {
	if maxTokens <= 0 {
		maxTokens = 3000
	}
	// Tokenizer init needs the BPE ranks; fall back to a character
	// estimate when they cannot be loaded.
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &ContextBuilder{enc: enc, maxTokens: maxTokens}
}

// Build joins chunks in the order given, each under a numbered section
// header. Chunks past the token budget are dropped, never truncated
// mid-fragment.
func (b *ContextBuilder) Build(chunks []types.Chunk) string {
	var sb strings.Builder
	used := 0
	for i, ch := range chunks {
		section := fmt.Sprintf("Section %d:\n%s\n\n", i+1, ch.Content)
		cost := b.countTokens(section)
		if used+cost > b.maxTokens && used > 0 {
			break
		}
		sb.WriteString(section)
		used += cost
	}
	return strings.TrimSpace(sb.String())
}

// BuildLegal formats legal knowledge base excerpts the same way, labeled
// with their regulation.
func (b *ContextBuilder) BuildLegal(chunks []types.LegalChunk) string {
	var sb strings.Builder
	used := 0
	for i, ch := range chunks {
		section := fmt.Sprintf("Reference %d (%s):\n%s\n\n", i+1, ch.Regulation, ch.Content)
		cost := b.countTokens(section)
		if used+cost > b.maxTokens && used > 0 {
			break
		}
		sb.WriteString(section)
		used += cost
	}
	return strings.TrimSpace(sb.String())
}

func (b *ContextBuilder) countTokens(s string) int {
	if b.enc != nil {
		return len(b.enc.Encode(s, nil, nil))
	}
	return len(s) / charsPerToken
}
