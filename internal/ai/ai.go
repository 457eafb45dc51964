// Package ai defines the narrow capability interfaces the pipeline uses to
// talk to language-model providers, plus the concrete provider clients.
package ai

import "context"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LanguageModel produces a completion for a conversation under a system
// instruction.
type LanguageModel interface {
	Complete(ctx context.Context, systemInstruction string, messages []ChatMessage) (string, error)
}

// EmbeddingProvider turns text into fixed-length vectors. EmbedBatch must
// return one vector per input, in input order.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
