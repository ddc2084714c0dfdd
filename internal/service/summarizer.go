package service

import (
	"context"
	"errors"
)

var ErrSummarizerNotConfigured = errors.New("summarization backend credentials are not configured")

// SummarizerInterface is a chat-completion style backend: one system
// instruction, one user prompt, one text answer.
type SummarizerInterface interface {
	Name() string
	Configured() bool
	Summarize(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type EmbedderInterface interface {
	Configured() bool
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
