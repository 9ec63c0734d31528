package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Chatter produces a completion for an assembled conversation.
type Chatter interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Transcriber converts spoken audio into text. Audio is raw PCM16 little-endian,
// 16 kHz, mono; lang is a hint like "es".
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, lang string) (string, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage reported by the
// provider.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
