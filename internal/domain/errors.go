package domain

import "errors"

var (
	// ErrNoMatchingPark signals a retrieval failure: the best similarity score is
	// undefined because every candidate vector had zero magnitude or a mismatched
	// dimension, or the catalog produced no embeddings at all.
	ErrNoMatchingPark = errors.New("no matching park found")
	// ErrContextTooLarge signals that the assembled system context alone exceeds
	// the conversation token budget.
	ErrContextTooLarge = errors.New("message is too long")
	// ErrCatalogUnavailable signals a parks listing fetch failure.
	ErrCatalogUnavailable = errors.New("park catalog unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrTranscriptionProviderError signals a speech-to-text provider failure.
	ErrTranscriptionProviderError = errors.New("transcription provider error")
)
