package answer

import (
	"context"

	"github.com/ecoquerai/quer/internal/domain"
)

// CatalogFetcher retrieves the embedded park catalog.
type CatalogFetcher interface {
	Catalog(ctx context.Context) ([]domain.ParkEmbedding, error)
}

// Ranker selects the top parks for a query embedding.
type Ranker interface {
	TopK(query []float32, parks []domain.ParkEmbedding) ([]domain.Match, error)
}

// Conversations is the budgeted per-session conversation store.
type Conversations interface {
	Append(sessionID, systemContext, question string) error
	Messages(sessionID string) []domain.Message
}

// Preprocessor normalizes raw user questions.
type Preprocessor interface {
	Normalize(text string) string
}
