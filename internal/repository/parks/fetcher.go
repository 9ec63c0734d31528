// Package parks fetches the park catalog and vectorizes each entry.
package parks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/ecoquerai/quer/internal/domain"
	"github.com/ecoquerai/quer/internal/metrics"
)

// FailureObserver receives one structured event per park whose embedding call
// failed. Injected so the composition root decides how failures are reported.
type FailureObserver interface {
	EmbeddingFailed(parkID string, err error)
}

// Fetcher retrieves the current park listing and computes one embedding per
// park. Results are rebuilt on every call; nothing is cached across requests.
type Fetcher struct {
	client   *http.Client
	url      string
	embedder domain.Embedder
	observer FailureObserver
	logger   *zap.Logger
}

// New creates a catalog fetcher. client should share the rate-limited
// transport with the other outbound services.
func New(client *http.Client, url string, embedder domain.Embedder, observer FailureObserver, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		url:      url,
		embedder: embedder,
		observer: observer,
		logger:   logger,
	}
}

// Catalog fetches the park listing, then embeds every park concurrently using
// the concatenation of name and id as input text. Each per-park attempt is
// isolated: a failure is reported to the observer and the park is dropped,
// while all other attempts proceed. The returned slice keeps submission order.
// An empty catalog or all-failed fan-out yields an empty slice, not an error;
// only the listing call itself failing does.
func (f *Fetcher) Catalog(ctx context.Context) ([]domain.ParkEmbedding, error) {
	parksList, err := f.fetchListing(ctx)
	if err != nil {
		return nil, err
	}

	metrics.CatalogParksFetched.Observe(float64(len(parksList)))

	embedded := make([]*domain.ParkEmbedding, len(parksList))
	var wg sync.WaitGroup
	for i, park := range parksList {
		wg.Add(1)
		go func(i int, park domain.Park) {
			defer wg.Done()
			res, err := f.embedder.Embed(ctx, park.EmbeddingText())
			if err != nil {
				f.observer.EmbeddingFailed(park.ID, err)
				return
			}
			embedded[i] = &domain.ParkEmbedding{Park: park, Embedding: res.Embedding}
		}(i, park)
	}
	wg.Wait()

	out := make([]domain.ParkEmbedding, 0, len(parksList))
	for _, pe := range embedded {
		if pe != nil {
			out = append(out, *pe)
		}
	}

	f.logger.Debug("Park catalog embedded",
		zap.Int("fetched", len(parksList)),
		zap.Int("embedded", len(out)),
	)
	return out, nil
}

func (f *Fetcher) fetchListing(ctx context.Context) ([]domain.Park, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %v: %w", err, domain.ErrCatalogUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned status %d: %w", resp.StatusCode, domain.ErrCatalogUnavailable)
	}

	var parksList []domain.Park
	if err := json.NewDecoder(resp.Body).Decode(&parksList); err != nil {
		return nil, fmt.Errorf("decode catalog: %v: %w", err, domain.ErrCatalogUnavailable)
	}
	return parksList, nil
}

// HealthCheck verifies the parks listing endpoint is reachable.
func (f *Fetcher) HealthCheck(ctx context.Context) error {
	_, err := f.fetchListing(ctx)
	return err
}
