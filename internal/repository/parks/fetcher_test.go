package parks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/ecoquerai/quer/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	mu      sync.Mutex
	failFor map[string]bool // keyed by embedding input text substring
	calls   []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)

	for substr := range m.failFor {
		if strings.Contains(text, substr) {
			return domain.EmbeddingResult{}, errors.New("embedding boom")
		}
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	failed []string
}

func (o *recordingObserver) EmbeddingFailed(parkID string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, parkID)
}

func catalogServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

const fiveParks = `[
	{"id": 1, "name": "Parque Bustamante", "comuna": "Providencia"},
	{"id": 2, "name": "Parque Araucano", "comuna": "Las Condes"},
	{"id": 3, "name": "Parque O'Higgins", "comuna": "Santiago"},
	{"id": 4, "name": "Parque Forestal", "comuna": "Santiago"},
	{"id": 5, "name": "Parque de los Reyes", "comuna": "Santiago"}
]`

// --- Tests ---

func TestCatalog_EmbedsAllParks(t *testing.T) {
	srv := catalogServer(t, fiveParks, http.StatusOK)
	defer srv.Close()

	emb := &mockEmbedder{}
	obs := &recordingObserver{}
	f := New(srv.Client(), srv.URL, emb, obs, zap.NewNop())

	got, err := f.Catalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 embedded parks, got %d", len(got))
	}
	// Submission order preserved
	for i, wantID := range []string{"1", "2", "3", "4", "5"} {
		if got[i].Park.ID != wantID {
			t.Errorf("park %d: got id %s, want %s", i, got[i].Park.ID, wantID)
		}
	}
	if len(obs.failed) != 0 {
		t.Errorf("expected no failures, got %v", obs.failed)
	}
}

func TestCatalog_EmbeddingInputIsNameAndID(t *testing.T) {
	srv := catalogServer(t, `[{"id": 7, "name": "Parque Bustamante"}]`, http.StatusOK)
	defer srv.Close()

	emb := &mockEmbedder{}
	f := New(srv.Client(), srv.URL, emb, &recordingObserver{}, zap.NewNop())

	if _, err := f.Catalog(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(emb.calls) != 1 || emb.calls[0] != "Parque Bustamante 7" {
		t.Errorf("unexpected embedding input: %v", emb.calls)
	}
}

func TestCatalog_PartialFailureDropsOnlyFailedParks(t *testing.T) {
	srv := catalogServer(t, fiveParks, http.StatusOK)
	defer srv.Close()

	emb := &mockEmbedder{failFor: map[string]bool{"Araucano": true, "Forestal": true}}
	obs := &recordingObserver{}
	f := New(srv.Client(), srv.URL, emb, obs, zap.NewNop())

	got, err := f.Catalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 embedded parks, got %d", len(got))
	}
	for _, pe := range got {
		if pe.Park.ID == "2" || pe.Park.ID == "4" {
			t.Errorf("failed park %s should have been dropped", pe.Park.ID)
		}
	}

	if len(obs.failed) != 2 {
		t.Fatalf("expected 2 failure events, got %d", len(obs.failed))
	}
	failed := map[string]bool{}
	for _, id := range obs.failed {
		failed[id] = true
	}
	if !failed["2"] || !failed["4"] {
		t.Errorf("failure events missing park ids: %v", obs.failed)
	}
}

func TestCatalog_AllEmbeddingsFailYieldsEmptyList(t *testing.T) {
	srv := catalogServer(t, fiveParks, http.StatusOK)
	defer srv.Close()

	emb := &mockEmbedder{failFor: map[string]bool{"Parque": true}}
	f := New(srv.Client(), srv.URL, emb, &recordingObserver{}, zap.NewNop())

	got, err := f.Catalog(context.Background())
	if err != nil {
		t.Fatalf("expected no error for all-failed fan-out, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d entries", len(got))
	}
}

func TestCatalog_EmptyListing(t *testing.T) {
	srv := catalogServer(t, `[]`, http.StatusOK)
	defer srv.Close()

	f := New(srv.Client(), srv.URL, &mockEmbedder{}, &recordingObserver{}, zap.NewNop())

	got, err := f.Catalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d entries", len(got))
	}
}

func TestCatalog_ListingFailurePropagates(t *testing.T) {
	srv := catalogServer(t, `oops`, http.StatusInternalServerError)
	defer srv.Close()

	f := New(srv.Client(), srv.URL, &mockEmbedder{}, &recordingObserver{}, zap.NewNop())

	_, err := f.Catalog(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestCatalog_MalformedListing(t *testing.T) {
	srv := catalogServer(t, `{"not": "a list"}`, http.StatusOK)
	defer srv.Close()

	f := New(srv.Client(), srv.URL, &mockEmbedder{}, &recordingObserver{}, zap.NewNop())

	_, err := f.Catalog(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestCatalog_PayloadPreservedVerbatim(t *testing.T) {
	srv := catalogServer(t, `[{"id": "p1", "name": "Parque", "lat": -33.43, "qr": "abc"}]`, http.StatusOK)
	defer srv.Close()

	f := New(srv.Client(), srv.URL, &mockEmbedder{}, &recordingObserver{}, zap.NewNop())

	got, err := f.Catalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 park, got %d", len(got))
	}
	payload := string(got[0].Park.Payload)
	if !strings.Contains(payload, `"qr"`) || !strings.Contains(payload, "-33.43") {
		t.Errorf("payload lost fields: %s", payload)
	}
}
