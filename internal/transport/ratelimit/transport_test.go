package ratelimit

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRoundTrip_AllowsBurstWithinQuota(t *testing.T) {
	var calls int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	// Generous window: the full burst must go through without blocking.
	client := New(nil, 10, time.Minute).Client(5 * time.Second)
	for i := 0; i < 10; i++ {
		resp, err := client.Get(backend.URL)
		if err != nil {
			t.Fatalf("request failed within quota: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	if calls != 10 {
		t.Errorf("backend saw %d calls, want 10", calls)
	}
}

func TestRoundTrip_CanceledContextWhileWaiting(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	// One slot per hour: the second request must wait, so cancellation has to
	// surface instead of the response.
	client := New(nil, 1, time.Hour).Client(0)

	resp, err := client.Get(backend.URL)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, backend.URL, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if _, err := client.Do(req); err == nil {
		t.Fatal("expected error for request waiting past context deadline")
	}
}

func TestNew_NilBaseUsesDefaultTransport(t *testing.T) {
	tr := New(nil, 60, time.Minute)
	if tr.base != http.DefaultTransport {
		t.Error("nil base must fall back to http.DefaultTransport")
	}
}
