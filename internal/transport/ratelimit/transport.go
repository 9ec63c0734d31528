// Package ratelimit provides a rate-limited http.RoundTripper shared by all
// outbound service clients.
package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Transport throttles outbound requests to a fixed quota per rolling window.
// When the quota is exhausted, RoundTrip blocks until a slot frees up or the
// request context is canceled; it never fails fast.
type Transport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// New creates a transport allowing `requests` calls per `window` on top of
// base (http.DefaultTransport when nil).
func New(base http.RoundTripper, requests int, window time.Duration) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:    base,
		limiter: rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.base.RoundTrip(req) //nolint:wrapcheck // delegating to underlying transport
}

// Client returns an *http.Client using this transport with the given timeout.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}
