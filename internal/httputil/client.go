// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by remote callers.
package httputil

import (
	"net/http"
	"time"
)

// NewClient returns an *http.Client with the given overall timeout whose
// requests carry userAgent. A zero timeout means no client-side limit.
func NewClient(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: userAgent},
	}
}

// userAgentTransport replaces the User-Agent of every outgoing request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
