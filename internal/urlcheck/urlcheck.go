// Package urlcheck probes candidate repository URLs for reachability before
// they are accepted into the subscription registry.
package urlcheck

import (
	"log/slog"
	"net/http"
	"time"
)

// Validator performs a single HEAD probe per call, following redirects.
type Validator struct {
	client *http.Client
}

// New creates a Validator whose probes are bounded by timeout.
func New(timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	// http.Client follows redirects by default.
	return &Validator{client: &http.Client{Timeout: timeout}}
}

// Validate reports whether the candidate URL answers a HEAD request with a
// success status. The input is returned verbatim on success; any network
// error, timeout, or non-success status yields ok=false. One probe, no
// retries.
func (v *Validator) Validate(candidate string) (string, bool) {
	req, err := http.NewRequest(http.MethodHead, candidate, nil)
	if err != nil {
		return "", false
	}

	resp, err := v.client.Do(req)
	if err != nil {
		slog.Debug("url probe failed", "url", candidate, "error", err)
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false
	}
	return candidate, true
}
