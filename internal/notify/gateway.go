// Package notify adapts the external chat transport: a gateway reached over
// HTTP that renders and sends messages to opaque subscriber identifiers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btouchard/gitops/internal/liveness"
)

// Gateway is the HTTP client for the chat gateway's send and presence
// primitives.
type Gateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGateway creates a Gateway talking to baseURL, with each call bounded by
// timeout.
func NewGateway(baseURL, token string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Send delivers one message to one subscriber identifier.
func (g *Gateway) Send(ctx context.Context, to, message string) error {
	return g.post(ctx, "/send", map[string]string{
		"to":      to,
		"message": message,
	})
}

// Presence publishes the liveness status on the presence channel. Up maps to
// the gateway's "online" state, Down to "away".
func (g *Gateway) Presence(ctx context.Context, status liveness.Status, message string) error {
	state := "away"
	if status == liveness.StatusUp {
		state = "online"
	}
	return g.post(ctx, "/presence", map[string]string{
		"status":  state,
		"message": message,
	})
}

func (g *Gateway) post(ctx context.Context, path string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling gateway %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway %s returned %d", path, resp.StatusCode)
	}
	return nil
}
