package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/btouchard/gitops/internal/liveness"
)

// PresencePublisher adapts the gateway's presence primitive to the
// liveness.Publisher interface. Fire-and-forget: a failed publish is logged
// and absorbed, so a dead gateway can never take the monitor down with it.
type PresencePublisher struct {
	gateway *Gateway
	timeout time.Duration
}

// NewPresencePublisher creates a PresencePublisher with a per-publish timeout.
func NewPresencePublisher(gateway *Gateway, timeout time.Duration) *PresencePublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PresencePublisher{gateway: gateway, timeout: timeout}
}

// Publish writes the status to the presence channel.
func (p *PresencePublisher) Publish(status liveness.Status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.gateway.Presence(ctx, status, message); err != nil {
		slog.Warn("presence publish failed", "status", status.String(), "error", err)
	}
}
