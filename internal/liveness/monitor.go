// Package liveness converts datastore reachability into a presence signal.
package liveness

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Status is the binary health signal published on the presence channel.
type Status int

const (
	StatusDown Status = iota
	StatusUp
)

func (s Status) String() string {
	if s == StatusUp {
		return "up"
	}
	return "down"
}

// Pinger is the datastore probe. A ping is a trivial round trip used only to
// detect reachability, never to read application data.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Publisher receives the recomputed status each tick. Fire-and-forget: the
// monitor never waits on the presence channel.
type Publisher interface {
	Publish(status Status, message string)
}

// upMessage matches the wording subscribers of the presence channel expect.
const upMessage = "All services up and running."

// Monitor polls the datastore on a fixed period and publishes Up or Down.
type Monitor struct {
	pinger    Pinger
	publisher Publisher
	interval  time.Duration
	timeout   time.Duration
}

// NewMonitor creates a Monitor probing pinger every interval, with each probe
// bounded by timeout.
func NewMonitor(pinger Pinger, publisher Publisher, interval, timeout time.Duration) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Monitor{pinger: pinger, publisher: publisher, interval: interval, timeout: timeout}
}

// Run probes immediately and then on every tick until ctx is cancelled.
// A failed probe is fully absorbed into a Down status; nothing escapes the
// tick handler.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick recomputes the status once and publishes it.
func (m *Monitor) tick(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.pinger.Ping(probeCtx); err != nil {
		slog.Warn("datastore probe failed", "error", err)
		m.publisher.Publish(StatusDown, fmt.Sprintf("Datastore is down: %v", err))
		return
	}
	m.publisher.Publish(StatusUp, upMessage)
}
