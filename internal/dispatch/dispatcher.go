// Package dispatch fans a push event out to the repository's subscribers.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/btouchard/gitops/internal/event"
)

// Registry is the read side of the subscription store the dispatcher needs.
// Defined consumer-side per Go convention.
type Registry interface {
	SubscribersOf(repository string) ([]string, error)
}

// Sender delivers one message to one subscriber over the external chat
// transport.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// AdminNotifier carries non-fatal operational warnings to the administrators.
type AdminNotifier interface {
	WarnAdmins(ctx context.Context, message string)
}

// Dispatcher resolves subscribers of a pushed repository and delivers the
// formatted notification to each.
type Dispatcher struct {
	registry Registry
	sender   Sender
	admin    AdminNotifier
}

// New creates a Dispatcher.
func New(registry Registry, sender Sender, admin AdminNotifier) *Dispatcher {
	return &Dispatcher{registry: registry, sender: sender, admin: admin}
}

// Dispatch delivers ev to every subscriber of its repository. Delivery is
// best-effort and at-most-once: a failed send is logged and never aborts the
// remaining deliveries. A repository with no subscriber produces exactly one
// admin warning instead. Only a registry failure is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.PushEvent) error {
	subscribers, err := d.registry.SubscribersOf(ev.Repository)
	if err != nil {
		return fmt.Errorf("resolving subscribers: %w", err)
	}

	if len(subscribers) == 0 {
		d.admin.WarnAdmins(ctx, fmt.Sprintf("Warning: webhook in %s with no subscriber.", ev.Repository))
		return nil
	}

	message := Message(ev)
	for _, subscriber := range subscribers {
		if err := d.sender.Send(ctx, subscriber, message); err != nil {
			slog.Warn("notification delivery failed",
				"repository", ev.Repository,
				"subscriber", subscriber,
				"error", err)
		}
	}
	return nil
}

// Message renders the notification text for a push event.
func Message(ev event.PushEvent) string {
	return fmt.Sprintf("%s notification: %s pushed to `%s` in `%s`. You can look the diff in: %s.",
		event.ProviderName, ev.Pusher, ev.Branch, ev.Repository, ev.CompareURL)
}
