// Package bus is the in-process event bus decoupling webhook acceptance from
// notification dispatch: the HTTP response never waits on deliveries.
package bus

import (
	"github.com/cskr/pubsub/v2"

	"github.com/btouchard/gitops/internal/event"
)

const topicPush = "push"

// chanCapacity buffers a handful of pushes so the webhook handler does not
// block on a dispatcher mid-delivery.
const chanCapacity = 16

// Push is one accepted push event on its way to the dispatcher.
type Push struct {
	Event      event.PushEvent
	DeliveryID string
}

// Bus wraps a typed pubsub instance with the single push topic.
type Bus struct {
	ps *pubsub.PubSub[string, Push]
}

// New creates a Bus.
func New() *Bus {
	return &Bus{ps: pubsub.New[string, Push](chanCapacity)}
}

// Publish hands an accepted push to the subscribers.
func (b *Bus) Publish(p Push) {
	b.ps.Pub(p, topicPush)
}

// Subscribe returns a channel of accepted pushes. The channel closes on
// Shutdown.
func (b *Bus) Subscribe() chan Push {
	return b.ps.Sub(topicPush)
}

// Shutdown closes all subscriber channels.
func (b *Bus) Shutdown() {
	b.ps.Shutdown()
}
