package store

import (
	"context"
	"errors"
	"iter"
)

// ErrUnavailable signals that the backing database could not serve the
// operation. Callers match it with errors.Is.
var ErrUnavailable = errors.New("subscription store unavailable")

// Store is the persistence interface for the subscription registry.
// Defined at the consumer side per Go conventions.
type Store interface {
	// AddSubscriber records a subscription. Creates the repository record on
	// first subscribe; adding an existing member is a no-op.
	AddSubscriber(repository, subscriber string) error

	// RemoveSubscriber drops one membership. Absent repository or subscriber
	// is a no-op, not an error.
	RemoveSubscriber(repository, subscriber string) error

	IsSubscribed(repository, subscriber string) (bool, error)
	RepositoryExists(repository string) (bool, error)

	// SubscribersOf returns the subscriber set of a repository, empty for an
	// unknown repository. Iteration order carries no meaning.
	SubscribersOf(repository string) ([]string, error)

	// RepositoriesOf yields the repositories a subscriber is subscribed to.
	// The sequence is lazy and restartable; each range re-queries the store.
	RepositoriesOf(subscriber string) iter.Seq2[string, error]

	// Ping performs a trivial round trip, used by the liveness monitor.
	Ping(ctx context.Context) error

	Close() error
}
