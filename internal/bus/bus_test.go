package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/gitops/internal/event"
)

func TestBus_PublishReachesSubscriber(t *testing.T) {
	t.Parallel()

	b := New()
	t.Cleanup(b.Shutdown)
	ch := b.Subscribe()

	want := Push{
		Event:      event.PushEvent{Repository: "https://x/y", Branch: "main"},
		DeliveryID: "d-1",
	}
	b.Publish(want)

	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("push did not arrive")
	}
}

func TestBus_ShutdownClosesSubscriberChannel(t *testing.T) {
	t.Parallel()

	b := New()
	ch := b.Subscribe()
	b.Shutdown()

	select {
	case _, open := <-ch:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}
