package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/gitops/internal/event"
)

type fakeRegistry struct {
	subscribers map[string][]string
	err         error
}

func (f *fakeRegistry) SubscribersOf(repository string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subscribers[repository], nil
}

type recordedSend struct {
	to, message string
}

type fakeSender struct {
	mu     sync.Mutex
	sends  []recordedSend
	failTo string // deliveries to this subscriber fail
}

func (f *fakeSender) Send(_ context.Context, to, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if to == f.failTo {
		return errors.New("transport down")
	}
	f.sends = append(f.sends, recordedSend{to: to, message: message})
	return nil
}

type fakeAdmin struct {
	warnings []string
}

func (f *fakeAdmin) WarnAdmins(_ context.Context, message string) {
	f.warnings = append(f.warnings, message)
}

var testEvent = event.PushEvent{
	Repository: "https://x/y",
	Branch:     "main",
	Pusher:     "a@b.com",
	CompareURL: "https://x/y/compare/1...2",
}

func TestDispatch_WhenNoSubscribers_WarnsAdminsOnce(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	admin := &fakeAdmin{}
	d := New(&fakeRegistry{}, sender, admin)

	require.NoError(t, d.Dispatch(context.Background(), testEvent))

	require.Len(t, admin.warnings, 1)
	assert.Equal(t, "Warning: webhook in https://x/y with no subscriber.", admin.warnings[0])
	assert.Empty(t, sender.sends)
}

func TestDispatch_DeliversSameMessageToEachSubscriber(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	admin := &fakeAdmin{}
	registry := &fakeRegistry{subscribers: map[string][]string{
		"https://x/y": {"s1", "s2"},
	}}
	d := New(registry, sender, admin)

	require.NoError(t, d.Dispatch(context.Background(), testEvent))

	require.Len(t, sender.sends, 2)
	want := "GitHub notification: a@b.com pushed to `main` in `https://x/y`. You can look the diff in: https://x/y/compare/1...2."
	recipients := make([]string, 0, 2)
	for _, s := range sender.sends {
		assert.Equal(t, want, s.message)
		recipients = append(recipients, s.to)
	}
	assert.ElementsMatch(t, []string{"s1", "s2"}, recipients)
	assert.Empty(t, admin.warnings)
}

func TestDispatch_WhenOneDeliveryFails_OthersStillDelivered(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{failTo: "s1"}
	registry := &fakeRegistry{subscribers: map[string][]string{
		"https://x/y": {"s1", "s2", "s3"},
	}}
	d := New(registry, sender, &fakeAdmin{})

	require.NoError(t, d.Dispatch(context.Background(), testEvent))

	require.Len(t, sender.sends, 2)
	recipients := []string{sender.sends[0].to, sender.sends[1].to}
	assert.ElementsMatch(t, []string{"s2", "s3"}, recipients)
}

func TestDispatch_WhenRegistryFails_ReturnsError(t *testing.T) {
	t.Parallel()

	registry := &fakeRegistry{err: errors.New("store unavailable")}
	sender := &fakeSender{}
	admin := &fakeAdmin{}
	d := New(registry, sender, admin)

	err := d.Dispatch(context.Background(), testEvent)
	require.Error(t, err)
	assert.Empty(t, sender.sends)
	assert.Empty(t, admin.warnings)
}

func TestMessage_Format(t *testing.T) {
	t.Parallel()

	got := Message(testEvent)
	assert.Equal(t,
		"GitHub notification: a@b.com pushed to `main` in `https://x/y`. You can look the diff in: https://x/y/compare/1...2.",
		got)
}
