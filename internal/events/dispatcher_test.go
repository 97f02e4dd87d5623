package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []Event
	dispatcher.Subscribe(EventLeadCreated, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})
	dispatcher.Subscribe(EventLeadDeleted, func(_ context.Context, event Event) error {
		t.Fatalf("unexpected delivery for %s", event.Type)
		return nil
	})

	event := Event{ID: "e1", Type: EventLeadCreated, LeadID: "l1", Timestamp: time.Now()}
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	require.Len(t, got, 1)
	assert.Equal(t, "l1", got[0].LeadID)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	calls := 0
	dispatcher.Subscribe(EventLeadConverted, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventLeadConverted, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventLeadConverted}))
	assert.Equal(t, 2, calls)
}

func TestDispatcherNoSubscribersIsNoop(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventActivityLogged}))
}
