package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var seen []Event
	d.Subscribe(EventFeedbackCreated, func(_ context.Context, event Event) error {
		seen = append(seen, event)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventFeedbackCreated, FeedbackID: "abc"})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "abc", seen[0].FeedbackID)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var calls int
	d.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		calls++
		return errors.New("handler down")
	})
	d.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventCommentAdded})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestPublishIgnoresOtherEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var calls int
	d.Subscribe(EventFeedbackDeleted, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventFeedbackUpvoted}))
	assert.Zero(t, calls)
}
