package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(4)
	first := b.Subscribe()
	second := b.Subscribe()
	require.Equal(t, 2, b.Subscribers())

	b.Publish(Event{Type: TypeReset})

	assert.Equal(t, TypeReset, (<-first).Type)
	assert.Equal(t, TypeReset, (<-second).Type)
}

func TestBroadcaster_DropsWhenBufferFull(t *testing.T) {
	b := NewBroadcaster(1)
	ch := b.Subscribe()

	b.Publish(Event{Type: TypeTick})
	b.Publish(Event{Type: TypeTrade})

	assert.Len(t, ch, 1)
	assert.Equal(t, TypeTick, (<-ch).Type)
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster(0)
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers())

	// second unsubscribe is a no-op
	b.Unsubscribe(ch)
	b.Publish(Event{Type: TypeTick})
}
