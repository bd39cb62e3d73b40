package events

import (
	"sync"
	"time"

	"github.com/vadiminshakov/papertrader/internal/domain"
)

// Type distinguishes simulator events.
type Type string

const (
	TypeTick  Type = "tick"
	TypeTrade Type = "trade"
	TypeReset Type = "reset"
)

// Event is emitted by the simulator after every state change.
type Event struct {
	Type        Type                `json:"type"`
	Time        time.Time           `json:"ts"`
	Tick        *domain.TickEvent   `json:"tick,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Snapshot    domain.Snapshot     `json:"snapshot"`
}

// Broadcaster fans out events to all subscribers via buffered channels.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &Broadcaster{
		subs:   make(map[chan Event]struct{}),
		buffer: buffer,
	}
}

// Publish sends the event to all subscribers, dropping it for a reader whose buffer is full.
func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives events until Unsubscribe is called.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
