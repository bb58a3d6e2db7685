// Package events fans entry change events out to per-user subscribers.
package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

type subscriber struct {
	ch chan models.ChangeEvent
}

// Bus delivers each published event to every subscriber of the event's
// user. Publishing never blocks: a subscriber whose buffer is full misses
// the event and the drop is counted.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	buffer  int
	dropped atomic.Uint64
	closed  bool
	done    chan struct{}
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

// Subscribe registers for userID's events. The channel is closed once ctx
// is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, userID string) <-chan models.ChangeEvent {
	s := &subscriber{ch: make(chan models.ChangeEvent, b.buffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.ch)
		return s.ch
	}
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*subscriber]struct{})
	}
	b.subs[userID][s] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(userID, s)
		case <-b.done:
		}
	}()

	return s.ch
}

func (b *Bus) unsubscribe(userID string, s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(b.subs, userID)
	}
	close(s.ch)
}

// Publish delivers ev to the subscribers of ev.Entry.UserID and returns how
// many received it.
func (b *Bus) Publish(ev models.ChangeEvent) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for s := range b.subs[ev.Entry.UserID] {
		select {
		case s.ch <- ev:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Subscribers reports how many subscriptions userID has.
func (b *Bus) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}

// Dropped reports how many deliveries were skipped because a buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close ends every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for user, set := range b.subs {
		for s := range set {
			close(s.ch)
		}
		delete(b.subs, user)
	}
}
