package dataservice

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/wellkeeper/internal/cache"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
)

var eventKinds = []cache.Kind{cache.KindEntries, cache.KindAllEntries, cache.KindStats}

// Subscription is a running change feed. It ends when the parent context
// is done, the store closes the feed, or Unsubscribe is called.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Unsubscribe stops the feed and waits for the handler to return.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed once no further handler calls will happen.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// SubscribeToChanges watches userID's entries. Each event first
// invalidates the affected cache families and point keys, then is passed
// to handler. handler runs on a single goroutine, in event order. Events
// waiting for a slow handler are queued without bound.
func (s *Service) SubscribeToChanges(ctx context.Context, userID string, handler func(models.ChangeEvent)) (*Subscription, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}

	ctx, cancel := context.WithCancel(ctx)
	feed, err := s.store.Watch(ctx, userID)
	if err != nil {
		cancel()
		return nil, s.fail(ctx, "subscribe", err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	q := newEventQueue()

	// Invalidation runs on the feed reader, which never waits on handler.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		defer q.close()
		for ev := range feed {
			s.invalidateEvent(userID, ev)
			q.push(ev)
		}
		s.logger.Debug(ctx, "change feed closed", "user_id", userID)
	}()

	go func() {
		defer close(sub.done)
		for {
			ev, ok := q.pop(ctx)
			if !ok {
				break
			}
			if handler != nil {
				handler(ev)
			}
		}
		cancel()
		<-drained
	}()

	s.logger.Info(ctx, "subscribed to changes", "user_id", userID)
	return sub, nil
}

func (s *Service) invalidateEvent(userID string, ev models.ChangeEvent) {
	s.cache.Invalidate(cache.Selector{UserID: userID, Kinds: eventKinds})
	s.invalidateEntry(ev.Entry.ID)
	if ev.Entry.EntryDate != "" {
		k := cache.NewKey(cache.KindEntryByDate, userID, ev.Entry.EntryDate)
		s.cache.Invalidate(cache.Selector{Key: &k})
	}
}

// eventQueue hands events from the feed reader to the handler goroutine.
type eventQueue struct {
	mu     sync.Mutex
	items  []models.ChangeEvent
	closed bool
	ready  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) push(ev models.ChangeEvent) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.signal()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// pop returns the oldest event. It reports false once ctx is done, or
// when the queue is closed and empty.
func (q *eventQueue) pop(ctx context.Context) (models.ChangeEvent, bool) {
	for {
		if ctx.Err() != nil {
			return models.ChangeEvent{}, false
		}
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = models.ChangeEvent{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return models.ChangeEvent{}, false
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return models.ChangeEvent{}, false
		}
	}
}
