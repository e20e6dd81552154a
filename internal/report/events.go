package report

import (
	"context"
	"sync"
)

const subscriberBuffer = 8

// changeBroadcaster fans run events out to subscribers. Slow subscribers
// miss events instead of blocking SaveRun.
type changeBroadcaster struct {
	mu          sync.Mutex
	subscribers map[uint64]chan ChangeEvent
	nextID      uint64
}

func newChangeBroadcaster() *changeBroadcaster {
	return &changeBroadcaster{
		subscribers: make(map[uint64]chan ChangeEvent),
	}
}

func (b *changeBroadcaster) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		ch := make(chan ChangeEvent)
		close(ch)
		return ch, nil
	}

	ch := make(chan ChangeEvent, subscriberBuffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(ch)
		}
	})
	return ch, nil
}

// Broadcast sends evt to every subscriber. The lock is held while sending so
// a concurrent unsubscribe cannot close a channel mid-send.
func (b *changeBroadcaster) Broadcast(evt ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
