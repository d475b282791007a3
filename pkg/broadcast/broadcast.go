// Package broadcast fans a single message stream out to any number of
// subscribers. Sends are non-blocking: a subscriber whose outbox is full
// skips the message instead of slowing its peers.
package broadcast

import (
	"sync"

	"go.uber.org/zap"
)

// Broadcaster owns the subscriber set. One mutex guards the set; it is safe
// to hold it across sends because every send is non-blocking.
type Broadcaster struct {
	logger *zap.Logger

	mu          sync.Mutex
	subscribers map[uint64]chan []byte
	nextID      uint64
	closed      bool
}

// New creates an empty broadcaster.
func New(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		logger:      logger,
		subscribers: make(map[uint64]chan []byte),
	}
}

// Register adds an outbox and returns its subscriber id. Ids increase
// monotonically and are never reused. Registering on a closed broadcaster
// closes the outbox immediately.
func (b *Broadcaster) Register(outbox chan []byte) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	if b.closed {
		close(outbox)
		return id
	}
	b.subscribers[id] = outbox
	b.logger.Debug("Subscriber registered",
		zap.Uint64("subscriber_id", id),
		zap.Int("subscribers", len(b.subscribers)))
	return id
}

// Unregister closes the subscriber's outbox and removes it. Unknown ids are
// ignored.
func (b *Broadcaster) Unregister(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	outbox, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(outbox)
	b.logger.Debug("Subscriber unregistered",
		zap.Uint64("subscriber_id", id),
		zap.Int("subscribers", len(b.subscribers)))
}

// Broadcast enqueues msg into every open outbox. Full outboxes drop this
// message. Returns how many subscribers received and how many dropped.
func (b *Broadcaster) Broadcast(msg []byte) (delivered, dropped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, outbox := range b.subscribers {
		select {
		case outbox <- msg:
			delivered++
		default:
			dropped++
			b.logger.Warn("Subscriber outbox full, dropping message",
				zap.Uint64("subscriber_id", id))
		}
	}
	return delivered, dropped
}

// Len returns the current subscriber count.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes every outbox and empties the set. Later Broadcast calls are
// no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, outbox := range b.subscribers {
		delete(b.subscribers, id)
		close(outbox)
	}
	b.logger.Debug("Broadcaster closed")
}
