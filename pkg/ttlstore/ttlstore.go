// Package ttlstore provides an in-memory map with per-entry expiry. State is
// intentionally not persisted; the coordinator's tables live and die with the
// process.
package ttlstore

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const sweepInterval = time.Second

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store maps string keys to values with a per-entry TTL. Expiry is wall-clock
// with one-second accuracy. All methods are safe for concurrent use.
type Store[V any] struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]entry[V]

	onWillExpire func(key string, value V)
	onWillEvict  func(key string, value V)

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a store and starts its sweeper. Call Stop when done.
func New[V any](logger *zap.Logger) *Store[V] {
	s := &Store[V]{
		logger:  logger,
		entries: make(map[string]entry[V]),
		stop:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// OnWillExpire registers the hook fired just before an entry expires out of
// the store. Set hooks before the store is shared.
func (s *Store[V]) OnWillExpire(fn func(key string, value V)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWillExpire = fn
}

// OnWillEvict registers the hook fired when Set overwrites an entry or Drain
// removes it.
func (s *Store[V]) OnWillEvict(fn func(key string, value V)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWillEvict = fn
}

// Set stores value under key for ttl. Overwriting an existing entry fires the
// evict hook for the old value.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	old, existed := s.entries[key]
	s.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	hook := s.onWillEvict
	s.mu.Unlock()

	if existed && hook != nil {
		hook(key, old.value)
	}
}

// Get returns the live value under key. Entries past their deadline are
// treated as missing even before the sweeper runs.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		hook := s.onWillExpire
		s.mu.Unlock()
		if hook != nil {
			hook(key, e.value)
		}
		var zero V
		return zero, false
	}
	s.mu.Unlock()
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Len returns the number of stored entries, including any not yet swept.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Drain removes every entry, firing the evict hook for each.
func (s *Store[V]) Drain() {
	s.mu.Lock()
	drained := s.entries
	s.entries = make(map[string]entry[V])
	hook := s.onWillEvict
	s.mu.Unlock()

	if hook != nil {
		for key, e := range drained {
			hook(key, e.value)
		}
	}
}

// Stop halts the sweeper. The store remains usable but expired entries are
// only reclaimed on Get.
func (s *Store[V]) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store[V]) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.expireBefore(now)
		}
	}
}

func (s *Store[V]) expireBefore(now time.Time) {
	type expired[V any] struct {
		key   string
		value V
	}
	var gone []expired[V]

	s.mu.Lock()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			gone = append(gone, expired[V]{key: key, value: e.value})
		}
	}
	hook := s.onWillExpire
	s.mu.Unlock()

	if hook != nil {
		for _, g := range gone {
			hook(g.key, g.value)
		}
	}
	if len(gone) > 0 {
		s.logger.Debug("Expired entries swept", zap.Int("count", len(gone)))
	}
}
