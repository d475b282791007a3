package ttlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSetGet(t *testing.T) {
	s := New[string](zaptest.NewLogger(t))
	defer s.Stop()

	s.Set("a", "alpha", time.Minute)
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", v)
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestGetExpiresStaleEntries(t *testing.T) {
	s := New[string](zaptest.NewLogger(t))
	defer s.Stop()

	var expiredKey string
	s.OnWillExpire(func(key string, _ string) { expiredKey = key })

	s.Set("a", "alpha", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// Past-deadline entries vanish on Get even before the sweeper runs.
	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, "a", expiredKey)
	assert.Equal(t, 0, s.Len())
}

func TestSweeperFiresExpireHook(t *testing.T) {
	s := New[int](zaptest.NewLogger(t))
	defer s.Stop()

	expired := make(chan string, 1)
	s.OnWillExpire(func(key string, _ int) { expired <- key })

	s.Set("a", 1, 10*time.Millisecond)

	select {
	case key := <-expired:
		assert.Equal(t, "a", key)
	case <-time.After(3 * time.Second):
		t.Fatal("sweeper never expired the entry")
	}
}

func TestOverwriteFiresEvictHook(t *testing.T) {
	s := New[string](zaptest.NewLogger(t))
	defer s.Stop()

	var evicted []string
	s.OnWillEvict(func(_ string, value string) { evicted = append(evicted, value) })

	s.Set("a", "old", time.Minute)
	s.Set("a", "new", time.Minute)
	assert.Equal(t, []string{"old"}, evicted)

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestDrain(t *testing.T) {
	s := New[int](zaptest.NewLogger(t))
	defer s.Stop()

	var evicted int
	s.OnWillEvict(func(string, int) { evicted++ })

	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)
	s.Drain()

	assert.Equal(t, 2, evicted)
	assert.Equal(t, 0, s.Len())
}

func TestStopIsIdempotent(t *testing.T) {
	s := New[int](zaptest.NewLogger(t))
	s.Stop()
	s.Stop()

	// The store stays usable without its sweeper.
	s.Set("a", 1, time.Minute)
	_, ok := s.Get("a")
	assert.True(t, ok)
}
