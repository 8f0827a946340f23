package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, okB := c.Get("b")
	assert.False(t, okB)
	v, okA := c.Get("a")
	assert.True(t, okA)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("j", "w")
	now = now.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_Purge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	assert.Equal(t, 0, c.Size())
	c.Set("a", 3)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestLoader_SharesConcurrentMisses(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := l.Get(context.Background(), "stats:2025", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
	for _, v := range results {
		assert.Equal(t, 42, v)
	}

	v, err := l.Get(context.Background(), "stats:2025", func(context.Context) (int, error) {
		t.Fatal("loader called on a cached key")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	boom := errors.New("boom")

	_, err := l.Get(context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := l.Get(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	l.Invalidate()
	v, err = l.Get(context.Background(), "k", func(context.Context) (int, error) { return 8, nil })
	require.NoError(t, err)
	assert.Equal(t, 8, v)
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()

	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
}

func TestLoader_InvalidateDuringLoad(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int)
	go func() {
		v, err := l.Get(context.Background(), "stats:2024", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		assert.NoError(t, err)
		done <- v
	}()

	<-started
	l.Invalidate()

	// A miss after the write starts its own load instead of joining the stale one.
	v, err := l.Get(context.Background(), "stats:2024", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	close(release)
	assert.Equal(t, 1, <-done)

	v, err = l.Get(context.Background(), "stats:2024", func(context.Context) (int, error) {
		t.Fatal("loader called on a cached key")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLoader_StaleLoadIsNotStored(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	v, err := l.Get(context.Background(), "k", func(context.Context) (int, error) {
		l.Invalidate()
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = l.Get(context.Background(), "k", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLoader_LoadIgnoresCallerCancellation(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := l.Get(ctx, "k", func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}
