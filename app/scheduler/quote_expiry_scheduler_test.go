package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExpirer struct {
	mu     sync.Mutex
	calls  int
	actors []string
	n      int
	err    error
}

func (e *countingExpirer) ExpireDue(ctx context.Context, actor string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.actors = append(e.actors, actor)
	return e.n, e.err
}

func (e *countingExpirer) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type memoryLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	fails bool
}

func (l *memoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.fails {
		return false, errors.New("connection refused")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]time.Time{}
	}
	if until, ok := l.held[key]; ok && time.Now().Before(until) {
		return false, nil
	}
	l.held[key] = time.Now().Add(ttl)
	return true, nil
}

func TestQuoteExpirySweeper_RunOnce(t *testing.T) {
	flow := &countingExpirer{n: 4}
	s := NewQuoteExpirySweeper(flow, nil, time.Minute, nil)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{models.QuoteEventActorSweeper}, flow.actors)
}

func TestQuoteExpirySweeper_LockHeldElsewhere(t *testing.T) {
	locker := &memoryLocker{}
	first := &countingExpirer{n: 1}
	second := &countingExpirer{n: 1}
	a := NewQuoteExpirySweeper(first, locker, time.Minute, nil)
	b := NewQuoteExpirySweeper(second, locker, time.Minute, nil)

	n, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = b.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, second.Calls())
}

func TestQuoteExpirySweeper_LockErrorSkipsSweep(t *testing.T) {
	flow := &countingExpirer{}
	s := NewQuoteExpirySweeper(flow, &memoryLocker{fails: true}, time.Minute, nil)

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, flow.Calls())
}

func TestQuoteExpirySweeper_StartAndStop(t *testing.T) {
	flow := &countingExpirer{err: errors.New("db down")}
	s := NewQuoteExpirySweeper(flow, nil, 10*time.Millisecond, nil)

	stop := s.Start(context.Background())
	assert.Eventually(t, func() bool { return flow.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	stop()

	calls := flow.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, flow.Calls())
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	prefix := "test:" + time.Now().Format("150405.000000") + ":"
	defer client.Del(ctx, prefix+ExpiryLockKey)

	l := NewRedisLocker(client, prefix)
	ok, err := l.Acquire(ctx, ExpiryLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Acquire(ctx, ExpiryLockKey, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}
