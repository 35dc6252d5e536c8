// Package scheduler runs background jobs
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ExpiryLockKey guards the sweep so only one instance runs it per interval
const ExpiryLockKey = "scheduler:quote_expiry:lock"

// QuoteExpirer is the part of the quote flow the sweeper needs
type QuoteExpirer interface {
	ExpireDue(ctx context.Context, actor string) (int, error)
}

// Locker hands out short-lived leases shared between instances
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLocker takes leases with SET NX
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// QuoteExpirySweeper periodically moves quotes past their validity to expired
type QuoteExpirySweeper struct {
	flow     QuoteExpirer
	locker   Locker
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewQuoteExpirySweeper builds a sweeper; locker may be nil on single instance deployments
func NewQuoteExpirySweeper(flow QuoteExpirer, locker Locker, interval time.Duration, logger *zap.Logger) *QuoteExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteExpirySweeper{
		flow:     flow,
		locker:   locker,
		logger:   logger.Named("quote_expiry_sweeper"),
		interval: interval,
		timeout:  interval,
	}
}

// Start launches the sweep loop in a background goroutine and returns a stop function
func (s *QuoteExpirySweeper) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// RunOnce performs a single sweep and reports how many quotes expired
func (s *QuoteExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	if s.locker != nil {
		// lease expires before the next tick
		ok, err := s.locker.Acquire(ctx, ExpiryLockKey, s.interval*9/10)
		if err != nil {
			return 0, err
		}
		if !ok {
			s.logger.Debug("expiry sweep skipped, lock held elsewhere")
			return 0, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.flow.ExpireDue(ctx, models.QuoteEventActorSweeper)
}

func (s *QuoteExpirySweeper) runOnce(ctx context.Context) {
	n, err := s.RunOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("expiry sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.logger.Info("expired due quotes", zap.Int("count", n))
	}
}
