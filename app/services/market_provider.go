package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MarketConditionsKey is the Redis key holding the published snapshot
const MarketConditionsKey = "market_conditions:current"

// MarketConditionsProvider hands out the current immutable market snapshot.
// Callers fetch it once per batch and reuse it for every quote in that batch.
type MarketConditionsProvider interface {
	Current(ctx context.Context) (*pricing.MarketSnapshot, error)
	Publish(ctx context.Context, snapshot *pricing.MarketSnapshot) error
}

// StaticMarketProvider keeps the snapshot in process memory.
type StaticMarketProvider struct {
	current atomic.Pointer[pricing.MarketSnapshot]
}

// NewStaticMarketProvider starts with initial, or the built-in snapshot when nil
func NewStaticMarketProvider(initial *pricing.MarketSnapshot) *StaticMarketProvider {
	if initial == nil {
		initial = pricing.DefaultMarketSnapshot()
	}
	p := &StaticMarketProvider{}
	p.current.Store(initial)
	return p
}

func (p *StaticMarketProvider) Current(ctx context.Context) (*pricing.MarketSnapshot, error) {
	return p.current.Load(), nil
}

func (p *StaticMarketProvider) Publish(ctx context.Context, snapshot *pricing.MarketSnapshot) error {
	if snapshot == nil {
		return errors.New("market snapshot is required")
	}
	p.current.Store(snapshot)
	return nil
}

// RedisMarketProvider shares the published snapshot between instances through
// Redis and falls back to a local snapshot until one is published.
type RedisMarketProvider struct {
	client   *redis.Client
	key      string
	fallback *pricing.MarketSnapshot
	logger   *zap.Logger
}

// NewRedisMarketProvider creates a provider reading prefix+MarketConditionsKey
func NewRedisMarketProvider(client *redis.Client, prefix string, fallback *pricing.MarketSnapshot, logger *zap.Logger) *RedisMarketProvider {
	if fallback == nil {
		fallback = pricing.DefaultMarketSnapshot()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMarketProvider{
		client:   client,
		key:      prefix + MarketConditionsKey,
		fallback: fallback,
		logger:   logger.Named("market_provider"),
	}
}

func (p *RedisMarketProvider) Current(ctx context.Context) (*pricing.MarketSnapshot, error) {
	raw, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return p.fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read market conditions: %w", err)
	}

	var rec pricing.SnapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode market conditions: %w", err)
	}
	snapshot, err := pricing.SnapshotFromRecord(rec)
	if err != nil {
		return nil, err
	}
	if rec.ID != "" && rec.ID != snapshot.ID() {
		p.logger.Warn("stored market snapshot id does not match its content",
			zap.String("stored_id", rec.ID), zap.String("content_id", snapshot.ID()))
	}
	return snapshot, nil
}

func (p *RedisMarketProvider) Publish(ctx context.Context, snapshot *pricing.MarketSnapshot) error {
	if snapshot == nil {
		return errors.New("market snapshot is required")
	}
	raw, err := json.Marshal(snapshot.Record())
	if err != nil {
		return fmt.Errorf("failed to encode market conditions: %w", err)
	}
	if err := p.client.Set(ctx, p.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store market conditions: %w", err)
	}
	p.logger.Info("market conditions published",
		zap.String("snapshot_id", snapshot.ID()), zap.Int("factors", snapshot.Len()))
	return nil
}
