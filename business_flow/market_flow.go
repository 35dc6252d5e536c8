package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/app/services"
	"github.com/amirphl/dynamic-pricing/logging"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"go.uber.org/zap"
)

// MarketFlow reads and replaces the market conditions snapshot
type MarketFlow interface {
	Current(ctx context.Context) (*dto.MarketConditionsDTO, error)
	Publish(ctx context.Context, req *dto.PublishMarketConditionsRequest) (*dto.MarketConditionsDTO, error)
}

// MarketFlowImpl implements MarketFlow
type MarketFlowImpl struct {
	market services.MarketConditionsProvider
	logger *zap.Logger
}

func NewMarketFlow(market services.MarketConditionsProvider, logger *zap.Logger) MarketFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketFlowImpl{market: market, logger: logger.Named("market_flow")}
}

func (f *MarketFlowImpl) Current(ctx context.Context) (*dto.MarketConditionsDTO, error) {
	snapshot, err := f.market.Current(ctx)
	if err != nil {
		return nil, NewBusinessError("MARKET_CONDITIONS_UNAVAILABLE", "Market conditions are unavailable", fmt.Errorf("%w: %w", ErrMarketUnavailable, err))
	}
	out := ToMarketConditionsDTO(snapshot)
	return &out, nil
}

// Publish replaces the current snapshot. Quotes already issued keep the snapshot id
// they were priced with.
func (f *MarketFlowImpl) Publish(ctx context.Context, req *dto.PublishMarketConditionsRequest) (*dto.MarketConditionsDTO, error) {
	if req == nil || len(req.Factors) == 0 {
		return nil, NewBusinessError("MARKET_CONDITIONS_REQUIRED", "At least one market condition is required", ErrMarketConditionsRequired)
	}

	factors := make([]pricing.MarketFactor, len(req.Factors))
	for i, fd := range req.Factors {
		factors[i] = pricing.MarketFactor{Name: fd.Name, Multiplier: fd.Multiplier}
	}
	snapshot, err := pricing.NewMarketSnapshot(utils.UTCNow(), factors...)
	if err != nil {
		return nil, fromPricingError(err)
	}
	if err := f.market.Publish(ctx, snapshot); err != nil {
		return nil, NewBusinessError("MARKET_PUBLISH_FAILED", "Failed to publish market conditions", err)
	}

	logging.WithContext(ctx, f.logger).Info("market conditions published",
		zap.String("snapshot_id", snapshot.ID()),
		zap.Int("factors", snapshot.Len()),
	)
	out := ToMarketConditionsDTO(snapshot)
	return &out, nil
}
