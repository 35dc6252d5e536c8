package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/app/services"
	"github.com/amirphl/dynamic-pricing/logging"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/repository"
	"github.com/amirphl/dynamic-pricing/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteFlow handles quote calculation and the quote lifecycle
type QuoteFlow interface {
	CalculateQuote(ctx context.Context, req *dto.CreateQuoteRequest, metadata *ClientMetadata) (*dto.QuoteDTO, error)
	PreviewQuote(ctx context.Context, req *dto.PreviewQuoteRequest) (*dto.QuotePreviewDTO, error)
	GetQuote(ctx context.Context, quoteUUID string, metadata *ClientMetadata) (*dto.QuoteDTO, error)
	ListQuotes(ctx context.Context, req *dto.ListQuotesRequest) (*dto.ListQuotesResponse, error)
	TransitionStatus(ctx context.Context, quoteUUID string, req *dto.UpdateQuoteStatusRequest, metadata *ClientMetadata) (*dto.QuoteDTO, error)
	History(ctx context.Context, quoteUUID string) ([]dto.QuoteStatusEventDTO, error)
	ExpireDue(ctx context.Context, actor string) (int, error)
}

// QuoteFlowImpl implements QuoteFlow
type QuoteFlowImpl struct {
	clientRepo repository.ClientProfileRepository
	quoteRepo  repository.PriceQuoteRepository
	eventRepo  repository.QuoteStatusEventRepository
	calculator *pricing.Calculator
	market     services.MarketConditionsProvider
	assembler  *QuoteAssembler
	withTx     txRunner
	logger     *zap.Logger
}

// NewQuoteFlow creates a quote flow. db may be nil when the repositories are not
// database backed.
func NewQuoteFlow(
	clientRepo repository.ClientProfileRepository,
	quoteRepo repository.PriceQuoteRepository,
	eventRepo repository.QuoteStatusEventRepository,
	calculator *pricing.Calculator,
	market services.MarketConditionsProvider,
	assembler *QuoteAssembler,
	db *gorm.DB,
	logger *zap.Logger,
) QuoteFlow {
	if assembler == nil {
		assembler = NewQuoteAssembler(utils.QuoteValidity)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteFlowImpl{
		clientRepo: clientRepo,
		quoteRepo:  quoteRepo,
		eventRepo:  eventRepo,
		calculator: calculator,
		market:     market,
		assembler:  assembler,
		withTx:     newTxRunner(db),
		logger:     logger.Named("quote_flow"),
	}
}

// CalculateQuote prices a stored client with the named model under the current
// market snapshot and stores the result as a draft quote.
func (f *QuoteFlowImpl) CalculateQuote(ctx context.Context, req *dto.CreateQuoteRequest, metadata *ClientMetadata) (*dto.QuoteDTO, error) {
	quote, err := f.calculateQuote(ctx, req)
	if err != nil {
		quoteFailures.WithLabelValues(ErrorCode(err)).Inc()
		return nil, err
	}

	quotesCreated.WithLabelValues(quote.PricingModel, string(quote.Segment)).Inc()
	quoteFinalPrice.WithLabelValues(quote.PricingModel).Observe(quote.CalculatedPrice.InexactFloat64())
	logging.WithContext(ctx, f.logger).Info("quote created",
		zap.String("quote_id", quote.UUID.String()),
		zap.String("client_id", quote.ClientUUID.String()),
		zap.String("model", quote.PricingModel),
		zap.String("price", quote.CalculatedPrice.String()),
		zap.String("snapshot_id", quote.MarketSnapshotID),
	)

	out := ToQuoteDTO(*quote)
	return &out, nil
}

func (f *QuoteFlowImpl) calculateQuote(ctx context.Context, req *dto.CreateQuoteRequest) (*models.PriceQuote, error) {
	if req == nil {
		return nil, NewBusinessError("PRICING_VALIDATION_FAILED", "Quote request is required", ErrPricingValidation)
	}

	client, err := f.clientRepo.ByUUID(ctx, req.ClientID)
	if err != nil {
		return nil, NewBusinessError("CLIENT_LOOKUP_FAILED", "Failed to lookup client", err)
	}
	if client == nil {
		return nil, fromPricingError(&pricing.NotFoundError{Kind: pricing.NotFoundClient, Key: req.ClientID})
	}

	snapshot, err := f.market.Current(ctx)
	if err != nil {
		return nil, NewBusinessError("MARKET_CONDITIONS_UNAVAILABLE", "Market conditions are unavailable", fmt.Errorf("%w: %w", ErrMarketUnavailable, err))
	}

	res, err := f.calculator.Quote(client.ToPricing(), req.PricingModel, snapshot, req.PremiumFlags)
	if err != nil {
		return nil, fromPricingError(err)
	}

	quote := f.assembler.Assemble(client, req.ProductService, res)
	if err := f.quoteRepo.Save(ctx, quote); err != nil {
		return nil, NewBusinessError("QUOTE_SAVE_FAILED", "Failed to save quote", err)
	}
	return quote, nil
}

// PreviewQuote prices an inline profile without storing anything
func (f *QuoteFlowImpl) PreviewQuote(ctx context.Context, req *dto.PreviewQuoteRequest) (*dto.QuotePreviewDTO, error) {
	if req == nil {
		return nil, NewBusinessError("PRICING_VALIDATION_FAILED", "Preview request is required", ErrPricingValidation)
	}

	profile, err := ToPricingProfile(req.Client)
	if err != nil {
		return nil, fromPricingError(err)
	}
	snapshot, err := f.market.Current(ctx)
	if err != nil {
		return nil, NewBusinessError("MARKET_CONDITIONS_UNAVAILABLE", "Market conditions are unavailable", fmt.Errorf("%w: %w", ErrMarketUnavailable, err))
	}
	res, err := f.calculator.Quote(profile, req.PricingModel, snapshot, req.PremiumFlags)
	if err != nil {
		return nil, fromPricingError(err)
	}

	return &dto.QuotePreviewDTO{
		PricingModel:       res.ModelName,
		Segment:            string(res.Segment),
		BasePrice:          res.BasePrice,
		PreRoundingPrice:   res.PreRoundingPrice,
		CalculatedPrice:    money(res.FinalPrice).InexactFloat64(),
		DiscountPercentage: money(res.DiscountPercentage).InexactFloat64(),
		PremiumMultiplier:  res.PremiumMultiplier,
		FactorsApplied:     ToFactorDTOs(res.Factors),
		MarketSnapshotID:   res.SnapshotID,
	}, nil
}

// GetQuote returns a quote, expiring it first when its validity has ended, and
// reports whether its factor log reproduces the stored price.
func (f *QuoteFlowImpl) GetQuote(ctx context.Context, quoteUUID string, metadata *ClientMetadata) (*dto.QuoteDTO, error) {
	quote, err := f.lookupQuote(ctx, quoteUUID)
	if err != nil {
		return nil, err
	}

	if quote.IsDue(f.assembler.Now()) {
		expired, err := f.transition(ctx, quoteUUID, models.QuoteStatusExpired, models.QuoteEventActorReader, nil, metadata)
		switch {
		case err == nil:
			quote = expired
		case IsInvalidStatusTransition(err) || IsQuoteNotExpired(err):
			// another caller moved it first
			if quote, err = f.lookupQuote(ctx, quoteUUID); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	out := ToQuoteDTO(*quote)
	out.Verified = utils.ToPtr(quote.Verify())
	return &out, nil
}

func (f *QuoteFlowImpl) lookupQuote(ctx context.Context, quoteUUID string) (*models.PriceQuote, error) {
	if _, err := utils.ParseUUID(quoteUUID); err != nil {
		return nil, NewBusinessError("QUOTE_NOT_FOUND", "Quote not found", fmt.Errorf("%w: %w", ErrQuoteNotFound, err))
	}
	quote, err := f.quoteRepo.ByUUID(ctx, quoteUUID)
	if err != nil {
		return nil, NewBusinessError("QUOTE_LOOKUP_FAILED", "Failed to lookup quote", err)
	}
	if quote == nil {
		return nil, NewBusinessError("QUOTE_NOT_FOUND", "Quote not found", ErrQuoteNotFound)
	}
	return quote, nil
}

// ListQuotes returns one page of quotes, newest first
func (f *QuoteFlowImpl) ListQuotes(ctx context.Context, req *dto.ListQuotesRequest) (*dto.ListQuotesResponse, error) {
	if req == nil {
		req = &dto.ListQuotesRequest{}
	}

	filter := models.PriceQuoteFilter{}
	if req.ClientID != "" {
		id, err := utils.ParseUUID(req.ClientID)
		if err != nil {
			return nil, NewBusinessError("PRICING_VALIDATION_FAILED", "Invalid client id", fmt.Errorf("%w: %w", ErrPricingValidation, err))
		}
		filter.ClientUUID = &id
	}
	if req.Status != "" {
		status := models.QuoteStatus(req.Status)
		if !status.Valid() {
			return nil, NewBusinessErrorf("INVALID_QUOTE_STATUS", "Unknown quote status %s", ErrInvalidQuoteStatus, req.Status)
		}
		filter.Status = &status
	}

	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = utils.DefaultPageSize
	}
	if limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}

	total, err := f.quoteRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("QUOTE_LIST_FAILED", "Failed to count quotes", err)
	}
	quotes, err := f.quoteRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("QUOTE_LIST_FAILED", "Failed to list quotes", err)
	}

	out := &dto.ListQuotesResponse{
		Quotes: make([]dto.QuoteDTO, 0, len(quotes)),
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}
	for _, q := range quotes {
		out.Quotes = append(out.Quotes, ToQuoteDTO(*q))
	}
	return out, nil
}

// TransitionStatus moves a quote along the status machine
func (f *QuoteFlowImpl) TransitionStatus(ctx context.Context, quoteUUID string, req *dto.UpdateQuoteStatusRequest, metadata *ClientMetadata) (*dto.QuoteDTO, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_QUOTE_STATUS", "Status is required", ErrInvalidQuoteStatus)
	}
	to := models.QuoteStatus(req.Status)
	if !to.Valid() {
		return nil, NewBusinessErrorf("INVALID_QUOTE_STATUS", "Unknown quote status %s", ErrInvalidQuoteStatus, req.Status)
	}
	if _, err := utils.ParseUUID(quoteUUID); err != nil {
		return nil, NewBusinessError("QUOTE_NOT_FOUND", "Quote not found", fmt.Errorf("%w: %w", ErrQuoteNotFound, err))
	}

	var note *string
	if req.Note != "" {
		note = utils.ToPtr(req.Note)
	}
	quote, err := f.transition(ctx, quoteUUID, to, models.QuoteEventActorAPI, note, metadata)
	if err != nil {
		return nil, err
	}

	out := ToQuoteDTO(*quote)
	return &out, nil
}

// transition applies one status change under a row lock and records it
func (f *QuoteFlowImpl) transition(ctx context.Context, quoteUUID string, to models.QuoteStatus, actor string, note *string, metadata *ClientMetadata) (*models.PriceQuote, error) {
	now := f.assembler.Now()
	var updated *models.PriceQuote

	err := f.withTx(ctx, func(txCtx context.Context) error {
		quote, err := f.quoteRepo.ByUUIDForUpdate(txCtx, quoteUUID)
		if err != nil {
			return NewBusinessError("QUOTE_LOOKUP_FAILED", "Failed to lookup quote", err)
		}
		if quote == nil {
			return NewBusinessError("QUOTE_NOT_FOUND", "Quote not found", ErrQuoteNotFound)
		}

		from := quote.Status
		if !from.CanTransitionTo(to) {
			return NewBusinessErrorf("INVALID_STATUS_TRANSITION", "Cannot move quote from %s to %s", ErrInvalidStatusTransition, from, to)
		}
		if to == models.QuoteStatusExpired && !now.After(quote.ValidUntil) {
			return NewBusinessErrorf("QUOTE_NOT_EXPIRED", "Quote is valid until %s", ErrQuoteNotExpired, quote.ValidUntil.UTC().Format(time.RFC3339))
		}
		if to != models.QuoteStatusExpired && quote.IsDue(now) {
			return NewBusinessErrorf("INVALID_STATUS_TRANSITION", "Quote validity ended at %s", fmt.Errorf("%w: %w", ErrInvalidStatusTransition, ErrQuoteValidityEnded), quote.ValidUntil.UTC().Format(time.RFC3339))
		}

		applied, err := f.quoteRepo.UpdateStatus(txCtx, quote.ID, to, now)
		if err != nil {
			return NewBusinessError("QUOTE_STATUS_UPDATE_FAILED", "Failed to update quote status", err)
		}
		if !applied {
			return NewBusinessError("INVALID_STATUS_TRANSITION", "Quote status changed concurrently", fmt.Errorf("%w: %w", ErrInvalidStatusTransition, ErrConcurrentStatusChange))
		}

		event := &models.QuoteStatusEvent{
			QuoteID:    quote.ID,
			FromStatus: from,
			ToStatus:   to,
			Actor:      actor,
			RequestID:  metadata.requestID(),
			Note:       note,
			CreatedAt:  now,
		}
		if err := f.eventRepo.Save(txCtx, event); err != nil {
			return NewBusinessError("QUOTE_EVENT_SAVE_FAILED", "Failed to record status change", err)
		}

		quote.Status = to
		quote.UpdatedAt = &now
		updated = quote
		return nil
	})
	if err != nil {
		return nil, err
	}

	quoteTransitions.WithLabelValues(string(to), actor).Inc()
	logging.WithContext(ctx, f.logger).Info("quote status changed",
		zap.String("quote_id", quoteUUID),
		zap.String("to", string(to)),
		zap.String("actor", actor),
	)
	return updated, nil
}

// History returns the status changes of a quote, oldest first
func (f *QuoteFlowImpl) History(ctx context.Context, quoteUUID string) ([]dto.QuoteStatusEventDTO, error) {
	quote, err := f.lookupQuote(ctx, quoteUUID)
	if err != nil {
		return nil, err
	}
	events, err := f.eventRepo.ListByQuoteID(ctx, quote.ID)
	if err != nil {
		return nil, NewBusinessError("QUOTE_HISTORY_FAILED", "Failed to load quote history", err)
	}

	out := make([]dto.QuoteStatusEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, ToQuoteStatusEventDTO(*e))
	}
	return out, nil
}

// ExpireDue expires every quote whose validity has ended and records one status
// event per quote
func (f *QuoteFlowImpl) ExpireDue(ctx context.Context, actor string) (int, error) {
	now := f.assembler.Now()
	var count int

	err := f.withTx(ctx, func(txCtx context.Context) error {
		expired, err := f.quoteRepo.ExpireDue(txCtx, now)
		if err != nil {
			return NewBusinessError("QUOTE_EXPIRY_FAILED", "Failed to expire quotes", err)
		}
		if len(expired) == 0 {
			return nil
		}

		requestID := utils.RequestIDFrom(ctx)
		events := make([]*models.QuoteStatusEvent, 0, len(expired))
		for _, e := range expired {
			event := &models.QuoteStatusEvent{
				QuoteID:    e.ID,
				FromStatus: e.FromStatus,
				ToStatus:   models.QuoteStatusExpired,
				Actor:      actor,
				CreatedAt:  now,
			}
			if requestID != "" {
				event.RequestID = utils.ToPtr(requestID)
			}
			events = append(events, event)
		}
		if err := f.eventRepo.SaveBatch(txCtx, events); err != nil {
			return NewBusinessError("QUOTE_EVENT_SAVE_FAILED", "Failed to record expiries", err)
		}
		count = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		quoteTransitions.WithLabelValues(string(models.QuoteStatusExpired), actor).Add(float64(count))
		logging.WithContext(ctx, f.logger).Info("expired due quotes", zap.Int("count", count), zap.String("actor", actor))
	}
	return count, nil
}
