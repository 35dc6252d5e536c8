package handlers

import (
	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// MarketHandlerInterface defines the contract for market conditions handlers
type MarketHandlerInterface interface {
	Current(c fiber.Ctx) error
	Publish(c fiber.Ctx) error
}

// MarketHandler implements MarketHandlerInterface
type MarketHandler struct {
	baseHandler
	flow businessflow.MarketFlow
}

func NewMarketHandler(flow businessflow.MarketFlow, logger *zap.Logger) MarketHandlerInterface {
	return &MarketHandler{baseHandler: newBaseHandler(logger, "market_handler"), flow: flow}
}

// Current returns the market conditions new quotes are priced with
// @Summary Current market conditions
// @Tags Market Conditions
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.MarketConditionsDTO} "Market conditions"
// @Failure 503 {object} dto.APIResponse "Market conditions unavailable"
// @Router /api/v1/market-conditions [get]
func (h *MarketHandler) Current(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/market-conditions")
	defer cancel()

	snapshot, err := h.flow.Current(ctx)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to read market conditions")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Market conditions retrieved", snapshot)
}

// Publish replaces the market conditions
// @Summary Publish market conditions
// @Description Replace the market snapshot. Factors are applied in the given order
// @Tags Admin Market Conditions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PublishMarketConditionsRequest true "Market factors"
// @Success 200 {object} dto.APIResponse{data=dto.MarketConditionsDTO} "Published"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/market-conditions [put]
func (h *MarketHandler) Publish(c fiber.Ctx) error {
	var req dto.PublishMarketConditionsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/market-conditions")
	defer cancel()

	snapshot, err := h.flow.Publish(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to publish market conditions")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Market conditions published", snapshot)
}
