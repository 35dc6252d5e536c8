package handlers

import (
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// PricingModelHandlerInterface defines the contract for pricing model handlers
type PricingModelHandlerInterface interface {
	ListModels(c fiber.Ctx) error
	GetModel(c fiber.Ctx) error
}

// PricingModelHandler implements PricingModelHandlerInterface
type PricingModelHandler struct {
	baseHandler
	flow businessflow.PricingModelFlow
}

func NewPricingModelHandler(flow businessflow.PricingModelFlow, logger *zap.Logger) PricingModelHandlerInterface {
	return &PricingModelHandler{baseHandler: newBaseHandler(logger, "pricing_model_handler"), flow: flow}
}

// ListModels lists the loaded pricing models
// @Summary List pricing models
// @Tags Pricing Models
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListPricingModelsResponse} "Pricing models"
// @Router /api/v1/pricing-models [get]
func (h *PricingModelHandler) ListModels(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/pricing-models")
	defer cancel()

	resp, err := h.flow.ListModels(ctx)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to list pricing models")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Pricing models retrieved", resp)
}

// GetModel returns one pricing model with its tables
// @Summary Get pricing model
// @Tags Pricing Models
// @Produce json
// @Param name path string true "Model name"
// @Success 200 {object} dto.APIResponse{data=dto.PricingModelDTO} "Pricing model"
// @Failure 404 {object} dto.APIResponse "Pricing model not found"
// @Router /api/v1/pricing-models/{name} [get]
func (h *PricingModelHandler) GetModel(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/pricing-models/:name")
	defer cancel()

	model, err := h.flow.GetModel(ctx, c.Params("name"))
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to get pricing model")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Pricing model retrieved", model)
}
