package handlers

import (
	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ROIHandlerInterface defines the contract for the ROI calculator handler
type ROIHandlerInterface interface {
	Project(c fiber.Ctx) error
}

// ROIHandler implements ROIHandlerInterface
type ROIHandler struct {
	baseHandler
	flow businessflow.ROIFlow
}

func NewROIHandler(flow businessflow.ROIFlow, logger *zap.Logger) ROIHandlerInterface {
	return &ROIHandler{baseHandler: newBaseHandler(logger, "roi_handler"), flow: flow}
}

// Project computes the projected return for a prospect
// @Summary ROI projection
// @Tags ROI
// @Accept json
// @Produce json
// @Param request body dto.ROIRequest true "Current support operation"
// @Success 200 {object} dto.APIResponse{data=dto.ROIResponse} "Projection"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/roi [post]
func (h *ROIHandler) Project(c fiber.Ctx) error {
	var req dto.ROIRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/roi")
	defer cancel()

	projection, err := h.flow.Project(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to project ROI")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "ROI projected", projection)
}
