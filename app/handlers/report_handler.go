package handlers

import (
	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ReportHandlerInterface defines the contract for admin report handlers
type ReportHandlerInterface interface {
	PricingReport(c fiber.Ctx) error
	ExportQuotes(c fiber.Ctx) error
	OptimizationReport(c fiber.Ctx) error
}

// ReportHandler implements ReportHandlerInterface
type ReportHandler struct {
	baseHandler
	flow businessflow.PricingReportFlow
}

func NewReportHandler(flow businessflow.PricingReportFlow, logger *zap.Logger) ReportHandlerInterface {
	return &ReportHandler{baseHandler: newBaseHandler(logger, "report_handler"), flow: flow}
}

// PricingReport summarises quotes created in a date range
// @Summary Pricing report
// @Tags Admin Reports
// @Produce json
// @Security BearerAuth
// @Param start query string true "Start date (YYYY-MM-DD, inclusive)"
// @Param end query string true "End date (YYYY-MM-DD, exclusive)"
// @Success 200 {object} dto.APIResponse{data=dto.PricingReportDTO} "Report"
// @Failure 400 {object} dto.APIResponse "Invalid date range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/reports/pricing [get]
func (h *ReportHandler) PricingReport(c fiber.Ctx) error {
	req := dto.ReportRangeRequest{Start: c.Query("start"), End: c.Query("end")}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/reports/pricing")
	defer cancel()

	report, err := h.flow.PricingReport(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to build pricing report")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Pricing report", report)
}

// ExportQuotes downloads quotes created in a date range as an Excel workbook
// @Summary Export quotes (Excel)
// @Tags Admin Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start query string true "Start date (YYYY-MM-DD, inclusive)"
// @Param end query string true "End date (YYYY-MM-DD, exclusive)"
// @Success 200 {string} string "Excel file"
// @Failure 400 {object} dto.APIResponse "Invalid date range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/reports/pricing/export [get]
func (h *ReportHandler) ExportQuotes(c fiber.Ctx) error {
	req := dto.ReportRangeRequest{Start: c.Query("start"), End: c.Query("end")}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/reports/pricing/export")
	defer cancel()

	filename, data, err := h.flow.ExportQuotes(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to export quotes")
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// OptimizationReport reports conversion per price range for one model
// @Summary Price optimization report
// @Tags Admin Reports
// @Produce json
// @Security BearerAuth
// @Param model query string true "Pricing model name"
// @Param start query string true "Start date (YYYY-MM-DD, inclusive)"
// @Param end query string true "End date (YYYY-MM-DD, exclusive)"
// @Success 200 {object} dto.APIResponse{data=dto.OptimizationReportDTO} "Report"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/reports/optimization [get]
func (h *ReportHandler) OptimizationReport(c fiber.Ctx) error {
	req := dto.OptimizationReportRequest{Model: c.Query("model"), Start: c.Query("start"), End: c.Query("end")}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/reports/optimization")
	defer cancel()

	report, err := h.flow.OptimizationReport(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to build optimization report")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Optimization report", report)
}
