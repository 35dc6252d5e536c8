package handlers

import (
	"strconv"

	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// QuoteHandlerInterface defines the contract for quote handlers
type QuoteHandlerInterface interface {
	CreateQuote(c fiber.Ctx) error
	PreviewQuote(c fiber.Ctx) error
	GetQuote(c fiber.Ctx) error
	ListQuotes(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	History(c fiber.Ctx) error
	ExpireDue(c fiber.Ctx) error
}

// QuoteHandler implements QuoteHandlerInterface
type QuoteHandler struct {
	baseHandler
	flow businessflow.QuoteFlow
}

func NewQuoteHandler(flow businessflow.QuoteFlow, logger *zap.Logger) QuoteHandlerInterface {
	return &QuoteHandler{baseHandler: newBaseHandler(logger, "quote_handler"), flow: flow}
}

// CreateQuote calculates and stores a quote for a stored client
// @Summary Calculate quote
// @Description Price a stored client with a pricing model under the current market conditions and store a draft quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuoteRequest true "Quote request"
// @Success 201 {object} dto.APIResponse{data=dto.QuoteDTO} "Quote created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Client or pricing model not found"
// @Failure 503 {object} dto.APIResponse "Market conditions unavailable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c fiber.Ctx) error {
	var req dto.CreateQuoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes")
	defer cancel()

	quote, err := h.flow.CalculateQuote(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.FlowError(c, ctx, err, "Quote calculation failed")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Quote created", quote)
}

// PreviewQuote prices an inline client profile without storing anything
// @Summary Preview quote
// @Description Price an inline client profile; nothing is stored
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.PreviewQuoteRequest true "Preview request"
// @Success 200 {object} dto.APIResponse{data=dto.QuotePreviewDTO} "Quote preview"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Pricing model not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/quotes/preview [post]
func (h *QuoteHandler) PreviewQuote(c fiber.Ctx) error {
	var req dto.PreviewQuoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/preview")
	defer cancel()

	preview, err := h.flow.PreviewQuote(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Quote preview failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Quote preview", preview)
}

// GetQuote returns one quote with its audit verification
// @Summary Get quote
// @Description Get a quote; a quote whose validity has ended is expired first. verified reports whether the factor log reproduces the stored price
// @Tags Quotes
// @Produce json
// @Param uuid path string true "Quote UUID"
// @Success 200 {object} dto.APIResponse{data=dto.QuoteDTO} "Quote"
// @Failure 404 {object} dto.APIResponse "Quote not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/quotes/{uuid} [get]
func (h *QuoteHandler) GetQuote(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:uuid")
	defer cancel()

	quote, err := h.flow.GetQuote(ctx, c.Params("uuid"), h.clientMetadata(c))
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to get quote")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Quote retrieved", quote)
}

// ListQuotes lists quotes, newest first
// @Summary List quotes
// @Tags Quotes
// @Produce json
// @Param client_id query string false "Client UUID"
// @Param status query string false "Quote status" Enums(draft, sent, accepted, declined, expired)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListQuotesResponse} "Quotes"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c fiber.Ctx) error {
	req := dto.ListQuotesRequest{
		ClientID: c.Query("client_id"),
		Status:   c.Query("status"),
	}
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit", "20")); err == nil && v > 0 {
		req.Limit = min(v, 100)
	}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes")
	defer cancel()

	resp, err := h.flow.ListQuotes(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to list quotes")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Quotes retrieved", resp)
}

// UpdateStatus moves a quote along its lifecycle
// @Summary Update quote status
// @Description draft->sent, sent->accepted|declined, sent|accepted|declined->expired once the validity has ended
// @Tags Quotes
// @Accept json
// @Produce json
// @Param uuid path string true "Quote UUID"
// @Param request body dto.UpdateQuoteStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.QuoteDTO} "Status updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Quote not found"
// @Failure 409 {object} dto.APIResponse "Transition not allowed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/quotes/{uuid}/status [patch]
func (h *QuoteHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateQuoteStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:uuid/status")
	defer cancel()

	quote, err := h.flow.TransitionStatus(ctx, c.Params("uuid"), &req, h.clientMetadata(c))
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to update quote status")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Quote status updated", quote)
}

// History returns the status changes of a quote
// @Summary Quote status history
// @Tags Quotes
// @Produce json
// @Param uuid path string true "Quote UUID"
// @Success 200 {object} dto.APIResponse{data=[]dto.QuoteStatusEventDTO} "History"
// @Failure 404 {object} dto.APIResponse "Quote not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/quotes/{uuid}/history [get]
func (h *QuoteHandler) History(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:uuid/history")
	defer cancel()

	events, err := h.flow.History(ctx, c.Params("uuid"))
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to load quote history")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Quote history retrieved", events)
}

// ExpireDue runs the expiry sweep now
// @Summary Expire due quotes
// @Tags Admin Quotes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ExpireQuotesResponse} "Sweep finished"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/quotes/expire [post]
func (h *QuoteHandler) ExpireDue(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/quotes/expire")
	defer cancel()

	n, err := h.flow.ExpireDue(ctx, models.QuoteEventActorAPI)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to expire quotes")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Due quotes expired", dto.ExpireQuotesResponse{Expired: n})
}
