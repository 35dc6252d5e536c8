package handlers

import (
	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ClientHandlerInterface defines the contract for client profile handlers
type ClientHandlerInterface interface {
	CreateClient(c fiber.Ctx) error
	GetClient(c fiber.Ctx) error
}

// ClientHandler implements ClientHandlerInterface
type ClientHandler struct {
	baseHandler
	flow businessflow.ClientProfileFlow
}

func NewClientHandler(flow businessflow.ClientProfileFlow, logger *zap.Logger) ClientHandlerInterface {
	return &ClientHandler{baseHandler: newBaseHandler(logger, "client_handler"), flow: flow}
}

// CreateClient stores a client profile and classifies its segment
// @Summary Create client profile
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body dto.CreateClientRequest true "Client profile"
// @Success 201 {object} dto.APIResponse{data=dto.ClientDTO} "Client created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clients [post]
func (h *ClientHandler) CreateClient(c fiber.Ctx) error {
	var req dto.CreateClientRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validationErrors(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/clients")
	defer cancel()

	client, err := h.flow.CreateClient(ctx, &req)
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to create client")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Client created", client)
}

// GetClient returns a stored client profile
// @Summary Get client profile
// @Tags Clients
// @Produce json
// @Param uuid path string true "Client UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ClientDTO} "Client"
// @Failure 404 {object} dto.APIResponse "Client not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/clients/{uuid} [get]
func (h *ClientHandler) GetClient(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/clients/:uuid")
	defer cancel()

	client, err := h.flow.GetClient(ctx, c.Params("uuid"))
	if err != nil {
		return h.FlowError(c, ctx, err, "Failed to get client")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Client retrieved", client)
}
