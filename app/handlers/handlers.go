// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/dynamic-pricing/app/dto"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/amirphl/dynamic-pricing/logging"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// baseHandler carries what every handler needs: request validation, the
// response envelope and request-scoped context
type baseHandler struct {
	validator *validator.Validate
	logger    *zap.Logger
}

func newBaseHandler(logger *zap.Logger, name string) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{validator: validator.New(), logger: logger.Named(name)}
}

// ErrorResponse standard JSON error
func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validationErrors returns one message per failed field, or nil when req is valid
func (h *baseHandler) validationErrors(req any) []string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, getValidationErrorMessage(fe))
	}
	return out
}

// FlowError maps a business flow error to an HTTP response
func (h *baseHandler) FlowError(c fiber.Ctx, ctx context.Context, err error, fallback string) error {
	status := statusFor(err)
	code := businessflow.ErrorCode(err)
	message := fallback

	var be *businessflow.BusinessError
	if errors.As(err, &be) && status < fiber.StatusInternalServerError {
		message = be.Message
	}
	if status >= fiber.StatusInternalServerError {
		logging.WithContext(ctx, h.logger).Error(fallback, zap.String("code", code), zap.Error(err))
		if code == "" {
			code = "INTERNAL_ERROR"
		}
	}
	return h.ErrorResponse(c, status, message, code, nil)
}

func statusFor(err error) int {
	switch {
	case businessflow.IsClientNotFound(err),
		businessflow.IsPricingModelNotFound(err),
		businessflow.IsQuoteNotFound(err):
		return fiber.StatusNotFound
	case businessflow.IsPricingValidation(err),
		businessflow.IsInvalidDateRange(err),
		errors.Is(err, businessflow.ErrInvalidQuoteStatus),
		errors.Is(err, businessflow.ErrMarketConditionsRequired):
		return fiber.StatusBadRequest
	case businessflow.IsInvalidStatusTransition(err),
		businessflow.IsQuoteNotExpired(err):
		return fiber.StatusConflict
	case businessflow.IsAdminNotFound(err),
		businessflow.IsIncorrectPassword(err):
		return fiber.StatusUnauthorized
	case businessflow.IsAdminInactive(err):
		return fiber.StatusForbidden
	case businessflow.IsMarketUnavailable(err):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// createRequestContext builds the request-scoped context handed to flows. The
// caller must call the returned cancel func.
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, requestTimeout)
	if adminID, ok := c.Locals("admin_id").(uint); ok {
		ctx = context.WithValue(ctx, utils.AdminIDKey, adminID)
	}
	return ctx, cancel
}

func (h *baseHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))
	return metadata
}

func requestID(c fiber.Ctx) string {
	if id := requestid.FromContext(c); id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid":
		return err.Field() + " must be a UUID"
	case "datetime":
		return err.Field() + " must be a date formatted as " + err.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
