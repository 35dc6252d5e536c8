// Package businessflow contains the use cases of the pricing service: client
// onboarding, quoting, quote lifecycle, reports and admin authentication
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/dynamic-pricing/pricing"
)

// Business flow error constants
var (
	// Pricing errors
	ErrClientNotFound       = errors.New("client not found")
	ErrPricingModelNotFound = errors.New("pricing model not found")
	ErrPricingValidation    = errors.New("pricing validation failed")
	ErrMarketUnavailable    = errors.New("market conditions unavailable")

	// Quote lifecycle errors
	ErrQuoteNotFound            = errors.New("quote not found")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")
	ErrQuoteNotExpired          = errors.New("quote validity has not ended")
	ErrQuoteValidityEnded       = errors.New("quote validity has ended")
	ErrInvalidQuoteStatus       = errors.New("invalid quote status")
	ErrConcurrentStatusChange   = errors.New("quote status changed concurrently")
	ErrInvalidDateRange         = errors.New("invalid date range")
	ErrMarketConditionsRequired = errors.New("at least one market condition is required")

	// Admin errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// fromPricingError wraps a pricing package error into a business error keeping
// both the flow sentinel and the original typed error reachable.
func fromPricingError(err error) *BusinessError {
	var nf *pricing.NotFoundError
	var ve *pricing.ValidationError
	switch {
	case errors.As(err, &nf) && nf.Kind == pricing.NotFoundClient:
		return NewBusinessErrorf("CLIENT_NOT_FOUND", "Client %s not found", fmt.Errorf("%w: %w", ErrClientNotFound, err), nf.Key)
	case errors.As(err, &nf) && nf.Kind == pricing.NotFoundModel:
		return NewBusinessErrorf("PRICING_MODEL_NOT_FOUND", "Pricing model %s not found", fmt.Errorf("%w: %w", ErrPricingModelNotFound, err), nf.Key)
	case errors.As(err, &ve):
		return NewBusinessErrorf("PRICING_VALIDATION_FAILED", "Invalid %s: %s", fmt.Errorf("%w: %w", ErrPricingValidation, err), ve.Field, ve.Reason)
	default:
		return NewBusinessError("PRICING_FAILED", "Failed to calculate price", err)
	}
}

// ErrorCode returns the code of the outermost BusinessError in err's chain, or "".
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsClientNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound)
}

func IsPricingModelNotFound(err error) bool {
	return errors.Is(err, ErrPricingModelNotFound)
}

func IsPricingValidation(err error) bool {
	return errors.Is(err, ErrPricingValidation)
}

func IsMarketUnavailable(err error) bool {
	return errors.Is(err, ErrMarketUnavailable)
}

func IsQuoteNotFound(err error) bool {
	return errors.Is(err, ErrQuoteNotFound)
}

func IsInvalidStatusTransition(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition)
}

func IsQuoteNotExpired(err error) bool {
	return errors.Is(err, ErrQuoteNotExpired)
}

func IsInvalidDateRange(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}
