package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/logging"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/repository"
	"github.com/amirphl/dynamic-pricing/utils"
	"go.uber.org/zap"
)

// ClientProfileFlow handles client onboarding
type ClientProfileFlow interface {
	CreateClient(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientDTO, error)
	GetClient(ctx context.Context, clientUUID string) (*dto.ClientDTO, error)
}

// ClientProfileFlowImpl implements ClientProfileFlow
type ClientProfileFlowImpl struct {
	clientRepo repository.ClientProfileRepository
	logger     *zap.Logger
}

func NewClientProfileFlow(clientRepo repository.ClientProfileRepository, logger *zap.Logger) ClientProfileFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientProfileFlowImpl{clientRepo: clientRepo, logger: logger.Named("client_flow")}
}

// CreateClient validates the profile, classifies its segment once and stores it
func (f *ClientProfileFlowImpl) CreateClient(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientDTO, error) {
	if req == nil {
		return nil, NewBusinessError("PRICING_VALIDATION_FAILED", "Client profile is required", ErrPricingValidation)
	}

	profile, err := ToPricingProfile(*req)
	if err != nil {
		return nil, fromPricingError(err)
	}

	client := models.ClientProfileFromPricing(profile)
	if err := f.clientRepo.Save(ctx, client); err != nil {
		return nil, NewBusinessError("CLIENT_SAVE_FAILED", "Failed to save client profile", err)
	}

	logging.WithContext(ctx, f.logger).Info("client created",
		zap.String("client_id", client.UUID.String()),
		zap.String("segment", string(client.Segment)),
	)
	out := ToClientDTO(*client)
	return &out, nil
}

func (f *ClientProfileFlowImpl) GetClient(ctx context.Context, clientUUID string) (*dto.ClientDTO, error) {
	if _, err := utils.ParseUUID(clientUUID); err != nil {
		return nil, NewBusinessErrorf("CLIENT_NOT_FOUND", "Client %s not found", fmt.Errorf("%w: %w", ErrClientNotFound, err), clientUUID)
	}
	client, err := f.clientRepo.ByUUID(ctx, clientUUID)
	if err != nil {
		return nil, NewBusinessError("CLIENT_LOOKUP_FAILED", "Failed to lookup client", err)
	}
	if client == nil {
		return nil, NewBusinessErrorf("CLIENT_NOT_FOUND", "Client %s not found", ErrClientNotFound, clientUUID)
	}
	out := ToClientDTO(*client)
	return &out, nil
}
