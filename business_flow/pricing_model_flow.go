package businessflow

import (
	"context"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/pricing"
)

// PricingModelFlow exposes the loaded pricing models
type PricingModelFlow interface {
	ListModels(ctx context.Context) (*dto.ListPricingModelsResponse, error)
	GetModel(ctx context.Context, name string) (*dto.PricingModelDTO, error)
}

// PricingModelFlowImpl implements PricingModelFlow
type PricingModelFlowImpl struct {
	registry pricing.ModelRegistry
}

func NewPricingModelFlow(registry pricing.ModelRegistry) PricingModelFlow {
	return &PricingModelFlowImpl{registry: registry}
}

func (f *PricingModelFlowImpl) ListModels(ctx context.Context) (*dto.ListPricingModelsResponse, error) {
	names := f.registry.Names()
	out := &dto.ListPricingModelsResponse{Models: make([]dto.PricingModelDTO, 0, len(names))}
	for _, name := range names {
		m, err := f.registry.Get(name)
		if err != nil {
			return nil, fromPricingError(err)
		}
		out.Models = append(out.Models, m.Spec())
	}
	return out, nil
}

func (f *PricingModelFlowImpl) GetModel(ctx context.Context, name string) (*dto.PricingModelDTO, error) {
	m, err := f.registry.Get(name)
	if err != nil {
		return nil, fromPricingError(err)
	}
	spec := m.Spec()
	return &spec, nil
}
