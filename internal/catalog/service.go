package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// Service handles glass type business logic.
type Service struct {
	repo     Repository
	currency string
}

// NewService builds a Service instance.
func NewService(repo Repository, currency string) *Service {
	return &Service{repo: repo, currency: currency}
}

// Create registers a new glass type.
func (s *Service) Create(ctx context.Context, req CreateGlassRequest) (*Glass, error) {
	existing, err := s.repo.GetByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing glass type: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	thickness, err := decimal.NewFromString(req.ThicknessMM)
	if err != nil || !thickness.IsPositive() {
		return nil, fmt.Errorf("catalog: invalid thickness %q", req.ThicknessMM)
	}
	price, err := money.NewFromString(req.UnitPrice, s.currency)
	if err != nil {
		return nil, fmt.Errorf("catalog: invalid unit price: %w", err)
	}

	glass := Glass{
		Code:          req.Code,
		Name:          req.Name,
		ThicknessMM:   thickness,
		PricingMethod: pricing.GlassPricing(req.PricingMethod),
		UnitPrice:     price,
		IsActive:      true,
	}
	id, err := s.repo.Create(ctx, glass)
	if err != nil {
		return nil, fmt.Errorf("create glass type: %w", err)
	}
	glass.ID = id
	return &glass, nil
}

// Update applies a partial update. Thickness and pricing method are immutable
// after creation: existing invoice lines were priced against them.
func (s *Service) Update(ctx context.Context, id int64, req UpdateGlassRequest) (*Glass, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.UnitPrice != nil {
		price, err := money.NewFromString(*req.UnitPrice, s.currency)
		if err != nil {
			return nil, fmt.Errorf("catalog: invalid unit price: %w", err)
		}
		updates["unit_price"] = price.StringFixed()
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update glass type: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Get returns one glass type by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Glass, error) {
	return s.repo.Get(ctx, id)
}

// GetSellable returns a glass type that is still active, for use when pricing
// new lines. Historical invoices keep their snapshots regardless.
func (s *Service) GetSellable(ctx context.Context, id int64) (*Glass, error) {
	glass, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !glass.IsActive {
		return nil, ErrInactiveGlass
	}
	return glass, nil
}

// List returns glass types matching the filter.
func (s *Service) List(ctx context.Context, req ListGlassRequest) ([]Glass, error) {
	if req.Limit == 0 {
		req.Limit = 100
	}
	return s.repo.List(ctx, req)
}
