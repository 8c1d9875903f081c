package rates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// FallbackConfig controls the legacy lookup-miss fallback. Disabled by
// default: a thickness outside every tier should fail loudly, not silently
// price at some historical constant.
type FallbackConfig struct {
	Enabled bool
	Rate    money.Money
}

// Service handles rate table management and serves assembled tables to the
// pricing paths.
type Service struct {
	repo     Repository
	cache    *TableCache
	fallback FallbackConfig
	currency string
}

// NewService builds a Service instance.
func NewService(repo Repository, cache *TableCache, fallback FallbackConfig, currency string) *Service {
	return &Service{repo: repo, cache: cache, fallback: fallback, currency: currency}
}

// Table assembles the rate table for one category, preferring the cache. The
// returned table has already passed the non-overlap check.
func (s *Service) Table(ctx context.Context, category pricing.Category) (pricing.RateTable, error) {
	var opts []pricing.TableOption
	if s.fallback.Enabled {
		opts = append(opts, pricing.WithFallbackRate(s.fallback.Rate))
	}

	if tiers, ok := s.cache.Get(ctx, category); ok {
		return pricing.NewRateTable(category, tiers, opts...)
	}

	stored, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("load tiers for %s: %w", category, err)
	}
	tiers := toPricingTiers(stored)
	table, err := pricing.NewRateTable(category, tiers, opts...)
	if err != nil {
		return pricing.RateTable{}, err
	}
	s.cache.Set(ctx, category, tiers)
	return table, nil
}

// Tables assembles tables for a set of categories, deduplicating the set.
func (s *Service) Tables(ctx context.Context, categories []pricing.Category) (pricing.TableSet, error) {
	set := make(pricing.TableSet, len(categories))
	for _, category := range categories {
		if _, ok := set[category]; ok {
			continue
		}
		table, err := s.Table(ctx, category)
		if err != nil {
			return nil, err
		}
		set[category] = table
	}
	return set, nil
}

// CreateTier adds a tier after checking it against the category's existing
// active tiers. Overlaps are rejected before anything is written.
func (s *Service) CreateTier(ctx context.Context, req CreateTierRequest) (*Tier, error) {
	tier, err := s.parseTier(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByCategory(ctx, tier.Category)
	if err != nil {
		return nil, fmt.Errorf("load tiers for %s: %w", tier.Category, err)
	}
	candidate := append(toPricingTiers(existing), tier.toPricing())
	if err := pricing.CheckTiers(candidate); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("create tier: %w", err)
	}
	tier.ID = id
	s.cache.Invalidate(ctx, tier.Category)
	return &tier, nil
}

// UpdateTier applies a partial update, re-running the overlap check against
// the tier's category with the updated values in place.
func (s *Service) UpdateTier(ctx context.Context, id int64, req UpdateTierRequest) (*Tier, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	updates := make(map[string]any)
	if req.MinThickness != nil {
		if next.MinThickness, err = decimal.NewFromString(*req.MinThickness); err != nil {
			return nil, fmt.Errorf("rates: invalid min thickness: %w", err)
		}
		updates["min_thickness"] = next.MinThickness.String()
	}
	if req.MaxThickness != nil {
		if next.MaxThickness, err = decimal.NewFromString(*req.MaxThickness); err != nil {
			return nil, fmt.Errorf("rates: invalid max thickness: %w", err)
		}
		updates["max_thickness"] = next.MaxThickness.String()
	}
	if req.Rate != nil {
		if next.Rate, err = money.NewFromString(*req.Rate, s.currency); err != nil {
			return nil, fmt.Errorf("rates: invalid rate: %w", err)
		}
		updates["rate"] = next.Rate.StringFixed()
	}
	if req.Active != nil {
		next.Active = *req.Active
		updates["active"] = *req.Active
	}

	existing, err := s.repo.ListByCategory(ctx, current.Category)
	if err != nil {
		return nil, fmt.Errorf("load tiers for %s: %w", current.Category, err)
	}
	candidate := make([]pricing.RateTier, 0, len(existing))
	for _, t := range existing {
		if t.ID == id {
			t = next
		}
		candidate = append(candidate, t.toPricing())
	}
	if err := pricing.CheckTiers(candidate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update tier: %w", err)
	}
	s.cache.Invalidate(ctx, current.Category)
	return s.repo.Get(ctx, id)
}

// List returns the tiers for one category.
func (s *Service) List(ctx context.Context, category pricing.Category) ([]Tier, error) {
	return s.repo.ListByCategory(ctx, category)
}

// Categories returns every category that has at least one tier.
func (s *Service) Categories(ctx context.Context) ([]pricing.Category, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) parseTier(req CreateTierRequest) (Tier, error) {
	min, err := decimal.NewFromString(req.MinThickness)
	if err != nil {
		return Tier{}, fmt.Errorf("rates: invalid min thickness: %w", err)
	}
	max, err := decimal.NewFromString(req.MaxThickness)
	if err != nil {
		return Tier{}, fmt.Errorf("rates: invalid max thickness: %w", err)
	}
	rate, err := money.NewFromString(req.Rate, s.currency)
	if err != nil {
		return Tier{}, fmt.Errorf("rates: invalid rate: %w", err)
	}
	return Tier{
		Category:     pricing.Category(req.Category),
		MinThickness: min,
		MaxThickness: max,
		Rate:         rate,
		Active:       true,
	}, nil
}
