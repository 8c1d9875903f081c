// Package rates manages the thickness-tier rate tables the pricing engine
// consumes. Every write re-validates the non-overlap invariant before it
// commits, so a table read from storage is always safe to look up against.
package rates

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

var (
	ErrNotFound = errors.New("rates: tier not found")
)

// Tier is one stored thickness-range rate for a category.
type Tier struct {
	ID           int64
	Category     pricing.Category
	MinThickness decimal.Decimal
	MaxThickness decimal.Decimal
	Rate         money.Money
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t Tier) toPricing() pricing.RateTier {
	return pricing.RateTier{
		ID:           t.ID,
		MinThickness: t.MinThickness,
		MaxThickness: t.MaxThickness,
		Rate:         t.Rate,
		Active:       t.Active,
	}
}

func toPricingTiers(tiers []Tier) []pricing.RateTier {
	out := make([]pricing.RateTier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, t.toPricing())
	}
	return out
}
