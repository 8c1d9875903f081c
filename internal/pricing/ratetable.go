package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
)

// Category tags an operation kind (polishing, beveling, drilling, ...). The
// set of categories is managed at runtime by the rates module, not hardcoded.
type Category string

var (
	// ErrOverlappingTiers indicates two active tiers whose thickness ranges intersect.
	ErrOverlappingTiers = errors.New("pricing: overlapping thickness ranges")
	// ErrNoRateForThickness indicates a thickness outside every active tier.
	ErrNoRateForThickness = errors.New("pricing: no rate configured for thickness")
	// ErrInvalidTierRange indicates a tier whose min exceeds its max.
	ErrInvalidTierRange = errors.New("pricing: tier min thickness exceeds max")
)

// RateTier maps an inclusive thickness range (millimeters) to a price per unit
// of length or area for one category.
type RateTier struct {
	ID           int64
	MinThickness decimal.Decimal
	MaxThickness decimal.Decimal
	Rate         money.Money
	Active       bool
}

// contains reports whether thickness falls inside the inclusive range.
func (t RateTier) contains(thickness decimal.Decimal) bool {
	return thickness.Cmp(t.MinThickness) >= 0 && thickness.Cmp(t.MaxThickness) <= 0
}

// RateTable is the read-side view of one category's tiers. Lookups are
// deterministic: tiers may not overlap, so at most one tier matches.
type RateTable struct {
	category Category
	tiers    []RateTier
	fallback *money.Money
}

// TableOption configures optional RateTable behavior.
type TableOption func(*RateTable)

// WithFallbackRate enables the legacy lookup-miss fallback. It exists only as
// an explicit configuration escape hatch; the default contract is to fail.
func WithFallbackRate(rate money.Money) TableOption {
	return func(rt *RateTable) {
		r := rate
		rt.fallback = &r
	}
}

// NewRateTable builds a table after validating every active tier range and the
// non-overlap invariant.
func NewRateTable(category Category, tiers []RateTier, opts ...TableOption) (RateTable, error) {
	if err := CheckTiers(tiers); err != nil {
		return RateTable{}, fmt.Errorf("category %s: %w", category, err)
	}
	rt := RateTable{category: category, tiers: append([]RateTier(nil), tiers...)}
	for _, opt := range opts {
		opt(&rt)
	}
	return rt, nil
}

// Category returns the category this table serves.
func (rt RateTable) Category() Category { return rt.category }

// Lookup resolves the tier covering the given thickness. When no active tier
// matches it returns ErrNoRateForThickness, unless a fallback rate was
// explicitly configured.
func (rt RateTable) Lookup(thickness decimal.Decimal) (RateTier, error) {
	for _, tier := range rt.tiers {
		if !tier.Active {
			continue
		}
		if tier.contains(thickness) {
			return tier, nil
		}
	}
	if rt.fallback != nil {
		return RateTier{Rate: *rt.fallback, Active: true}, nil
	}
	return RateTier{}, fmt.Errorf("%w: category %s, thickness %s", ErrNoRateForThickness, rt.category, thickness)
}

// CheckTiers validates tier ranges and rejects overlaps between active tiers.
// The rates module runs this before committing any tier write.
func CheckTiers(tiers []RateTier) error {
	active := make([]RateTier, 0, len(tiers))
	for _, t := range tiers {
		if t.MinThickness.Cmp(t.MaxThickness) > 0 {
			return fmt.Errorf("%w: %s > %s", ErrInvalidTierRange, t.MinThickness, t.MaxThickness)
		}
		if t.Active {
			active = append(active, t)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].MinThickness.Cmp(active[j].MinThickness) < 0
	})
	for i := 1; i < len(active); i++ {
		prev, cur := active[i-1], active[i]
		if cur.MinThickness.Cmp(prev.MaxThickness) <= 0 {
			return fmt.Errorf("%w: [%s, %s] and [%s, %s]",
				ErrOverlappingTiers,
				prev.MinThickness, prev.MaxThickness,
				cur.MinThickness, cur.MaxThickness)
		}
	}
	return nil
}

// TableSet resolves rate tables by category for line pricing.
type TableSet map[Category]RateTable

// Table returns the table for a category or an error naming the category.
func (s TableSet) Table(category Category) (RateTable, error) {
	rt, ok := s[category]
	if !ok {
		return RateTable{}, fmt.Errorf("%w: category %s", ErrNoRateForThickness, category)
	}
	return rt, nil
}
