package rates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// TableCache keeps assembled tier lists in Redis so hot pricing paths avoid a
// database round trip per category. The cache is best effort: any Redis error
// degrades to a database read, and every tier write invalidates its category.
type TableCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTableCache instantiates the cache helper. A nil client disables caching.
func NewTableCache(client *redis.Client, ttl time.Duration) *TableCache {
	return &TableCache{client: client, ttl: ttl}
}

type cachedTier struct {
	ID           int64  `json:"id"`
	MinThickness string `json:"min_thickness"`
	MaxThickness string `json:"max_thickness"`
	Rate         string `json:"rate"`
	Currency     string `json:"currency"`
	Active       bool   `json:"active"`
}

func cacheKey(category pricing.Category) string {
	return "rates:table:" + string(category)
}

// Get returns the cached tiers for a category, reporting a miss on any error.
func (c *TableCache) Get(ctx context.Context, category pricing.Category) ([]pricing.RateTier, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, cacheKey(category)).Bytes()
	if err != nil {
		return nil, false
	}
	var cached []cachedTier
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil, false
	}

	tiers := make([]pricing.RateTier, 0, len(cached))
	for _, ct := range cached {
		min, err := decimal.NewFromString(ct.MinThickness)
		if err != nil {
			return nil, false
		}
		max, err := decimal.NewFromString(ct.MaxThickness)
		if err != nil {
			return nil, false
		}
		rate, err := money.NewFromString(ct.Rate, ct.Currency)
		if err != nil {
			return nil, false
		}
		tiers = append(tiers, pricing.RateTier{
			ID:           ct.ID,
			MinThickness: min,
			MaxThickness: max,
			Rate:         rate,
			Active:       ct.Active,
		})
	}
	return tiers, true
}

// Set stores the tiers for a category. Failures are swallowed.
func (c *TableCache) Set(ctx context.Context, category pricing.Category, tiers []pricing.RateTier) {
	if c == nil || c.client == nil {
		return
	}
	cached := make([]cachedTier, 0, len(tiers))
	for _, t := range tiers {
		cached = append(cached, cachedTier{
			ID:           t.ID,
			MinThickness: t.MinThickness.String(),
			MaxThickness: t.MaxThickness.String(),
			Rate:         t.Rate.StringFixed(),
			Currency:     t.Rate.Currency(),
			Active:       t.Active,
		})
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(category), payload, c.ttl).Err()
}

// Invalidate drops the cached tiers for a category.
func (c *TableCache) Invalidate(ctx context.Context, category pricing.Category) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, cacheKey(category)).Err()
}
