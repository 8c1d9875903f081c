// Package catalog holds the glass type masterdata: every sellable sheet of
// glass with its thickness, pricing method and base unit price. Invoicing and
// quoting resolve lines against this catalog.
package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

var (
	ErrNotFound      = errors.New("catalog: glass type not found")
	ErrAlreadyExists = errors.New("catalog: code already exists")
	// ErrInactiveGlass indicates a glass type that can no longer be sold.
	ErrInactiveGlass = errors.New("catalog: glass type is inactive")
)

// Glass is one sellable glass type.
type Glass struct {
	ID            int64
	Code          string
	Name          string
	ThicknessMM   decimal.Decimal
	PricingMethod pricing.GlassPricing
	UnitPrice     money.Money
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
