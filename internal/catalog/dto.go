package catalog

import "time"

type CreateGlassRequest struct {
	Code          string `json:"code" validate:"required,max=50"`
	Name          string `json:"name" validate:"required,max=200"`
	ThicknessMM   string `json:"thickness_mm" validate:"required"`
	PricingMethod string `json:"pricing_method" validate:"required,oneof=area length"`
	UnitPrice     string `json:"unit_price" validate:"required"`
}

type UpdateGlassRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=200"`
	UnitPrice *string `json:"unit_price,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type ListGlassRequest struct {
	IsActive *bool   `json:"is_active,omitempty"`
	Search   *string `json:"search,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

// GlassResponse is the wire representation of a glass type. Numeric fields
// travel as strings so amounts survive the round trip exactly.
type GlassResponse struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	ThicknessMM   string    `json:"thickness_mm"`
	PricingMethod string    `json:"pricing_method"`
	UnitPrice     string    `json:"unit_price"`
	Currency      string    `json:"currency"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toResponse(g Glass) GlassResponse {
	return GlassResponse{
		ID:            g.ID,
		Code:          g.Code,
		Name:          g.Name,
		ThicknessMM:   g.ThicknessMM.String(),
		PricingMethod: string(g.PricingMethod),
		UnitPrice:     g.UnitPrice.StringFixed(),
		Currency:      g.UnitPrice.Currency(),
		IsActive:      g.IsActive,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}
