package rates

import "time"

type CreateTierRequest struct {
	Category     string `json:"category" validate:"required,max=50"`
	MinThickness string `json:"min_thickness" validate:"required"`
	MaxThickness string `json:"max_thickness" validate:"required"`
	Rate         string `json:"rate" validate:"required"`
}

type UpdateTierRequest struct {
	MinThickness *string `json:"min_thickness,omitempty"`
	MaxThickness *string `json:"max_thickness,omitempty"`
	Rate         *string `json:"rate,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

// TierResponse is the wire representation of one rate tier.
type TierResponse struct {
	ID           int64     `json:"id"`
	Category     string    `json:"category"`
	MinThickness string    `json:"min_thickness"`
	MaxThickness string    `json:"max_thickness"`
	Rate         string    `json:"rate"`
	Currency     string    `json:"currency"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toResponse(t Tier) TierResponse {
	return TierResponse{
		ID:           t.ID,
		Category:     string(t.Category),
		MinThickness: t.MinThickness.String(),
		MaxThickness: t.MaxThickness.String(),
		Rate:         t.Rate.StringFixed(),
		Currency:     t.Rate.Currency(),
		Active:       t.Active,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
