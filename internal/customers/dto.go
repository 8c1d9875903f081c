package customers

type CreateCustomerRequest struct {
	Code  string  `json:"code" validate:"required,max=50"`
	Name  string  `json:"name" validate:"required,max=200"`
	Type  string  `json:"type" validate:"required,oneof=cash credit"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes *string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	IsActive *bool   `json:"is_active,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type ListCustomersRequest struct {
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=cash credit"`
	IsActive *bool   `json:"is_active,omitempty"`
	Search   *string `json:"search,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}

// BalanceResponse exposes the ledger state for one customer.
type BalanceResponse struct {
	CustomerID int64  `json:"customer_id"`
	Balance    string `json:"balance"`
	Currency   string `json:"currency"`
}
