package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/vetro-erp/vetro-erp/internal/money"
)

// Service handles customer business logic. Balance mutations are not exposed
// here: they happen exclusively inside the invoicing payment workflow so the
// ledger can never drift from invoice payment state.
type Service struct {
	repo     Repository
	currency string
}

// NewService builds a Service instance.
func NewService(repo Repository, currency string) *Service {
	return &Service{repo: repo, currency: currency}
}

// Create registers a new customer with a zero balance.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	existing, err := s.repo.GetByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing customer: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	customer := Customer{
		Code:     req.Code,
		Name:     req.Name,
		Type:     CustomerType(req.Type),
		Phone:    req.Phone,
		Email:    req.Email,
		Balance:  money.Zero(s.currency),
		IsActive: true,
		Notes:    req.Notes,
	}

	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	customer.ID = id
	return &customer, nil
}

// Update applies a partial update to an existing customer. The customer type
// is immutable after creation: switching cash and credit would orphan or
// invent balance history.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Get returns one customer by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the filter.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, error) {
	if req.Limit == 0 {
		req.Limit = 100
	}
	return s.repo.List(ctx, req)
}

// Balance returns the outstanding balance for a customer.
func (s *Service) Balance(ctx context.Context, id int64) (BalanceResponse, error) {
	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{
		CustomerID: customer.ID,
		Balance:    customer.Balance.StringFixed(),
		Currency:   customer.Balance.Currency(),
	}, nil
}
