package services

import (
	"context"
	"errors"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/repositories"
)

// LoyaltyService owns the Kim Points balance. The balance only ever grows
// through awards; spending points discounts a purchase without debiting
// the balance, and the cap absorbs any overflow.
type LoyaltyService struct {
	loyalty repositories.LoyaltyRepository
	logger  func(context.Context, string, map[string]any)
}

// LoyaltyServiceDeps carries the collaborators for NewLoyaltyService.
type LoyaltyServiceDeps struct {
	Loyalty repositories.LoyaltyRepository
	Logger  func(context.Context, string, map[string]any)
}

// NewLoyaltyService constructs the service.
func NewLoyaltyService(deps LoyaltyServiceDeps) (*LoyaltyService, error) {
	if deps.Loyalty == nil {
		return nil, errors.New("loyalty service: loyalty repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &LoyaltyService{loyalty: deps.Loyalty, logger: logger}, nil
}

// Balance returns the current balance.
func (s *LoyaltyService) Balance(ctx context.Context) (int, error) {
	return s.loyalty.Balance(ctx)
}

// Award adds points to the balance, capped at the maximum, and returns the
// new balance. Awarding zero or negative points is a no-op.
func (s *LoyaltyService) Award(ctx context.Context, points int) (int, error) {
	balance, err := s.loyalty.Balance(ctx)
	if err != nil {
		return 0, err
	}
	if points <= 0 {
		return balance, nil
	}
	updated := domain.ClampBalance(balance + points)
	if err := s.loyalty.SetBalance(ctx, updated); err != nil {
		return 0, err
	}
	s.logger(ctx, "loyalty_awarded", map[string]any{"points": points, "balance": updated})
	return updated, nil
}
