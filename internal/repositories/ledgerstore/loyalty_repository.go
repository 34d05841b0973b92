package ledgerstore

import (
	"context"
	"errors"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// LoyaltyRepository stores the Kim Points balance under a single ledger key.
type LoyaltyRepository struct {
	store gokv.Store
}

// NewLoyaltyRepository constructs a ledger-backed loyalty repository.
func NewLoyaltyRepository(store gokv.Store) (*LoyaltyRepository, error) {
	if store == nil {
		return nil, errors.New("loyalty repository requires a ledger store")
	}
	return &LoyaltyRepository{store: store}, nil
}

// Balance returns the stored balance, clamped to the valid range. A missing
// key reads as zero.
func (r *LoyaltyRepository) Balance(ctx context.Context) (int, error) {
	var points int
	found, err := getValue(ctx, r.store, ledger.KeyLoyaltyPoints, &points)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return domain.ClampBalance(points), nil
}

// SetBalance persists the balance, clamping out-of-range values.
func (r *LoyaltyRepository) SetBalance(ctx context.Context, points int) error {
	return setValue(ctx, r.store, ledger.KeyLoyaltyPoints, domain.ClampBalance(points))
}
