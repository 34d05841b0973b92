package ledgerstore

import (
	"context"
	"errors"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// StockRepository stores the live stock map keyed by plan id.
type StockRepository struct {
	store gokv.Store
}

// NewStockRepository constructs a ledger-backed stock repository.
func NewStockRepository(store gokv.Store) (*StockRepository, error) {
	if store == nil {
		return nil, errors.New("stock repository requires a ledger store")
	}
	return &StockRepository{store: store}, nil
}

// Levels returns the stored stock map. A missing key reads as an empty map
// so the reconciler can seed catalog defaults.
func (r *StockRepository) Levels(ctx context.Context) (map[string]int, error) {
	levels := map[string]int{}
	if _, err := getValue(ctx, r.store, ledger.KeyStockLevels, &levels); err != nil {
		return nil, err
	}
	if levels == nil {
		levels = map[string]int{}
	}
	return levels, nil
}

// SetLevels replaces the stored stock map.
func (r *StockRepository) SetLevels(ctx context.Context, levels map[string]int) error {
	if levels == nil {
		levels = map[string]int{}
	}
	return setValue(ctx, r.store, ledger.KeyStockLevels, levels)
}
