package ledgerstore

import (
	"context"
	"errors"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// HistoryRepository persists the purchase history as a single list with the
// newest bill first.
type HistoryRepository struct {
	store gokv.Store
}

// NewHistoryRepository constructs a ledger-backed history repository.
func NewHistoryRepository(store gokv.Store) (*HistoryRepository, error) {
	if store == nil {
		return nil, errors.New("history repository requires a ledger store")
	}
	return &HistoryRepository{store: store}, nil
}

// List returns all recorded bills, newest first.
func (r *HistoryRepository) List(ctx context.Context) ([]domain.Bill, error) {
	var bills []domain.Bill
	if _, err := getValue(ctx, r.store, ledger.KeyPurchaseHistory, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// Append prepends bill so the history stays newest-first.
func (r *HistoryRepository) Append(ctx context.Context, bill domain.Bill) error {
	bills, err := r.List(ctx)
	if err != nil {
		return err
	}
	updated := make([]domain.Bill, 0, len(bills)+1)
	updated = append(updated, bill)
	updated = append(updated, bills...)
	return setValue(ctx, r.store, ledger.KeyPurchaseHistory, updated)
}
