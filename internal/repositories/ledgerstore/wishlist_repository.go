package ledgerstore

import (
	"context"
	"errors"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// WishlistRepository stores the ordered list of wishlisted product ids.
type WishlistRepository struct {
	store gokv.Store
}

// NewWishlistRepository constructs a ledger-backed wishlist repository.
func NewWishlistRepository(store gokv.Store) (*WishlistRepository, error) {
	if store == nil {
		return nil, errors.New("wishlist repository requires a ledger store")
	}
	return &WishlistRepository{store: store}, nil
}

// List returns the wishlisted product ids in insertion order.
func (r *WishlistRepository) List(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := getValue(ctx, r.store, ledger.KeyWishlist, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Save replaces the stored wishlist.
func (r *WishlistRepository) Save(ctx context.Context, productIDs []string) error {
	if productIDs == nil {
		productIDs = []string{}
	}
	return setValue(ctx, r.store, ledger.KeyWishlist, productIDs)
}
