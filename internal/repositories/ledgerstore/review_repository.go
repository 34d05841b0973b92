package ledgerstore

import (
	"context"
	"errors"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// ReviewRepository stores user-submitted reviews, one document per product.
type ReviewRepository struct {
	store gokv.Store
}

// NewReviewRepository constructs a ledger-backed review repository.
func NewReviewRepository(store gokv.Store) (*ReviewRepository, error) {
	if store == nil {
		return nil, errors.New("review repository requires a ledger store")
	}
	return &ReviewRepository{store: store}, nil
}

// List returns the submitted reviews for a product, newest first.
func (r *ReviewRepository) List(ctx context.Context, productID string) ([]domain.Review, error) {
	if productID == "" {
		return nil, errors.New("ledgerstore: empty product id")
	}
	var reviews []domain.Review
	if _, err := getValue(ctx, r.store, ledger.ReviewsKey(productID), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Append prepends review to the product's submitted reviews.
func (r *ReviewRepository) Append(ctx context.Context, productID string, review domain.Review) error {
	reviews, err := r.List(ctx, productID)
	if err != nil {
		return err
	}
	updated := make([]domain.Review, 0, len(reviews)+1)
	updated = append(updated, review)
	updated = append(updated, reviews...)
	return setValue(ctx, r.store, ledger.ReviewsKey(productID), updated)
}
