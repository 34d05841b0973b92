package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/repositories"
)

// WishlistService maintains the wishlisted product set.
type WishlistService struct {
	wishlist repositories.WishlistRepository
	catalog  ProductCatalog
	logger   func(context.Context, string, map[string]any)
}

// WishlistServiceDeps carries the collaborators for NewWishlistService.
type WishlistServiceDeps struct {
	Wishlist repositories.WishlistRepository
	Catalog  ProductCatalog
	Logger   func(context.Context, string, map[string]any)
}

// NewWishlistService constructs the service.
func NewWishlistService(deps WishlistServiceDeps) (*WishlistService, error) {
	if deps.Wishlist == nil {
		return nil, errors.New("wishlist service: wishlist repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("wishlist service: catalog is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &WishlistService{wishlist: deps.Wishlist, catalog: deps.Catalog, logger: logger}, nil
}

// Toggle adds the product to the wishlist if absent, removes it if
// present, and reports whether it is wishlisted afterwards.
func (s *WishlistService) Toggle(ctx context.Context, productID string) (bool, error) {
	if _, err := s.catalog.Product(productID); err != nil {
		return false, fmt.Errorf("wishlist: unknown product %q: %w", productID, err)
	}
	ids, err := s.wishlist.List(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]string, 0, len(ids)+1)
	removed := false
	for _, id := range ids {
		if id == productID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	wishlisted := !removed
	if wishlisted {
		kept = append(kept, productID)
	}
	if err := s.wishlist.Save(ctx, kept); err != nil {
		return false, err
	}
	s.logger(ctx, "wishlist_toggled", map[string]any{"productId": productID, "wishlisted": wishlisted})
	return wishlisted, nil
}

// Contains reports whether a product is wishlisted.
func (s *WishlistService) Contains(ctx context.Context, productID string) (bool, error) {
	ids, err := s.wishlist.List(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// List returns the wishlisted products in insertion order. Ids that no
// longer resolve in the catalog are skipped.
func (s *WishlistService) List(ctx context.Context) ([]domain.Product, error) {
	ids, err := s.wishlist.List(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		product, err := s.catalog.Product(id)
		if err != nil {
			continue
		}
		products = append(products, product)
	}
	return products, nil
}
