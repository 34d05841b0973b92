package services

import (
	"context"
	"testing"

	"github.com/scrimteamx/Card-Ghar/internal/catalog"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
	"github.com/scrimteamx/Card-Ghar/internal/repositories/ledgerstore"
)

func newWishlistService(t *testing.T) *WishlistService {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	repo, err := ledgerstore.NewWishlistRepository(ledger.OpenMemory())
	if err != nil {
		t.Fatalf("NewWishlistRepository: %v", err)
	}
	svc, err := NewWishlistService(WishlistServiceDeps{Wishlist: repo, Catalog: cat})
	if err != nil {
		t.Fatalf("NewWishlistService: %v", err)
	}
	return svc
}

func TestWishlistToggle(t *testing.T) {
	ctx := context.Background()
	svc := newWishlistService(t)

	wishlisted, err := svc.Toggle(ctx, "1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !wishlisted {
		t.Error("first toggle should add")
	}
	if ok, _ := svc.Contains(ctx, "1"); !ok {
		t.Error("Contains should report wishlisted")
	}

	wishlisted, err = svc.Toggle(ctx, "1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if wishlisted {
		t.Error("second toggle should remove")
	}
	if ok, _ := svc.Contains(ctx, "1"); ok {
		t.Error("Contains should report removed")
	}
}

func TestWishlistToggleUnknownProduct(t *testing.T) {
	svc := newWishlistService(t)
	if _, err := svc.Toggle(context.Background(), "999"); err == nil {
		t.Error("expected error for unknown product")
	}
}

func TestWishlistListResolvesProducts(t *testing.T) {
	ctx := context.Background()
	svc := newWishlistService(t)

	if _, err := svc.Toggle(ctx, "4"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := svc.Toggle(ctx, "201"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	products, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len = %d, want 2", len(products))
	}
	if products[0].Name != "Spotify Premium" || products[1].Name != "Netflix" {
		t.Errorf("order = %s, %s", products[0].Name, products[1].Name)
	}
}
