package services

import (
	"context"
	"errors"
	"testing"

	"github.com/scrimteamx/Card-Ghar/internal/catalog"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
	"github.com/scrimteamx/Card-Ghar/internal/repositories"
	"github.com/scrimteamx/Card-Ghar/internal/repositories/ledgerstore"
)

func newStockFixture(t *testing.T) (*StockService, repositories.StockRepository) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	repo, err := ledgerstore.NewStockRepository(ledger.OpenMemory())
	if err != nil {
		t.Fatalf("NewStockRepository: %v", err)
	}
	svc, err := NewStockService(StockServiceDeps{Stock: repo, Catalog: cat})
	if err != nil {
		t.Fatalf("NewStockService: %v", err)
	}
	return svc, repo
}

func TestStockReconcileSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStockFixture(t)

	if err := svc.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	remaining, err := svc.Available(ctx, "rbx-400")
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if remaining != 15 {
		t.Errorf("rbx-400 = %d, want catalog default 15", remaining)
	}
}

func TestStockReconcileKeepsLedgerValues(t *testing.T) {
	ctx := context.Background()
	svc, repo := newStockFixture(t)

	// Ledger already tracks two plans, one sold down and one explicitly zero.
	if err := repo.SetLevels(ctx, map[string]int{"rbx-400": 2, "mc-std": 0}); err != nil {
		t.Fatalf("SetLevels: %v", err)
	}
	if err := svc.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if remaining, _ := svc.Available(ctx, "rbx-400"); remaining != 2 {
		t.Errorf("rbx-400 = %d, want ledger value 2", remaining)
	}
	if remaining, _ := svc.Available(ctx, "mc-std"); remaining != 0 {
		t.Errorf("mc-std = %d, want explicit 0 kept", remaining)
	}
	if remaining, _ := svc.Available(ctx, "gta-prem"); remaining != 25 {
		t.Errorf("gta-prem = %d, want seeded default 25", remaining)
	}
}

func TestStockReserveDecrements(t *testing.T) {
	ctx := context.Background()
	svc, repo := newStockFixture(t)
	if err := repo.SetLevels(ctx, map[string]int{"nfx-std": 1}); err != nil {
		t.Fatalf("SetLevels: %v", err)
	}

	if err := svc.Reserve(ctx, "nfx-std"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if remaining, _ := svc.Available(ctx, "nfx-std"); remaining != 0 {
		t.Errorf("after reserve = %d, want 0", remaining)
	}
	if err := svc.Reserve(ctx, "nfx-std"); !errors.Is(err, ErrOutOfStock) {
		t.Errorf("Reserve sold out = %v, want ErrOutOfStock", err)
	}
}

func TestStockUnknownPlan(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStockFixture(t)
	if err := svc.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, err := svc.Available(ctx, "nope"); !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("Available unknown = %v, want ErrUnknownPlan", err)
	}
	if err := svc.Reserve(ctx, "nope"); !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("Reserve unknown = %v, want ErrUnknownPlan", err)
	}
}
