package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/scrimteamx/Card-Ghar/internal/repositories"
)

var (
	// ErrOutOfStock is returned when a plan has no remaining units.
	ErrOutOfStock = errors.New("stock: out of stock")
	// ErrUnknownPlan is returned for plan ids absent from the catalog.
	ErrUnknownPlan = errors.New("stock: unknown plan")
)

// StockService owns the live stock map. Catalog stock values are only
// defaults; once a plan appears in the ledger, the ledger wins.
type StockService struct {
	stock   repositories.StockRepository
	catalog ProductCatalog
	logger  func(context.Context, string, map[string]any)
}

// StockServiceDeps carries the collaborators for NewStockService.
type StockServiceDeps struct {
	Stock   repositories.StockRepository
	Catalog ProductCatalog
	Logger  func(context.Context, string, map[string]any)
}

// NewStockService constructs the service.
func NewStockService(deps StockServiceDeps) (*StockService, error) {
	if deps.Stock == nil {
		return nil, errors.New("stock service: stock repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("stock service: catalog is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &StockService{stock: deps.Stock, catalog: deps.Catalog, logger: logger}, nil
}

// Reconcile seeds ledger entries for plans the catalog knows but the
// ledger does not. Existing entries, including explicit zeros, are kept.
// Run once at startup so new catalog plans become purchasable.
func (s *StockService) Reconcile(ctx context.Context) error {
	levels, err := s.stock.Levels(ctx)
	if err != nil {
		return err
	}
	seeded := 0
	for planID, defaultStock := range s.catalog.DefaultStockLevels() {
		if _, ok := levels[planID]; ok {
			continue
		}
		levels[planID] = defaultStock
		seeded++
	}
	if seeded == 0 {
		return nil
	}
	if err := s.stock.SetLevels(ctx, levels); err != nil {
		return err
	}
	s.logger(ctx, "stock_reconciled", map[string]any{"seeded": seeded, "tracked": len(levels)})
	return nil
}

// Levels returns the live stock map.
func (s *StockService) Levels(ctx context.Context) (map[string]int, error) {
	return s.stock.Levels(ctx)
}

// Available returns the remaining units for a plan.
func (s *StockService) Available(ctx context.Context, planID string) (int, error) {
	levels, err := s.stock.Levels(ctx)
	if err != nil {
		return 0, err
	}
	remaining, ok := levels[planID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}
	return remaining, nil
}

// Reserve decrements a plan's stock by one unit. It re-reads the ledger so
// a purchase committed after the plan was selected is still caught here.
func (s *StockService) Reserve(ctx context.Context, planID string) error {
	levels, err := s.stock.Levels(ctx)
	if err != nil {
		return err
	}
	remaining, ok := levels[planID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}
	if remaining <= 0 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, planID)
	}
	levels[planID] = remaining - 1
	if err := s.stock.SetLevels(ctx, levels); err != nil {
		return err
	}
	s.logger(ctx, "stock_reserved", map[string]any{"planId": planID, "remaining": remaining - 1})
	return nil
}
