// Package services holds the storefront business logic. Services depend on
// the repository interfaces and on each other through the small consumer
// interfaces below, so tests can swap any collaborator for a stub.
package services

import (
	"context"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

// ProductCatalog is the read-only product reference data source.
type ProductCatalog interface {
	Products() []domain.Product
	Product(id string) (domain.Product, error)
	Plan(productID, planID string) (domain.Product, domain.Plan, error)
	DefaultStockLevels() map[string]int
}

// Quoter prices a prospective purchase.
type Quoter interface {
	Quote(ctx context.Context, cmd QuoteCommand) (Quote, error)
}

// CouponResolver validates coupon codes and consumes them at commit time.
type CouponResolver interface {
	Resolve(ctx context.Context, code string) (domain.AppliedCoupon, error)
	Consume(ctx context.Context, code string) error
}

// StockGate answers availability questions and performs the commit-time
// decrement.
type StockGate interface {
	Available(ctx context.Context, planID string) (int, error)
	Reserve(ctx context.Context, planID string) error
}

// LoyaltyLedger exposes the Kim Points balance to the checkout flow.
type LoyaltyLedger interface {
	Balance(ctx context.Context) (int, error)
	Award(ctx context.Context, points int) (int, error)
}

// BillRecorder persists completed purchases.
type BillRecorder interface {
	Append(ctx context.Context, bill domain.Bill) error
}

// ContactMemory prefills and remembers checkout contact details.
type ContactMemory interface {
	LastContact(ctx context.Context) (email, username string, err error)
	SaveLastContact(ctx context.Context, email, username string) error
}
