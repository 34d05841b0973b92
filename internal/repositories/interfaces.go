// Package repositories defines the persistence interfaces consumed by the
// service layer. Implementations live in subpackages; the service layer
// never touches the ledger directly.
package repositories

import (
	"context"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

// LoyaltyRepository stores the single Kim Points balance.
type LoyaltyRepository interface {
	Balance(ctx context.Context) (int, error)
	SetBalance(ctx context.Context, points int) error
}

// StockRepository stores live per-plan stock levels.
type StockRepository interface {
	Levels(ctx context.Context) (map[string]int, error)
	SetLevels(ctx context.Context, levels map[string]int) error
}

// CouponUsageRepository records coupon codes already redeemed.
type CouponUsageRepository interface {
	UsedCodes(ctx context.Context) ([]string, error)
	MarkUsed(ctx context.Context, code string) error
}

// HistoryRepository persists completed purchase bills, newest first.
type HistoryRepository interface {
	List(ctx context.Context) ([]domain.Bill, error)
	Append(ctx context.Context, bill domain.Bill) error
}

// WishlistRepository stores the ordered set of wishlisted product ids.
type WishlistRepository interface {
	List(ctx context.Context) ([]string, error)
	Save(ctx context.Context, productIDs []string) error
}

// ContactRepository remembers the most recently submitted contact details
// so checkout forms can be prefilled.
type ContactRepository interface {
	LastContact(ctx context.Context) (email, username string, err error)
	SaveLastContact(ctx context.Context, email, username string) error
}

// GameRepository tracks the last calendar day the minigame was played.
type GameRepository interface {
	LastPlayed(ctx context.Context) (string, error)
	SetLastPlayed(ctx context.Context, day string) error
}

// ReviewRepository stores user-submitted reviews per product, on top of
// the seeded catalog reviews.
type ReviewRepository interface {
	List(ctx context.Context, productID string) ([]domain.Review, error)
	Append(ctx context.Context, productID string, review domain.Review) error
}
