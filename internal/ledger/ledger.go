// Package ledger opens the key-value store that backs all mutable
// storefront state. Reference data stays in the catalog; everything the
// user changes at runtime lives under the well-known keys below.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/philippgille/gokv"
	"github.com/philippgille/gokv/encoding"
	"github.com/philippgille/gokv/file"
	"github.com/philippgille/gokv/gomap"
)

// Well-known ledger keys. Each key holds one JSON document.
const (
	KeyLoyaltyPoints   = "loyalty-points"
	KeyStockLevels     = "stock-levels"
	KeyUsedCoupons     = "used-coupons"
	KeyPurchaseHistory = "purchase-history"
	KeyWishlist        = "wishlist-ids"
	KeyLastEmail       = "last-email"
	KeyLastUsername    = "last-username"
	KeyGameLastPlayed  = "game-last-played"

	reviewsKeyPrefix = "reviews-"
)

// ReviewsKey returns the ledger key holding user-submitted reviews for a
// product.
func ReviewsKey(productID string) string {
	return reviewsKeyPrefix + productID
}

// IsReviewsKey reports whether key holds per-product reviews and returns
// the product id it refers to.
func IsReviewsKey(key string) (string, bool) {
	if !strings.HasPrefix(key, reviewsKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, reviewsKeyPrefix), true
}

// OpenFile opens a file-backed store rooted at dir. Each key becomes a
// JSON file under dir, which keeps the ledger inspectable by hand.
func OpenFile(dir string) (gokv.Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("ledger: directory is required")
	}
	ext := "json"
	store, err := file.NewStore(file.Options{
		Directory:         dir,
		FilenameExtension: &ext,
		Codec:             encoding.JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", dir, err)
	}
	return store, nil
}

// OpenMemory opens a volatile in-process store, used in tests and when no
// data directory is configured.
func OpenMemory() gokv.Store {
	return gomap.NewStore(gomap.DefaultOptions)
}
