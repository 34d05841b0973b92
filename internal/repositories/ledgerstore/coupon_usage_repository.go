package ledgerstore

import (
	"context"
	"errors"
	"strings"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// CouponUsageRepository records redeemed coupon codes as an append-only
// list of uppercase codes.
type CouponUsageRepository struct {
	store gokv.Store
}

// NewCouponUsageRepository constructs a ledger-backed coupon usage repository.
func NewCouponUsageRepository(store gokv.Store) (*CouponUsageRepository, error) {
	if store == nil {
		return nil, errors.New("coupon usage repository requires a ledger store")
	}
	return &CouponUsageRepository{store: store}, nil
}

// UsedCodes returns all redeemed codes.
func (r *CouponUsageRepository) UsedCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if _, err := getValue(ctx, r.store, ledger.KeyUsedCoupons, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// MarkUsed appends code to the redeemed list. Marking an already-used code
// again is a no-op.
func (r *CouponUsageRepository) MarkUsed(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return errors.New("ledgerstore: empty coupon code")
	}
	codes, err := r.UsedCodes(ctx)
	if err != nil {
		return err
	}
	for _, existing := range codes {
		if existing == code {
			return nil
		}
	}
	return setValue(ctx, r.store, ledger.KeyUsedCoupons, append(codes, code))
}
