package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/repositories"
)

var (
	// ErrCouponInvalidCode is returned when the code is not in the coupon table.
	ErrCouponInvalidCode = errors.New("coupon: invalid code")
	// ErrCouponAlreadyUsed is returned when the code was redeemed before.
	ErrCouponAlreadyUsed = errors.New("coupon: already used")
)

// resolveDelay mirrors the validation latency of the upstream coupon
// provider so resolution stays visibly asynchronous.
const resolveDelay = 1200 * time.Millisecond

// CouponService resolves codes against the static coupon table and the
// redemption ledger.
type CouponService struct {
	usage  repositories.CouponUsageRepository
	delay  time.Duration
	logger func(context.Context, string, map[string]any)
}

// CouponServiceDeps carries the collaborators for NewCouponService.
type CouponServiceDeps struct {
	Usage repositories.CouponUsageRepository
	// Delay overrides the resolution latency; zero keeps the default and
	// a negative value disables the wait entirely.
	Delay  time.Duration
	Logger func(context.Context, string, map[string]any)
}

// NewCouponService constructs the service.
func NewCouponService(deps CouponServiceDeps) (*CouponService, error) {
	if deps.Usage == nil {
		return nil, errors.New("coupon service: usage repository is required")
	}
	delay := deps.Delay
	if delay == 0 {
		delay = resolveDelay
	}
	if delay < 0 {
		delay = 0
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &CouponService{usage: deps.Usage, delay: delay, logger: logger}, nil
}

// Resolve validates a code after the provider delay. Codes are
// case-insensitive; an unknown code fails before a redeemed one is checked.
func (s *CouponService) Resolve(ctx context.Context, code string) (domain.AppliedCoupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return domain.AppliedCoupon{}, fmt.Errorf("%w: empty code", ErrCouponInvalidCode)
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.AppliedCoupon{}, ctx.Err()
		case <-timer.C:
		}
	}

	percent, ok := domain.Coupons[normalized]
	if !ok {
		s.logger(ctx, "coupon_rejected", map[string]any{"code": normalized, "reason": "unknown"})
		return domain.AppliedCoupon{}, fmt.Errorf("%w: %s", ErrCouponInvalidCode, normalized)
	}

	used, err := s.usage.UsedCodes(ctx)
	if err != nil {
		return domain.AppliedCoupon{}, err
	}
	for _, redeemed := range used {
		if redeemed == normalized {
			s.logger(ctx, "coupon_rejected", map[string]any{"code": normalized, "reason": "redeemed"})
			return domain.AppliedCoupon{}, fmt.Errorf("%w: %s", ErrCouponAlreadyUsed, normalized)
		}
	}

	s.logger(ctx, "coupon_resolved", map[string]any{"code": normalized, "percent": percent})
	return domain.AppliedCoupon{Code: normalized, Percent: percent}, nil
}

// Consume marks a resolved code as redeemed. Called only at purchase
// commit, never on apply.
func (s *CouponService) Consume(ctx context.Context, code string) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := domain.Coupons[normalized]; !ok {
		return fmt.Errorf("%w: %s", ErrCouponInvalidCode, normalized)
	}
	return s.usage.MarkUsed(ctx, normalized)
}
