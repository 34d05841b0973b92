package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

// ErrPricingInvalidInput signals bad request data such as a negative base
// price or an unknown coupon percent.
var ErrPricingInvalidInput = errors.New("pricing: invalid input")

// PricingEngine converts catalog prices to the active region and applies
// point and coupon discounts in that order.
type PricingEngine struct {
	logger  func(context.Context, string, map[string]any)
	printer *message.Printer
}

// PricingEngineDeps carries optional collaborators for the engine.
type PricingEngineDeps struct {
	Logger func(context.Context, string, map[string]any)
}

// NewPricingEngine constructs the engine.
func NewPricingEngine(deps PricingEngineDeps) (*PricingEngine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &PricingEngine{
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}, nil
}

// QuoteCommand describes one prospective purchase to price.
type QuoteCommand struct {
	// BasePrice is the catalog price in NPR.
	BasePrice int
	Region    domain.Region
	// PointsToUse is clamped to both Balance and the per-purchase maximum.
	PointsToUse int
	Balance     int
	Coupon      *domain.AppliedCoupon
}

// Quote is the fully priced breakdown shown on the payment step and frozen
// into the bill on confirmation. All amounts are in the region currency.
type Quote struct {
	Currency       string
	OriginalPrice  int
	PointsUsed     int
	PointDiscount  int
	CouponCode     string
	CouponPercent  float64
	CouponDiscount int
	FinalPrice     int
	PointsEarned   int
}

// Quote prices a purchase. Discounts apply to the region-converted price;
// the result never goes below zero.
func (e *PricingEngine) Quote(ctx context.Context, cmd QuoteCommand) (Quote, error) {
	if cmd.BasePrice < 0 {
		return Quote{}, fmt.Errorf("%w: negative base price %d", ErrPricingInvalidInput, cmd.BasePrice)
	}
	if cmd.Coupon != nil && (cmd.Coupon.Percent <= 0 || cmd.Coupon.Percent >= 1) {
		return Quote{}, fmt.Errorf("%w: coupon percent %v out of range", ErrPricingInvalidInput, cmd.Coupon.Percent)
	}

	converted := domain.ConvertPrice(cmd.BasePrice, cmd.Region)
	points := domain.ClampPointsToUse(cmd.PointsToUse, cmd.Balance)
	if points != cmd.PointsToUse {
		e.logger(ctx, "pricing_points_clamped", map[string]any{"requested": cmd.PointsToUse, "clamped": points, "balance": cmd.Balance})
	}

	quote := Quote{
		Currency:      cmd.Region.Currency(),
		OriginalPrice: converted,
		PointsUsed:    points,
		PointDiscount: domain.PointDiscount(converted, points),
		PointsEarned:  domain.PointsEarned(points),
	}
	if cmd.Coupon != nil {
		quote.CouponCode = cmd.Coupon.Code
		quote.CouponPercent = cmd.Coupon.Percent
		quote.CouponDiscount = domain.CouponDiscount(converted, cmd.Coupon.Percent)
	}
	quote.FinalPrice = domain.FinalPrice(converted, points, quote.CouponPercent)
	return quote, nil
}

// FormatAmount renders an amount with its currency code and thousands
// separators, e.g. "NPR 1,200".
func (e *PricingEngine) FormatAmount(currency string, amount int) string {
	return e.printer.Sprintf("%s %d", currency, amount)
}
