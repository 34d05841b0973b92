package services

import (
	"context"
	"errors"
	"testing"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

func newPricingEngine(t *testing.T) *PricingEngine {
	t.Helper()
	engine, err := NewPricingEngine(PricingEngineDeps{})
	if err != nil {
		t.Fatalf("NewPricingEngine: %v", err)
	}
	return engine
}

func TestQuotePointsOnly(t *testing.T) {
	engine := newPricingEngine(t)
	quote, err := engine.Quote(context.Background(), QuoteCommand{
		BasePrice:   1000,
		Region:      domain.RegionNepal,
		PointsToUse: 20,
		Balance:     20,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.PointDiscount != 100 {
		t.Errorf("point discount = %d, want 100", quote.PointDiscount)
	}
	if quote.FinalPrice != 900 {
		t.Errorf("final = %d, want 900", quote.FinalPrice)
	}
	if quote.PointsEarned != 1 {
		t.Errorf("earned = %d, want 1 for max points", quote.PointsEarned)
	}
	if quote.Currency != "NPR" {
		t.Errorf("currency = %q", quote.Currency)
	}
}

func TestQuoteCouponOnly(t *testing.T) {
	engine := newPricingEngine(t)
	quote, err := engine.Quote(context.Background(), QuoteCommand{
		BasePrice: 1000,
		Region:    domain.RegionNepal,
		Coupon:    &domain.AppliedCoupon{Code: "SAVE5", Percent: 0.05},
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.CouponDiscount != 50 {
		t.Errorf("coupon discount = %d, want 50", quote.CouponDiscount)
	}
	if quote.FinalPrice != 950 {
		t.Errorf("final = %d, want 950", quote.FinalPrice)
	}
	if quote.PointsEarned != 1 {
		t.Errorf("earned = %d, want 1 when no points spent", quote.PointsEarned)
	}
}

func TestQuoteCombined(t *testing.T) {
	engine := newPricingEngine(t)
	quote, err := engine.Quote(context.Background(), QuoteCommand{
		BasePrice:   1000,
		Region:      domain.RegionNepal,
		PointsToUse: 10,
		Balance:     20,
		Coupon:      &domain.AppliedCoupon{Code: "SAVE5", Percent: 0.05},
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.FinalPrice != 900 {
		t.Errorf("final = %d, want 900 (50 points + 50 coupon off)", quote.FinalPrice)
	}
	if quote.PointsEarned != 0 {
		t.Errorf("earned = %d, want 0 for partial points", quote.PointsEarned)
	}
}

func TestQuoteIndiaConvertsBeforeDiscounting(t *testing.T) {
	engine := newPricingEngine(t)
	quote, err := engine.Quote(context.Background(), QuoteCommand{
		BasePrice: 1000,
		Region:    domain.RegionIndia,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.OriginalPrice != 625 {
		t.Errorf("converted = %d, want 625", quote.OriginalPrice)
	}
	if quote.Currency != "INR" {
		t.Errorf("currency = %q", quote.Currency)
	}
}

func TestQuoteClampsPointsToBalance(t *testing.T) {
	engine := newPricingEngine(t)
	quote, err := engine.Quote(context.Background(), QuoteCommand{
		BasePrice:   1000,
		Region:      domain.RegionNepal,
		PointsToUse: 20,
		Balance:     5,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.PointsUsed != 5 {
		t.Errorf("points used = %d, want clamp to balance 5", quote.PointsUsed)
	}
}

func TestQuoteRejectsBadInput(t *testing.T) {
	engine := newPricingEngine(t)
	if _, err := engine.Quote(context.Background(), QuoteCommand{BasePrice: -1}); !errors.Is(err, ErrPricingInvalidInput) {
		t.Errorf("negative price = %v, want ErrPricingInvalidInput", err)
	}
	if _, err := engine.Quote(context.Background(), QuoteCommand{
		BasePrice: 100,
		Coupon:    &domain.AppliedCoupon{Code: "X", Percent: 1.5},
	}); !errors.Is(err, ErrPricingInvalidInput) {
		t.Errorf("bad percent = %v, want ErrPricingInvalidInput", err)
	}
}

func TestFormatAmount(t *testing.T) {
	engine := newPricingEngine(t)
	if got := engine.FormatAmount("NPR", 12000); got != "NPR 12,000" {
		t.Errorf("FormatAmount = %q, want %q", got, "NPR 12,000")
	}
	if got := engine.FormatAmount("INR", 625); got != "INR 625" {
		t.Errorf("FormatAmount = %q, want %q", got, "INR 625")
	}
}
