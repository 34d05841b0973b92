package domain

import (
	"math"
)

const (
	// MaxPoints caps the loyalty balance and the points usable per purchase.
	MaxPoints = 20
	// DiscountPerPoint is the price fraction one loyalty point is worth.
	DiscountPerPoint = 0.005
	// ExchangeRateIndia converts base-currency prices to the India region.
	ExchangeRateIndia = 1.6
	// GameWinPoints is the loyalty award for winning the daily minigame.
	GameWinPoints = 5
)

// ConvertPrice converts a catalog (base currency) price into the display
// price for the given region. Conversion rounds up so the converted price
// never undercuts the catalog price; it happens once, before discount math.
func ConvertPrice(basePrice int, region Region) int {
	if region == RegionIndia {
		return int(math.Ceil(float64(basePrice) / ExchangeRateIndia))
	}
	return basePrice
}

// PointDiscount is the amount taken off rawPrice for spending pointsToUse
// loyalty points. Rounds half away from zero, like all discount math here.
func PointDiscount(rawPrice, pointsToUse int) int {
	return int(math.Round(float64(rawPrice) * float64(pointsToUse) * DiscountPerPoint))
}

// CouponDiscount is the amount taken off rawPrice for a coupon worth the
// given fraction.
func CouponDiscount(rawPrice int, percent float64) int {
	return int(math.Round(float64(rawPrice) * percent))
}

// FinalPrice computes the charged amount: discounts are additive, not
// compounding, and the result clamps at zero.
func FinalPrice(rawPrice, pointsToUse int, couponPercent float64) int {
	final := rawPrice - PointDiscount(rawPrice, pointsToUse) - CouponDiscount(rawPrice, couponPercent)
	if final < 0 {
		return 0
	}
	return final
}

// PointsEarned returns the loyalty earn for a purchase: one point when the
// buyer spends either nothing or exactly the maximum, zero otherwise.
func PointsEarned(pointsUsed int) int {
	if pointsUsed == 0 || pointsUsed == MaxPoints {
		return 1
	}
	return 0
}

// ClampBalance keeps a loyalty balance inside [0, MaxPoints].
func ClampBalance(balance int) int {
	if balance < 0 {
		return 0
	}
	if balance > MaxPoints {
		return MaxPoints
	}
	return balance
}

// ClampPointsToUse keeps a requested points spend inside
// [0, min(balance, MaxPoints)].
func ClampPointsToUse(requested, balance int) int {
	limit := balance
	if limit > MaxPoints {
		limit = MaxPoints
	}
	if requested < 0 {
		return 0
	}
	if requested > limit {
		return limit
	}
	return requested
}
