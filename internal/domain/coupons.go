package domain

// Coupons is the static coupon table mapping a code to its discount
// fraction. Every code is one-time-use, tracked by the used-coupons ledger.
var Coupons = map[string]float64{
	"KIMNEW2":  0.02,
	"KIMGIFT":  0.02,
	"KIMTIHAR": 0.03,
	"KIMXMAS":  0.03,
	"SAVE5":    0.05,
}
