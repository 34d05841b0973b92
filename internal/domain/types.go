package domain

import (
	"time"
)

// Region identifies the storefront pricing region.
type Region string

const (
	// RegionNepal is the base region; catalog prices are expressed in NPR.
	RegionNepal Region = "NP"
	// RegionIndia is the secondary region; prices convert to INR on display.
	RegionIndia Region = "IN"
)

// Currency returns the currency code shown for the region.
func (r Region) Currency() string {
	if r == RegionIndia {
		return "INR"
	}
	return "NPR"
}

// ParseRegion normalises a user-supplied region token, defaulting to Nepal.
func ParseRegion(value string) Region {
	switch value {
	case "IN", "in", "IND", "ind":
		return RegionIndia
	default:
		return RegionNepal
	}
}

// Plan is a purchasable SKU within a product. Stock here is the catalog
// default; live stock lives in the stock ledger.
type Plan struct {
	ID       string
	Name     string
	Price    int
	Features []string
	Validity string
	Stock    int
}

// Review is a customer review attached to a product.
type Review struct {
	ID      string
	User    string
	Rating  int
	Comment string
	Date    string
}

// Product is immutable catalog reference data.
type Product struct {
	ID                string
	Name              string
	Category          string
	Delivery          string
	Image             string
	Description       string
	RequiresAccountID bool
	Plans             []Plan
	Reviews           []Review
}

// Plan returns the plan with the given id, if present.
func (p Product) Plan(planID string) (Plan, bool) {
	for _, plan := range p.Plans {
		if plan.ID == planID {
			return plan, true
		}
	}
	return Plan{}, false
}

// AppliedCoupon is a resolved, not-yet-consumed coupon attached to an
// in-progress checkout.
type AppliedCoupon struct {
	Code    string
	Percent float64
}

// Bill is the immutable receipt record of a completed purchase.
type Bill struct {
	ID                   string
	Date                 string
	ProductName          string
	PlanName             string
	Email                string
	Username             string
	Price                int
	OriginalPrice        int
	PointsUsed           int
	PointsEarned         int
	CouponCode           string
	CouponDiscountAmount int
	Currency             string
	ExpiryDate           string
}

// CheckoutStep enumerates the linear checkout flow.
type CheckoutStep int

const (
	// StepPlanSelection is the initial step of every checkout session.
	StepPlanSelection CheckoutStep = iota + 1
	// StepDetailsEntry collects contact details, points and coupon.
	StepDetailsEntry
	// StepPayment shows the QR payment artifact and awaits confirmation.
	StepPayment
	// StepReceipt is terminal; the session exits only via close.
	StepReceipt
)

func (s CheckoutStep) String() string {
	switch s {
	case StepPlanSelection:
		return "plan_selection"
	case StepDetailsEntry:
		return "details_entry"
	case StepPayment:
		return "payment"
	case StepReceipt:
		return "receipt"
	default:
		return "unknown"
	}
}

// ChatMessage is a single support chat exchange entry.
type ChatMessage struct {
	ID        string
	Role      string
	Text      string
	CreatedAt time.Time
}
