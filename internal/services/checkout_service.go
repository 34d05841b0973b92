package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

var (
	// ErrNoActiveCheckout is returned when an operation needs a session and
	// none is open.
	ErrNoActiveCheckout = errors.New("checkout: no active session")
	// ErrInvalidStep is returned when an operation is not legal at the
	// session's current step.
	ErrInvalidStep = errors.New("checkout: operation not allowed at this step")
	// ErrCouponResolveInFlight rejects a second apply while one resolves.
	ErrCouponResolveInFlight = errors.New("checkout: coupon resolution in flight")
	// ErrCheckoutInvalidInput signals malformed contact details or ids.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
)

const billIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// billIDLength matches the receipt numbers customers already have.
const billIDLength = 9

// CheckoutService drives the four-step purchase flow. One session exists
// at a time; all transitions go through the session mutex, except coupon
// resolution which deliberately runs outside it.
type CheckoutService struct {
	catalog  ProductCatalog
	pricing  Quoter
	coupons  CouponResolver
	stock    StockGate
	loyalty  LoyaltyLedger
	bills    BillRecorder
	contacts ContactMemory
	idGen    func() string
	billID   func() (string, error)
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)

	mu      sync.Mutex
	session *checkoutSession
}

type checkoutSession struct {
	id          string
	step        domain.CheckoutStep
	region      domain.Region
	product     domain.Product
	plan        *domain.Plan
	email       string
	username    string
	accountID   string
	pointsToUse int
	coupon      *domain.AppliedCoupon
	resolving   bool
	bill        *domain.Bill
}

// CheckoutServiceDeps carries the collaborators for NewCheckoutService.
type CheckoutServiceDeps struct {
	Catalog  ProductCatalog
	Pricing  Quoter
	Coupons  CouponResolver
	Stock    StockGate
	Loyalty  LoyaltyLedger
	Bills    BillRecorder
	Contacts ContactMemory
	IDGen    func() string
	BillID   func() (string, error)
	Now      func() time.Time
	Logger   func(context.Context, string, map[string]any)
}

// NewCheckoutService constructs the service.
func NewCheckoutService(deps CheckoutServiceDeps) (*CheckoutService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("checkout service: catalog is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("checkout service: pricing engine is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("checkout service: coupon resolver is required")
	}
	if deps.Stock == nil {
		return nil, errors.New("checkout service: stock gate is required")
	}
	if deps.Loyalty == nil {
		return nil, errors.New("checkout service: loyalty ledger is required")
	}
	if deps.Bills == nil {
		return nil, errors.New("checkout service: bill recorder is required")
	}
	if deps.Contacts == nil {
		return nil, errors.New("checkout service: contact memory is required")
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	billID := deps.BillID
	if billID == nil {
		billID = newBillID
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &CheckoutService{
		catalog:  deps.Catalog,
		pricing:  deps.Pricing,
		coupons:  deps.Coupons,
		stock:    deps.Stock,
		loyalty:  deps.Loyalty,
		bills:    deps.Bills,
		contacts: deps.Contacts,
		idGen:    idGen,
		billID:   billID,
		now:      func() time.Time { return now().UTC() },
		logger:   logger,
	}, nil
}

// CheckoutState is the snapshot handed to the serving layer after every
// transition.
type CheckoutState struct {
	SessionID   string
	Step        domain.CheckoutStep
	Region      domain.Region
	Product     domain.Product
	Plan        *domain.Plan
	Email       string
	Username    string
	AccountID   string
	PointsToUse int
	Balance     int
	Coupon      *domain.AppliedCoupon
	Quote       *Quote
	Bill        *domain.Bill
}

// Open starts a checkout for a product, discarding any previous session.
// Contact fields are prefilled from the last submitted details.
func (s *CheckoutService) Open(ctx context.Context, productID string, region domain.Region) (CheckoutState, error) {
	product, err := s.catalog.Product(productID)
	if err != nil {
		return CheckoutState{}, fmt.Errorf("%w: product %q", ErrCheckoutInvalidInput, productID)
	}
	email, username, err := s.contacts.LastContact(ctx)
	if err != nil {
		return CheckoutState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.logger(ctx, "checkout_discarded", map[string]any{"sessionId": s.session.id, "step": s.session.step.String()})
	}
	s.session = &checkoutSession{
		id:       s.idGen(),
		step:     domain.StepPlanSelection,
		region:   region,
		product:  product,
		email:    email,
		username: username,
	}
	s.logger(ctx, "checkout_opened", map[string]any{"sessionId": s.session.id, "productId": productID, "region": string(region)})
	return s.stateLocked(ctx)
}

// Current returns the active session snapshot.
func (s *CheckoutService) Current(ctx context.Context) (CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	return s.stateLocked(ctx)
}

// SelectPlan picks a plan and advances to details entry, resetting any
// points chosen for a previously selected plan. Sold-out plans are
// rejected up front; stock is checked again at confirmation.
func (s *CheckoutService) SelectPlan(ctx context.Context, planID string) (CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	if s.session.step != domain.StepPlanSelection {
		return CheckoutState{}, fmt.Errorf("%w: select plan at %s", ErrInvalidStep, s.session.step)
	}
	plan, ok := s.session.product.Plan(planID)
	if !ok {
		return CheckoutState{}, fmt.Errorf("%w: plan %q", ErrCheckoutInvalidInput, planID)
	}
	remaining, err := s.stock.Available(ctx, planID)
	if err != nil {
		return CheckoutState{}, err
	}
	if remaining <= 0 {
		return CheckoutState{}, fmt.Errorf("%w: %s", ErrOutOfStock, planID)
	}
	s.session.plan = &plan
	s.session.pointsToUse = 0
	s.session.step = domain.StepDetailsEntry
	s.logger(ctx, "checkout_plan_selected", map[string]any{"sessionId": s.session.id, "planId": planID})
	return s.stateLocked(ctx)
}

// Back steps the session one step towards plan selection. Entered details
// and an applied coupon survive the round trip; points reset if a plan is
// picked again.
func (s *CheckoutService) Back(ctx context.Context) (CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	switch s.session.step {
	case domain.StepDetailsEntry:
		s.session.step = domain.StepPlanSelection
	case domain.StepPayment:
		s.session.step = domain.StepDetailsEntry
	default:
		return CheckoutState{}, fmt.Errorf("%w: back at %s", ErrInvalidStep, s.session.step)
	}
	return s.stateLocked(ctx)
}

// SetPoints sets the points to spend on this purchase, clamped to the
// balance and the per-purchase maximum.
func (s *CheckoutService) SetPoints(ctx context.Context, points int) (CheckoutState, error) {
	if points < 0 {
		return CheckoutState{}, fmt.Errorf("%w: negative points", ErrCheckoutInvalidInput)
	}
	balance, err := s.loyalty.Balance(ctx)
	if err != nil {
		return CheckoutState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	if s.session.step != domain.StepDetailsEntry {
		return CheckoutState{}, fmt.Errorf("%w: set points at %s", ErrInvalidStep, s.session.step)
	}
	s.session.pointsToUse = domain.ClampPointsToUse(points, balance)
	return s.stateLocked(ctx)
}

// ApplyCoupon resolves a code and attaches it to the session. The resolve
// call runs without the session mutex so the flow stays responsive, and a
// second apply during resolution is rejected.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, code string) (CheckoutState, error) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return CheckoutState{}, ErrNoActiveCheckout
	}
	if s.session.step != domain.StepDetailsEntry {
		step := s.session.step
		s.mu.Unlock()
		return CheckoutState{}, fmt.Errorf("%w: apply coupon at %s", ErrInvalidStep, step)
	}
	if s.session.resolving {
		s.mu.Unlock()
		return CheckoutState{}, ErrCouponResolveInFlight
	}
	s.session.resolving = true
	sessionID := s.session.id
	s.mu.Unlock()

	coupon, err := s.coupons.Resolve(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.id == sessionID {
		s.session.resolving = false
	}
	if err != nil {
		return CheckoutState{}, err
	}
	if s.session == nil || s.session.id != sessionID {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	if s.session.step != domain.StepDetailsEntry {
		return CheckoutState{}, fmt.Errorf("%w: apply coupon at %s", ErrInvalidStep, s.session.step)
	}
	s.session.coupon = &coupon
	s.logger(ctx, "checkout_coupon_applied", map[string]any{"sessionId": sessionID, "code": coupon.Code})
	return s.stateLocked(ctx)
}

// RemoveCoupon detaches the applied coupon, if any.
func (s *CheckoutService) RemoveCoupon(ctx context.Context) (CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	if s.session.step != domain.StepDetailsEntry {
		return CheckoutState{}, fmt.Errorf("%w: remove coupon at %s", ErrInvalidStep, s.session.step)
	}
	s.session.coupon = nil
	return s.stateLocked(ctx)
}

// SubmitDetails validates contact details and advances to payment. Email
// is always required; the username and gaming account id only for
// products that deliver to an account. Submitted details become the
// prefill for the next checkout.
func (s *CheckoutService) SubmitDetails(ctx context.Context, email, username, accountID string) (CheckoutState, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	accountID = strings.TrimSpace(accountID)
	if email == "" {
		return CheckoutState{}, fmt.Errorf("%w: email", ErrCheckoutInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	if s.session.step != domain.StepDetailsEntry {
		return CheckoutState{}, fmt.Errorf("%w: submit details at %s", ErrInvalidStep, s.session.step)
	}
	if s.session.product.RequiresAccountID {
		if username == "" {
			return CheckoutState{}, fmt.Errorf("%w: username required for %s", ErrCheckoutInvalidInput, s.session.product.Name)
		}
		if accountID == "" {
			return CheckoutState{}, fmt.Errorf("%w: account id required for %s", ErrCheckoutInvalidInput, s.session.product.Name)
		}
	}
	if err := s.contacts.SaveLastContact(ctx, email, username); err != nil {
		return CheckoutState{}, err
	}
	s.session.email = email
	s.session.username = username
	s.session.accountID = accountID
	s.session.step = domain.StepPayment
	s.logger(ctx, "checkout_details_submitted", map[string]any{"sessionId": s.session.id})
	return s.stateLocked(ctx)
}

// Confirm commits the purchase: stock is re-validated and decremented, the
// coupon is consumed, earned points are awarded, and the bill is recorded.
// A sold-out plan at this point closes the session.
func (s *CheckoutService) Confirm(ctx context.Context) (CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return CheckoutState{}, ErrNoActiveCheckout
	}
	if s.session.step != domain.StepPayment {
		return CheckoutState{}, fmt.Errorf("%w: confirm at %s", ErrInvalidStep, s.session.step)
	}
	sess := s.session

	if err := s.stock.Reserve(ctx, sess.plan.ID); err != nil {
		if errors.Is(err, ErrOutOfStock) {
			s.logger(ctx, "checkout_closed_out_of_stock", map[string]any{"sessionId": sess.id, "planId": sess.plan.ID})
			s.session = nil
		}
		return CheckoutState{}, err
	}

	quote, err := s.quoteLocked(ctx)
	if err != nil {
		return CheckoutState{}, err
	}

	if sess.coupon != nil {
		if err := s.coupons.Consume(ctx, sess.coupon.Code); err != nil {
			return CheckoutState{}, err
		}
	}
	if quote.PointsEarned > 0 {
		if _, err := s.loyalty.Award(ctx, quote.PointsEarned); err != nil {
			return CheckoutState{}, err
		}
	}

	id, err := s.billID()
	if err != nil {
		return CheckoutState{}, err
	}
	now := s.now()
	bill := domain.Bill{
		ID:                   id,
		Date:                 now.Format("January 2, 2006"),
		ProductName:          sess.product.Name,
		PlanName:             sess.plan.Name,
		Email:                sess.email,
		Username:             sess.username,
		Price:                quote.FinalPrice,
		OriginalPrice:        quote.OriginalPrice,
		PointsUsed:           quote.PointsUsed,
		PointsEarned:         quote.PointsEarned,
		CouponCode:           quote.CouponCode,
		CouponDiscountAmount: quote.CouponDiscount,
		Currency:             quote.Currency,
		ExpiryDate:           domain.ExpiryFromValidity(now, sess.plan.Validity),
	}
	if err := s.bills.Append(ctx, bill); err != nil {
		return CheckoutState{}, err
	}

	sess.bill = &bill
	sess.step = domain.StepReceipt
	s.logger(ctx, "checkout_confirmed", map[string]any{"sessionId": sess.id, "billId": bill.ID, "final": bill.Price})
	return s.stateLocked(ctx)
}

// Close ends the session at any step.
func (s *CheckoutService) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ErrNoActiveCheckout
	}
	s.logger(ctx, "checkout_closed", map[string]any{"sessionId": s.session.id, "step": s.session.step.String()})
	s.session = nil
	return nil
}

func (s *CheckoutService) stateLocked(ctx context.Context) (CheckoutState, error) {
	sess := s.session
	balance, err := s.loyalty.Balance(ctx)
	if err != nil {
		return CheckoutState{}, err
	}
	state := CheckoutState{
		SessionID:   sess.id,
		Step:        sess.step,
		Region:      sess.region,
		Product:     sess.product,
		Plan:        sess.plan,
		Email:       sess.email,
		Username:    sess.username,
		AccountID:   sess.accountID,
		PointsToUse: sess.pointsToUse,
		Balance:     balance,
		Coupon:      sess.coupon,
		Bill:        sess.bill,
	}
	if sess.plan != nil {
		quote, err := s.quoteLocked(ctx)
		if err != nil {
			return CheckoutState{}, err
		}
		state.Quote = &quote
	}
	return state, nil
}

func (s *CheckoutService) quoteLocked(ctx context.Context) (Quote, error) {
	sess := s.session
	if sess.plan == nil {
		return Quote{}, fmt.Errorf("%w: no plan selected", ErrInvalidStep)
	}
	balance, err := s.loyalty.Balance(ctx)
	if err != nil {
		return Quote{}, err
	}
	return s.pricing.Quote(ctx, QuoteCommand{
		BasePrice:   sess.plan.Price,
		Region:      sess.region,
		PointsToUse: sess.pointsToUse,
		Balance:     balance,
		Coupon:      sess.coupon,
	})
}

func newBillID() (string, error) {
	buf := make([]byte, billIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("checkout: bill id: %w", err)
	}
	id := make([]byte, billIDLength)
	for i, b := range buf {
		id[i] = billIDAlphabet[int(b)%len(billIDAlphabet)]
	}
	return string(id), nil
}
