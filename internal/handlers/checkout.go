package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/payments"
	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// CheckoutHandlers exposes the four-step checkout flow over HTTP.
type CheckoutHandlers struct {
	checkout *services.CheckoutService
	qr       *payments.QRGenerator
}

// NewCheckoutHandlers constructs checkout handlers.
func NewCheckoutHandlers(checkout *services.CheckoutService, qr *payments.QRGenerator) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout, qr: qr}
}

// Routes registers checkout endpoints under the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/checkout", h.open)
	r.Get("/checkout", h.current)
	r.Delete("/checkout", h.close)
	r.Post("/checkout/plan", h.selectPlan)
	r.Post("/checkout/back", h.back)
	r.Post("/checkout/points", h.setPoints)
	r.Post("/checkout/coupon", h.applyCoupon)
	r.Delete("/checkout/coupon", h.removeCoupon)
	r.Post("/checkout/details", h.submitDetails)
	r.Get("/checkout/quote", h.quote)
	r.Get("/checkout/qr", h.paymentQR)
	r.Post("/checkout/confirm", h.confirm)
}

type openCheckoutRequest struct {
	ProductID string `json:"productId"`
	Region    string `json:"region"`
}

type selectPlanRequest struct {
	PlanID string `json:"planId"`
}

type setPointsRequest struct {
	Points int `json:"points"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type submitDetailsRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	AccountID string `json:"accountId"`
}

type quotePayload struct {
	Currency       string `json:"currency"`
	OriginalPrice  int    `json:"originalPrice"`
	PointsUsed     int    `json:"pointsUsed"`
	PointDiscount  int    `json:"pointDiscount"`
	CouponCode     string `json:"couponCode,omitempty"`
	CouponDiscount int    `json:"couponDiscount"`
	FinalPrice     int    `json:"finalPrice"`
	PointsEarned   int    `json:"pointsEarned"`
}

type appliedCouponPayload struct {
	Code    string  `json:"code"`
	Percent float64 `json:"percent"`
}

type billPayload struct {
	ID                   string `json:"id"`
	Date                 string `json:"date"`
	ProductName          string `json:"productName"`
	PlanName             string `json:"planName"`
	Email                string `json:"email"`
	Username             string `json:"username"`
	Price                int    `json:"price"`
	OriginalPrice        int    `json:"originalPrice"`
	PointsUsed           int    `json:"pointsUsed"`
	PointsEarned         int    `json:"pointsEarned"`
	CouponCode           string `json:"couponCode,omitempty"`
	CouponDiscountAmount int    `json:"couponDiscountAmount"`
	Currency             string `json:"currency"`
	ExpiryDate           string `json:"expiryDate"`
}

type checkoutStatePayload struct {
	SessionID   string                `json:"sessionId"`
	Step        string                `json:"step"`
	Region      string                `json:"region"`
	ProductID   string                `json:"productId"`
	ProductName string                `json:"productName"`
	PlanID      string                `json:"planId,omitempty"`
	PlanName    string                `json:"planName,omitempty"`
	Email       string                `json:"email"`
	Username    string                `json:"username"`
	AccountID   string                `json:"accountId,omitempty"`
	PointsToUse int                   `json:"pointsToUse"`
	Balance     int                   `json:"balance"`
	Coupon      *appliedCouponPayload `json:"coupon,omitempty"`
	Quote       *quotePayload         `json:"quote,omitempty"`
	Bill        *billPayload          `json:"bill,omitempty"`
}

func (h *CheckoutHandlers) open(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req openCheckoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	region := regionFromRequest(r)
	if req.Region != "" {
		region = domain.ParseRegion(req.Region)
	}
	state, err := h.checkout.Open(ctx, req.ProductID, region)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, toCheckoutStatePayload(state))
}

func (h *CheckoutHandlers) current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.checkout.Current(ctx)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

func (h *CheckoutHandlers) close(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.checkout.Close(ctx); err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandlers) selectPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req selectPlanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	state, err := h.checkout.SelectPlan(ctx, req.PlanID)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

func (h *CheckoutHandlers) back(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.checkout.Back(ctx)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

func (h *CheckoutHandlers) setPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req setPointsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	state, err := h.checkout.SetPoints(ctx, req.Points)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

func (h *CheckoutHandlers) applyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req applyCouponRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	state, err := h.checkout.ApplyCoupon(ctx, req.Code)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

func (h *CheckoutHandlers) removeCoupon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.checkout.RemoveCoupon(ctx)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

func (h *CheckoutHandlers) submitDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req submitDetailsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	state, err := h.checkout.SubmitDetails(ctx, req.Email, req.Username, req.AccountID)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

// quote returns just the price breakdown for the active session.
func (h *CheckoutHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.checkout.Current(ctx)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	if state.Quote == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_step", "no plan selected yet", http.StatusConflict))
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state).Quote)
}

// paymentQR renders the PNG for the amount due on the active session. The
// session must be at the payment step.
func (h *CheckoutHandlers) paymentQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.checkout.Current(ctx)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	if state.Step != domain.StepPayment || state.Quote == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_step", "payment code is only available at the payment step", http.StatusConflict))
		return
	}
	png, err := h.qr.PaymentPNG(state.Quote.FinalPrice, state.Region)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("qr_error", "failed to render payment code", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *CheckoutHandlers) confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.checkout.Confirm(ctx)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toCheckoutStatePayload(state))
}

func toCheckoutStatePayload(state services.CheckoutState) checkoutStatePayload {
	payload := checkoutStatePayload{
		SessionID:   state.SessionID,
		Step:        state.Step.String(),
		Region:      string(state.Region),
		ProductID:   state.Product.ID,
		ProductName: state.Product.Name,
		Email:       state.Email,
		Username:    state.Username,
		AccountID:   state.AccountID,
		PointsToUse: state.PointsToUse,
		Balance:     state.Balance,
	}
	if state.Plan != nil {
		payload.PlanID = state.Plan.ID
		payload.PlanName = state.Plan.Name
	}
	if state.Coupon != nil {
		payload.Coupon = &appliedCouponPayload{Code: state.Coupon.Code, Percent: state.Coupon.Percent}
	}
	if state.Quote != nil {
		payload.Quote = &quotePayload{
			Currency:       state.Quote.Currency,
			OriginalPrice:  state.Quote.OriginalPrice,
			PointsUsed:     state.Quote.PointsUsed,
			PointDiscount:  state.Quote.PointDiscount,
			CouponCode:     state.Quote.CouponCode,
			CouponDiscount: state.Quote.CouponDiscount,
			FinalPrice:     state.Quote.FinalPrice,
			PointsEarned:   state.Quote.PointsEarned,
		}
	}
	if state.Bill != nil {
		bill := billPayload(*state.Bill)
		payload.Bill = &bill
	}
	return payload
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrNoActiveCheckout):
		httpx.WriteError(ctx, w, httpx.NewError("no_active_checkout", "no checkout session is open", http.StatusNotFound))
	case errors.Is(err, services.ErrInvalidStep):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_step", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCouponResolveInFlight):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_resolving", "a coupon is already being checked", http.StatusConflict))
	case errors.Is(err, services.ErrCouponInvalidCode):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_coupon", "coupon code is not valid", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCouponAlreadyUsed):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_used", "coupon code has already been redeemed", http.StatusConflict))
	case errors.Is(err, services.ErrOutOfStock):
		httpx.WriteError(ctx, w, httpx.NewError("out_of_stock", "the selected plan is sold out", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "checkout operation failed", http.StatusInternalServerError))
	}
}
