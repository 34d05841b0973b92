package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// PurchaseHandlers serves the purchase history ledger.
type PurchaseHandlers struct {
	history *services.HistoryService
	pricing *services.PricingEngine
}

// NewPurchaseHandlers constructs purchase history handlers.
func NewPurchaseHandlers(history *services.HistoryService, pricing *services.PricingEngine) *PurchaseHandlers {
	return &PurchaseHandlers{history: history, pricing: pricing}
}

// Routes registers purchase history endpoints under the provided router.
func (h *PurchaseHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/purchases", h.list)
	r.Get("/purchases/{billID}", h.get)
	r.Get("/purchases/{billID}/receipt", h.receipt)
}

func (h *PurchaseHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bills, err := h.history.List(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("history_error", "failed to load purchase history", http.StatusInternalServerError))
		return
	}
	payload := make([]billPayload, 0, len(bills))
	for _, bill := range bills {
		payload = append(payload, billPayload(bill))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"bills": payload})
}

func (h *PurchaseHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	billID := pathParam(r, "billID")
	bill, err := h.history.Find(ctx, billID)
	if err != nil {
		if errors.Is(err, services.ErrBillNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("bill_not_found", "no bill "+billID, http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("history_error", "failed to load purchase history", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, billPayload(bill))
}

// receipt renders the bill as plain text for download.
func (h *PurchaseHandlers) receipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	billID := pathParam(r, "billID")
	bill, err := h.history.Find(ctx, billID)
	if err != nil {
		if errors.Is(err, services.ErrBillNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("bill_not_found", "no bill "+billID, http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("history_error", "failed to load purchase history", http.StatusInternalServerError))
		return
	}

	var b strings.Builder
	fmt.Fprintln(&b, "CARD GHAR RECEIPT")
	fmt.Fprintln(&b, "=================")
	fmt.Fprintf(&b, "Bill No:    %s\n", bill.ID)
	fmt.Fprintf(&b, "Date:       %s\n", bill.Date)
	fmt.Fprintf(&b, "Customer:   %s <%s>\n", bill.Username, bill.Email)
	fmt.Fprintf(&b, "Item:       %s (%s)\n", bill.ProductName, bill.PlanName)
	fmt.Fprintf(&b, "Original:   %s\n", h.pricing.FormatAmount(bill.Currency, bill.OriginalPrice))
	if bill.PointsUsed > 0 {
		fmt.Fprintf(&b, "KP Used:    %d\n", bill.PointsUsed)
	}
	if bill.CouponCode != "" {
		fmt.Fprintf(&b, "Coupon:     %s (-%s)\n", bill.CouponCode, h.pricing.FormatAmount(bill.Currency, bill.CouponDiscountAmount))
	}
	fmt.Fprintf(&b, "Total Paid: %s\n", h.pricing.FormatAmount(bill.Currency, bill.Price))
	if bill.PointsEarned > 0 {
		fmt.Fprintf(&b, "KP Earned:  %d\n", bill.PointsEarned)
	}
	fmt.Fprintf(&b, "Expires:    %s\n", bill.ExpiryDate)
	fmt.Fprintln(&b, "=================")
	fmt.Fprintln(&b, "Thank you for shopping with Card Ghar!")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "receipt-"+bill.ID+".txt"))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, b.String())
}
