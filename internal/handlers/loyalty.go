package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// LoyaltyHandlers serves the Kim Points balance.
type LoyaltyHandlers struct {
	loyalty *services.LoyaltyService
}

// NewLoyaltyHandlers constructs loyalty handlers.
func NewLoyaltyHandlers(loyalty *services.LoyaltyService) *LoyaltyHandlers {
	return &LoyaltyHandlers{loyalty: loyalty}
}

// Routes registers loyalty endpoints under the provided router.
func (h *LoyaltyHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/loyalty", h.balance)
}

func (h *LoyaltyHandlers) balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	balance, err := h.loyalty.Balance(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("loyalty_error", "failed to load points balance", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"balance":          balance,
		"maxPoints":        domain.MaxPoints,
		"discountPerPoint": domain.DiscountPerPoint,
	})
}
