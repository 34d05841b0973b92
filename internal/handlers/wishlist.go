package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scrimteamx/Card-Ghar/internal/catalog"
	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// WishlistHandlers serves the saved-for-later product list.
type WishlistHandlers struct {
	wishlist *services.WishlistService
	stock    *services.StockService
}

// NewWishlistHandlers constructs wishlist handlers.
func NewWishlistHandlers(wishlist *services.WishlistService, stock *services.StockService) *WishlistHandlers {
	return &WishlistHandlers{wishlist: wishlist, stock: stock}
}

// Routes registers wishlist endpoints under the provided router.
func (h *WishlistHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/wishlist", h.list)
	r.Post("/wishlist/{productID}", h.toggle)
}

func (h *WishlistHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.wishlist.List(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_error", "failed to load wishlist", http.StatusInternalServerError))
		return
	}
	levels, err := h.stock.Levels(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_error", "failed to load stock levels", http.StatusInternalServerError))
		return
	}
	region := regionFromRequest(r)
	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, toProductPayload(product, region, levels, true))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": payload})
}

func (h *WishlistHandlers) toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := pathParam(r, "productID")
	wishlisted, err := h.wishlist.Toggle(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "unknown product "+productID, http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_error", "failed to update wishlist", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"productId": productID, "wishlisted": wishlisted})
}
