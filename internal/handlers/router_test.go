package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrimteamx/Card-Ghar/internal/catalog"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
	"github.com/scrimteamx/Card-Ghar/internal/payments"
	"github.com/scrimteamx/Card-Ghar/internal/repositories/ledgerstore"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// newTestRouter wires the full storefront against an in-memory ledger
// with all artificial delays disabled.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)
	store := ledger.OpenMemory()
	t.Cleanup(func() { _ = store.Close() })

	loyaltyRepo, err := ledgerstore.NewLoyaltyRepository(store)
	require.NoError(t, err)
	stockRepo, err := ledgerstore.NewStockRepository(store)
	require.NoError(t, err)
	couponRepo, err := ledgerstore.NewCouponUsageRepository(store)
	require.NoError(t, err)
	historyRepo, err := ledgerstore.NewHistoryRepository(store)
	require.NoError(t, err)
	wishlistRepo, err := ledgerstore.NewWishlistRepository(store)
	require.NoError(t, err)
	contactRepo, err := ledgerstore.NewContactRepository(store)
	require.NoError(t, err)
	gameRepo, err := ledgerstore.NewGameRepository(store)
	require.NoError(t, err)
	reviewRepo, err := ledgerstore.NewReviewRepository(store)
	require.NoError(t, err)

	pricing, err := services.NewPricingEngine(services.PricingEngineDeps{})
	require.NoError(t, err)
	coupons, err := services.NewCouponService(services.CouponServiceDeps{Usage: couponRepo, Delay: -1})
	require.NoError(t, err)
	stock, err := services.NewStockService(services.StockServiceDeps{Stock: stockRepo, Catalog: cat})
	require.NoError(t, err)
	require.NoError(t, stock.Reconcile(context.Background()))
	loyalty, err := services.NewLoyaltyService(services.LoyaltyServiceDeps{Loyalty: loyaltyRepo})
	require.NoError(t, err)
	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Catalog:  cat,
		Pricing:  pricing,
		Coupons:  coupons,
		Stock:    stock,
		Loyalty:  loyalty,
		Bills:    historyRepo,
		Contacts: contactRepo,
	})
	require.NoError(t, err)
	history, err := services.NewHistoryService(services.HistoryServiceDeps{History: historyRepo})
	require.NoError(t, err)
	wishlist, err := services.NewWishlistService(services.WishlistServiceDeps{Wishlist: wishlistRepo, Catalog: cat})
	require.NoError(t, err)
	reviews, err := services.NewReviewService(services.ReviewServiceDeps{Reviews: reviewRepo, Catalog: cat})
	require.NoError(t, err)
	game, err := services.NewGameService(services.GameServiceDeps{Games: gameRepo, Loyalty: loyalty})
	require.NoError(t, err)
	support, err := services.NewSupportService(services.SupportServiceDeps{Delay: -1})
	require.NoError(t, err)

	return NewRouter(
		WithCatalogRoutes(NewCatalogHandlers(cat, stock, reviews, wishlist).Routes),
		WithCheckoutRoutes(NewCheckoutHandlers(checkout, payments.NewQRGenerator()).Routes),
		WithPurchaseRoutes(NewPurchaseHandlers(history, pricing).Routes),
		WithWishlistRoutes(NewWishlistHandlers(wishlist, stock).Routes),
		WithLoyaltyRoutes(NewLoyaltyHandlers(loyalty).Routes),
		WithGameRoutes(NewGameHandlers(game).Routes),
		WithSupportRoutes(NewSupportHandlers(support).Routes),
	)
}

func doJSON(t *testing.T, router chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = doJSON(t, router, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteNotFoundEnvelope(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route_not_found", decodeBody(t, rec)["error"])
}

func TestListProducts(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	products := payload["products"].([]any)
	assert.Len(t, products, 9)
	assert.Equal(t, "NP", payload["region"])
}

func TestListProductsIndiaPricing(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/1?region=IN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	require.Equal(t, "Robux Credit", payload["name"])
	plans := payload["plans"].([]any)
	require.NotEmpty(t, plans)
	first := plans[0].(map[string]any)
	assert.Equal(t, "INR", first["currency"])
	// 500 NPR / 1.6, rounded up.
	assert.EqualValues(t, 313, first["price"])
}

func TestProductNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product_not_found", decodeBody(t, rec)["error"])
}

func TestCheckoutFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", map[string]any{"productId": "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "plan_selection", decodeBody(t, rec)["step"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/plan", map[string]any{"planId": "rbx-400"})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody(t, rec)
	assert.Equal(t, "details_entry", state["step"])
	quote := state["quote"].(map[string]any)
	assert.EqualValues(t, 500, quote["finalPrice"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/coupon", map[string]any{"code": "SAVE5"})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeBody(t, rec)
	quote = state["quote"].(map[string]any)
	assert.EqualValues(t, 475, quote["finalPrice"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/details", map[string]any{
		"email":     "kim@example.com",
		"username":  "kim",
		"accountId": "robloxkim",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payment", decodeBody(t, rec)["step"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/checkout/quote", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 475, decodeBody(t, rec)["finalPrice"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/checkout/qr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeBody(t, rec)
	assert.Equal(t, "receipt", state["step"])
	bill := state["bill"].(map[string]any)
	assert.EqualValues(t, 475, bill["price"])
	assert.Equal(t, "SAVE5", bill["couponCode"])
	billID := bill["id"].(string)
	require.Len(t, billID, 9)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/purchases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bills := decodeBody(t, rec)["bills"].([]any)
	require.Len(t, bills, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/purchases/"+billID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Robux Credit", decodeBody(t, rec)["productName"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/purchases/"+billID+"/receipt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), billID)
	assert.Contains(t, rec.Body.String(), "Total Paid: NPR 475")
}

func TestCheckoutEmailOnlyDetailsAndFormattedReceipt(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", map[string]any{"productId": "301"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/plan", map[string]any{"planId": "dsc-year"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Discord Nitro delivers by email, so the bare address is enough.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/details", map[string]any{
		"email": "kim@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payment", decodeBody(t, rec)["step"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bill := decodeBody(t, rec)["bill"].(map[string]any)
	billID := bill["id"].(string)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/purchases/"+billID+"/receipt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total Paid: NPR 12,000")
}

func TestCheckoutReopenReplacesSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", map[string]any{"productId": "1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/plan", map[string]any{"planId": "rbx-400"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout", map[string]any{"productId": "4"})
	require.Equal(t, http.StatusCreated, rec.Code)
	state := decodeBody(t, rec)
	assert.Equal(t, "plan_selection", state["step"])
	assert.Equal(t, "Spotify Premium", state["productName"])
	assert.NotContains(t, state, "planId")
}

func TestCheckoutRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_active_checkout", decodeBody(t, rec)["error"])
}

func TestCheckoutRejectsBadCoupon(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", map[string]any{"productId": "4"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/plan", map[string]any{"planId": "spt-ind"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout/coupon", map[string]any{"code": "NOPE"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_coupon", decodeBody(t, rec)["error"])
}

func TestWishlistToggle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/wishlist/201", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["wishlisted"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wishlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody(t, rec)["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "Netflix", products[0].(map[string]any)["name"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/wishlist/201", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["wishlisted"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/wishlist/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoyaltyBalance(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/loyalty", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.EqualValues(t, 0, payload["balance"])
	assert.EqualValues(t, 20, payload["maxPoints"])
}

func TestReviewSubmitAndList(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products/4/reviews", map[string]any{
		"user":    "tester",
		"rating":  5,
		"comment": "works <b>fast</b>",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "works fast", decodeBody(t, rec)["comment"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/4/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeBody(t, rec)["reviews"].([]any)
	require.NotEmpty(t, reviews)
	assert.Equal(t, "tester", reviews[0].(map[string]any)["user"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/products/4/reviews", map[string]any{
		"user":   "tester",
		"rating": 9,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameStart(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/game", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "active", payload["status"])
	assert.EqualValues(t, 14, payload["safeTotal"])
	assert.NotContains(t, payload, "bombs")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/game", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "round_active", decodeBody(t, rec)["error"])
}

func TestSupportChat(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/support/chat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decodeBody(t, rec)["messages"].([]any)
	require.Len(t, messages, 1)
	greeting := messages[0].(map[string]any)
	assert.Equal(t, "bot", greeting["role"])
	assert.True(t, strings.Contains(greeting["text"].(string), "kim.ai"))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/support/chat", map[string]any{"text": "how do I pay?"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decodeBody(t, rec)
	assert.Equal(t, "bot", reply["role"])
	assert.True(t, strings.Contains(reply["text"].(string), "QR"))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/support/chat", map[string]any{"text": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
