package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scrimteamx/Card-Ghar/internal/catalog"
	"github.com/scrimteamx/Card-Ghar/internal/domain"
	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

// CatalogHandlers serves the product catalog with live stock and
// region-priced plans.
type CatalogHandlers struct {
	catalog  services.ProductCatalog
	stock    *services.StockService
	reviews  *services.ReviewService
	wishlist *services.WishlistService
}

// NewCatalogHandlers constructs catalog handlers.
func NewCatalogHandlers(catalog services.ProductCatalog, stock *services.StockService, reviews *services.ReviewService, wishlist *services.WishlistService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, stock: stock, reviews: reviews, wishlist: wishlist}
}

// Routes registers catalog endpoints under the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/products/{productID}/reviews", h.listReviews)
	r.Post("/products/{productID}/reviews", h.submitReview)
}

type planPayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Currency string   `json:"currency"`
	Features []string `json:"features"`
	Validity string   `json:"validity"`
	Stock    int      `json:"stock"`
	SoldOut  bool     `json:"soldOut"`
}

type productPayload struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Category          string        `json:"category"`
	Delivery          string        `json:"delivery"`
	Image             string        `json:"image"`
	Description       string        `json:"description"`
	RequiresAccountID bool          `json:"requiresAccountId"`
	Wishlisted        bool          `json:"wishlisted"`
	Plans             []planPayload `json:"plans"`
}

type reviewPayload struct {
	ID      string `json:"id"`
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

type submitReviewRequest struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region := regionFromRequest(r)
	levels, err := h.stock.Levels(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to load stock levels", http.StatusInternalServerError))
		return
	}

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	category := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category")))

	products := h.catalog.Products()
	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		if category != "" && category != "all" && product.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(product.Name), query) {
			continue
		}
		wishlisted, err := h.wishlist.Contains(ctx, product.ID)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to load wishlist", http.StatusInternalServerError))
			return
		}
		payload = append(payload, toProductPayload(product, region, levels, wishlisted))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": payload, "region": string(region)})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := pathParam(r, "productID")
	product, err := h.catalog.Product(productID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "unknown product "+productID, http.StatusNotFound))
		return
	}
	levels, err := h.stock.Levels(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to load stock levels", http.StatusInternalServerError))
		return
	}
	wishlisted, err := h.wishlist.Contains(ctx, product.ID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to load wishlist", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, toProductPayload(product, regionFromRequest(r), levels, wishlisted))
}

func (h *CatalogHandlers) listReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := pathParam(r, "productID")
	reviews, err := h.reviews.List(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "unknown product "+productID, http.StatusNotFound))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("review_error", "failed to load reviews", http.StatusInternalServerError))
		return
	}
	payload := make([]reviewPayload, 0, len(reviews))
	for _, review := range reviews {
		payload = append(payload, reviewPayload(review))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"reviews": payload})
}

func (h *CatalogHandlers) submitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req submitReviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	review, err := h.reviews.Submit(ctx, services.SubmitReviewCommand{
		ProductID: pathParam(r, "productID"),
		User:      req.User,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		if errors.Is(err, services.ErrReviewInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("review_error", "failed to store review", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusCreated, reviewPayload(review))
}

func toProductPayload(product domain.Product, region domain.Region, levels map[string]int, wishlisted bool) productPayload {
	payload := productPayload{
		ID:                product.ID,
		Name:              product.Name,
		Category:          product.Category,
		Delivery:          product.Delivery,
		Image:             product.Image,
		Description:       product.Description,
		RequiresAccountID: product.RequiresAccountID,
		Wishlisted:        wishlisted,
		Plans:             make([]planPayload, 0, len(product.Plans)),
	}
	for _, plan := range product.Plans {
		stock, tracked := levels[plan.ID]
		if !tracked {
			stock = plan.Stock
		}
		payload.Plans = append(payload.Plans, planPayload{
			ID:       plan.ID,
			Name:     plan.Name,
			Price:    domain.ConvertPrice(plan.Price, region),
			Currency: region.Currency(),
			Features: plan.Features,
			Validity: plan.Validity,
			Stock:    stock,
			SoldOut:  stock <= 0,
		})
	}
	return payload
}

func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(value); err == nil {
		value = decoded
	}
	return strings.TrimSpace(value)
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body too large", http.StatusRequestEntityTooLarge))
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "failed to read request body", http.StatusBadRequest))
	}
}
