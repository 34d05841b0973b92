package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/philippgille/gokv"
	"go.uber.org/zap"

	"github.com/scrimteamx/Card-Ghar/internal/catalog"
	"github.com/scrimteamx/Card-Ghar/internal/handlers"
	"github.com/scrimteamx/Card-Ghar/internal/ledger"
	"github.com/scrimteamx/Card-Ghar/internal/payments"
	"github.com/scrimteamx/Card-Ghar/internal/platform/config"
	"github.com/scrimteamx/Card-Ghar/internal/platform/observability"
	"github.com/scrimteamx/Card-Ghar/internal/platform/requestctx"
	"github.com/scrimteamx/Card-Ghar/internal/repositories/ledgerstore"
	"github.com/scrimteamx/Card-Ghar/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.Int("products", len(cat.Products())))

	store, err := openLedger(cfg)
	if err != nil {
		logger.Fatal("failed to open ledger store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("ledger close error", zap.Error(err))
		}
	}()

	events := eventLogger(logger)

	loyaltyRepo, err := ledgerstore.NewLoyaltyRepository(store)
	if err != nil {
		logger.Fatal("failed to build loyalty repository", zap.Error(err))
	}
	stockRepo, err := ledgerstore.NewStockRepository(store)
	if err != nil {
		logger.Fatal("failed to build stock repository", zap.Error(err))
	}
	couponRepo, err := ledgerstore.NewCouponUsageRepository(store)
	if err != nil {
		logger.Fatal("failed to build coupon usage repository", zap.Error(err))
	}
	historyRepo, err := ledgerstore.NewHistoryRepository(store)
	if err != nil {
		logger.Fatal("failed to build history repository", zap.Error(err))
	}
	wishlistRepo, err := ledgerstore.NewWishlistRepository(store)
	if err != nil {
		logger.Fatal("failed to build wishlist repository", zap.Error(err))
	}
	contactRepo, err := ledgerstore.NewContactRepository(store)
	if err != nil {
		logger.Fatal("failed to build contact repository", zap.Error(err))
	}
	gameRepo, err := ledgerstore.NewGameRepository(store)
	if err != nil {
		logger.Fatal("failed to build game repository", zap.Error(err))
	}
	reviewRepo, err := ledgerstore.NewReviewRepository(store)
	if err != nil {
		logger.Fatal("failed to build review repository", zap.Error(err))
	}

	pricingEngine, err := services.NewPricingEngine(services.PricingEngineDeps{Logger: events})
	if err != nil {
		logger.Fatal("failed to build pricing engine", zap.Error(err))
	}
	couponService, err := services.NewCouponService(services.CouponServiceDeps{
		Usage:  couponRepo,
		Delay:  cfg.Coupons.ResolveDelay,
		Logger: events,
	})
	if err != nil {
		logger.Fatal("failed to build coupon service", zap.Error(err))
	}
	stockService, err := services.NewStockService(services.StockServiceDeps{
		Stock:   stockRepo,
		Catalog: cat,
		Logger:  events,
	})
	if err != nil {
		logger.Fatal("failed to build stock service", zap.Error(err))
	}
	if err := stockService.Reconcile(ctx); err != nil {
		logger.Fatal("failed to reconcile stock levels", zap.Error(err))
	}
	loyaltyService, err := services.NewLoyaltyService(services.LoyaltyServiceDeps{
		Loyalty: loyaltyRepo,
		Logger:  events,
	})
	if err != nil {
		logger.Fatal("failed to build loyalty service", zap.Error(err))
	}
	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Catalog:  cat,
		Pricing:  pricingEngine,
		Coupons:  couponService,
		Stock:    stockService,
		Loyalty:  loyaltyService,
		Bills:    historyRepo,
		Contacts: contactRepo,
		Logger:   events,
	})
	if err != nil {
		logger.Fatal("failed to build checkout service", zap.Error(err))
	}
	historyService, err := services.NewHistoryService(services.HistoryServiceDeps{History: historyRepo})
	if err != nil {
		logger.Fatal("failed to build history service", zap.Error(err))
	}
	wishlistService, err := services.NewWishlistService(services.WishlistServiceDeps{
		Wishlist: wishlistRepo,
		Catalog:  cat,
		Logger:   events,
	})
	if err != nil {
		logger.Fatal("failed to build wishlist service", zap.Error(err))
	}
	reviewService, err := services.NewReviewService(services.ReviewServiceDeps{
		Reviews: reviewRepo,
		Catalog: cat,
	})
	if err != nil {
		logger.Fatal("failed to build review service", zap.Error(err))
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	opts := []handlers.Option{
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(nil)),
		handlers.WithCatalogRoutes(handlers.NewCatalogHandlers(cat, stockService, reviewService, wishlistService).Routes),
		handlers.WithCheckoutRoutes(handlers.NewCheckoutHandlers(checkoutService, payments.NewQRGenerator()).Routes),
		handlers.WithPurchaseRoutes(handlers.NewPurchaseHandlers(historyService, pricingEngine).Routes),
		handlers.WithWishlistRoutes(handlers.NewWishlistHandlers(wishlistService, stockService).Routes),
		handlers.WithLoyaltyRoutes(handlers.NewLoyaltyHandlers(loyaltyService).Routes),
	}

	if cfg.Features.EnableGame {
		gameService, err := services.NewGameService(services.GameServiceDeps{
			Games:   gameRepo,
			Loyalty: loyaltyService,
			Logger:  events,
		})
		if err != nil {
			logger.Fatal("failed to build game service", zap.Error(err))
		}
		opts = append(opts, handlers.WithGameRoutes(handlers.NewGameHandlers(gameService).Routes))
	}
	if cfg.Features.EnableSupport {
		supportService, err := services.NewSupportService(services.SupportServiceDeps{
			Delay:  cfg.Support.ReplyDelay,
			Logger: events,
		})
		if err != nil {
			logger.Fatal("failed to build support service", zap.Error(err))
		}
		opts = append(opts, handlers.WithSupportRoutes(handlers.NewSupportHandlers(supportService).Routes))
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      observability.TraceHandler(router, "card-ghar"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("card ghar storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if path := cfg.Storefront.CatalogFile; path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Load()
}

func openLedger(cfg config.Config) (gokv.Store, error) {
	if cfg.Storefront.InMemory {
		return ledger.OpenMemory(), nil
	}
	return ledger.OpenFile(cfg.Storefront.DataDir)
}

// eventLogger adapts the zap logger to the event callback the services
// accept, preferring the request-scoped logger when one is present.
func eventLogger(fallback *zap.Logger) func(context.Context, string, map[string]any) {
	return func(ctx context.Context, event string, fields map[string]any) {
		logger := requestctx.Logger(ctx)
		if logger == requestctx.NoopLogger() {
			logger = fallback
		}
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}
