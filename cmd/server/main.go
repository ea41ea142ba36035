package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	orderapp "github.com/commerce/backend/internal/application/order"
	paymentapp "github.com/commerce/backend/internal/application/payment"
	"github.com/commerce/backend/internal/infrastructure/cache"
	"github.com/commerce/backend/internal/infrastructure/config"
	"github.com/commerce/backend/internal/infrastructure/event"
	"github.com/commerce/backend/internal/infrastructure/logger"
	gatewayinfra "github.com/commerce/backend/internal/infrastructure/payment"
	"github.com/commerce/backend/internal/infrastructure/persistence"
	"github.com/commerce/backend/internal/infrastructure/scheduler"
	"github.com/commerce/backend/internal/interfaces/http/handler"
	"github.com/commerce/backend/internal/interfaces/http/middleware"
	"github.com/commerce/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Commerce Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with GORM logging backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	refundRepo := persistence.NewGormRefundRepository(db.DB)

	// Idempotency store (redis when configured, in-memory otherwise)
	idempotencyStore := cache.NewIdempotencyStore(cfg.Redis, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Payment gateways fall back to the mock backend when no live
	// credentials are present
	paytmGateway, err := gatewayinfra.NewPaytmGateway(&gatewayinfra.PaytmConfig{
		MerchantID:   cfg.Paytm.MerchantID,
		MerchantKey:  cfg.Paytm.MerchantKey,
		Website:      cfg.Paytm.Website,
		IndustryType: cfg.Paytm.IndustryType,
		ChannelID:    cfg.Paytm.ChannelID,
		CallbackURL:  cfg.Paytm.CallbackURL,
		IsSandbox:    cfg.Paytm.IsSandbox,
	}, log)
	if err != nil {
		log.Fatal("Failed to build Paytm gateway", zap.Error(err))
	}

	razorpayGateway, err := gatewayinfra.NewRazorpayGateway(&gatewayinfra.RazorpayConfig{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		CallbackURL:   cfg.Razorpay.CallbackURL,
	}, log)
	if err != nil {
		log.Fatal("Failed to build Razorpay gateway", zap.Error(err))
	}

	gatewayRegistry := gatewayinfra.NewRegistry(paytmGateway, razorpayGateway)

	// Event bus with notification fan-out
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	notificationHandler := orderapp.NewNotificationHandler(
		orderapp.NewLogNotificationDispatcher(log),
		log,
	)
	eventBus.Subscribe(event.NewIdempotentHandler(notificationHandler, idempotencyStore, log))

	// Application services
	orderService := orderapp.NewService(orderRepo, log)
	orderService.SetEventPublisher(eventBus)

	paymentService := paymentapp.NewService(
		txRepo,
		refundRepo,
		orderRepo,
		gatewayRegistry,
		idempotencyStore,
		cfg.Paytm.CallbackURL,
		log,
	)
	paymentService.SetEventPublisher(eventBus)

	// Stale order sweeper
	sweeper := scheduler.NewAutoCancelSweeper(cfg.AutoCancel, orderService, log)
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start auto-cancel sweeper", zap.Error(err))
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewSystemHandler(db))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sweeper.Stop(ctx); err != nil {
		log.Error("Sweeper shutdown error", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Event bus shutdown error", zap.Error(err))
	}

	log.Info("Server exited")
}
