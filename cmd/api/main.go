package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anshxhhh/coursehaven/internal/app"
	"github.com/anshxhhh/coursehaven/internal/clock"
	"github.com/anshxhhh/coursehaven/internal/config"
	"github.com/anshxhhh/coursehaven/internal/events"
	"github.com/anshxhhh/coursehaven/internal/metrics"
	"github.com/anshxhhh/coursehaven/internal/payment"
	"github.com/anshxhhh/coursehaven/internal/storage/postgres"
	"github.com/anshxhhh/coursehaven/internal/storage/rediscache"
	transporthttp "github.com/anshxhhh/coursehaven/internal/transport/http"
	"github.com/anshxhhh/coursehaven/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := buildLogger(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load(logger)

	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, payment calls will fail")
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	clk := clock.NewSystem()

	orderRepo := postgres.NewOrderRepository(pool)
	courseRepo := postgres.NewCourseRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	var catalogRepo app.CatalogRepository = courseRepo
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		catalogRepo = rediscache.NewCourseStore(courseRepo, rdb, logger)
		logger.Info("course cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)

	purchaseOpts := []app.PurchaseServiceOption{
		app.WithCurrency(cfg.Currency),
		app.WithLogger(logger),
	}
	publisher := events.NewPublisher(cfg.KafkaBrokers)
	if publisher.Enabled() {
		defer func() { _ = publisher.Close() }()
		purchaseOpts = append(purchaseOpts, app.WithPublisher(publisher))
		logger.Info("order event publishing enabled")
	}

	purchaseSvc := app.NewPurchaseService(orderRepo, catalogRepo, userRepo, gateway, clk, purchaseOpts...)
	accessSvc := app.NewAccessService(orderRepo)
	catalogSvc := app.NewCatalogService(catalogRepo, clk)
	identitySvc := app.NewIdentityService(userRepo, clk, []byte(cfg.JWTSecret), app.WithTokenTTL(cfg.TokenTTL))

	serverMetrics := metrics.NewServerMetrics(nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/users/signup", transporthttp.HandleSignup(identitySvc, false))
	mux.Handle("/users/login", transporthttp.HandleLogin(identitySvc))
	mux.Handle("/admin/signup", transporthttp.HandleSignup(identitySvc, true))
	mux.Handle("/courses", transporthttp.HandleListCourses(catalogSvc))
	mux.Handle("/courses/", transporthttp.HandleCourse(catalogSvc, purchaseSvc, accessSvc, identitySvc))
	mux.Handle("/orders", transporthttp.HandleOrders(purchaseSvc, identitySvc, serverMetrics))
	mux.Handle("/admin/courses", transporthttp.HandleAdminCourses(catalogSvc, identitySvc))
	mux.Handle("/admin/courses/", transporthttp.HandleAdminCourse(catalogSvc, identitySvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(
		transporthttp.Instrument(
			transporthttp.CORS(parseCSV(cfg.CORSOrigins), mux),
			serverMetrics,
		),
		logger,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", zap.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
