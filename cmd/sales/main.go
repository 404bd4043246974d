package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/clients"
	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/events"
	"github.com/paperkart/paperkart-sales-service/internal/handlers"
	"github.com/paperkart/paperkart-sales-service/internal/repository"
	"github.com/paperkart/paperkart-sales-service/internal/server"
	"github.com/paperkart/paperkart-sales-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.Named("sales-service")

	logger.Info("Starting sales-service", zap.Int("port", cfg.Server.Port))

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)
	rateCache := repository.NewRedisRateCache(cfg.Redis, logger)

	customerClient := clients.NewHTTPCustomerClient(cfg.CustomerService, logger)
	catalogClient := clients.NewHTTPCatalogClient(cfg.CatalogService, logger)
	notifier := clients.NewHTTPNotifier(cfg.NotificationService, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	orderService := service.NewSalesOrderService(
		orderRepo,
		orderCache,
		rateCache,
		customerClient,
		catalogClient,
		notifier,
		eventPublisher,
		cfg,
		logger,
	)

	h := handlers.NewHandlers(orderService, cfg, logger)

	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("enable_order_caching", cfg.Features.EnableOrderCaching),
			zap.Bool("enable_rate_caching", cfg.Features.EnableRateCaching),
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	eventConsumer := events.NewKafkaConsumer(cfg.Kafka, rateCache, logger)
	go func() {
		if err := eventConsumer.Start(context.Background()); err != nil && err != context.Canceled {
			logger.Error("Event consumer failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eventConsumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	return db, nil
}
