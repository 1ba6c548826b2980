package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sergioamr/farm-management/internal/cache"
	"github.com/sergioamr/farm-management/internal/events"
	"github.com/sergioamr/farm-management/internal/handler"
	"github.com/sergioamr/farm-management/internal/media"
	"github.com/sergioamr/farm-management/internal/middleware"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/service"
	"github.com/sergioamr/farm-management/internal/validation"
	"github.com/sergioamr/farm-management/pkg/config"
	"github.com/sergioamr/farm-management/pkg/database"
	"github.com/sergioamr/farm-management/pkg/jwtutil"
	"github.com/sergioamr/farm-management/pkg/logger"
	"github.com/sergioamr/farm-management/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting farm management service...", zap.String("environment", cfg.Server.Env))

	prometheus.InitMetrics(cfg.Metrics.Prefix)
	log.Info("Prometheus metrics initialized")

	db, err := database.Open(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db, log)
	if err := database.Migrate(db, model.All()...); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.DBName))

	deps := service.Deps{Log: log, Validator: validation.New()}

	if cfg.Redis.Addr != "" {
		rdb := cache.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		deps.Cache = cache.NewRedisStatsCache(rdb, cfg.Redis.StatsTTL)
		log.Info("Stats cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.StatsTTL))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka))
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("Failed to close event publisher", zap.Error(err))
			}
		}()
		deps.Events = publisher
		log.Info("Domain events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	if cfg.Cloudinary.URL != "" {
		uploader, err := media.NewCloudinaryUploader(cfg.Cloudinary.URL, cfg.Cloudinary.Folder)
		if err != nil {
			log.Fatal("Failed to configure media uploads", zap.Error(err))
		}
		deps.Media = uploader
		log.Info("Media uploads enabled", zap.String("folder", cfg.Cloudinary.Folder))
	}

	jwt := jwtutil.NewJWTUtil(&cfg.JWT)

	supplierRepo := repository.NewSupplierRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	pricingRepo := repository.NewPricingRepository(db)
	userRepo := repository.NewUserRepository(db)

	handlers := handler.Handlers{
		Suppliers: handler.NewSupplierHandler(service.NewSupplierService(supplierRepo, deps)),
		Inventory: handler.NewInventoryHandler(service.NewInventoryService(inventoryRepo, supplierRepo, nil, deps)),
		Pricing:   handler.NewPricingHandler(service.NewPricingService(pricingRepo, supplierRepo, inventoryRepo, deps)),
		Auth:      handler.NewAuthHandler(service.NewAuthService(userRepo, jwt, deps)),
		Health:    handler.NewHealthHandler(cfg.ServiceName, db),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = deps.Validator

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(middleware.MetricsMiddleware())

	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
		e.Static("/dashboard", cfg.Server.StaticDir)
		log.Info("Serving dashboard", zap.String("dir", cfg.Server.StaticDir))
	}

	handlers.Mount(e, jwt, rateLimiter(cfg.Server))

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

// rateLimiter throttles /api per client IP
func rateLimiter(cfg config.ServerConfig) echo.MiddlewareFunc {
	tooMany := func(c echo.Context) error {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests from this IP, please try again later."})
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: echomiddleware.DefaultSkipper,
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(
			echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitRPS),
				Burst:     cfg.RateLimitBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return tooMany(c)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return tooMany(c)
		},
	})
}
