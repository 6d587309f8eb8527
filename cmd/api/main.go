package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/openrides/openrides/internal/api/handlers"
	"github.com/openrides/openrides/internal/api/middleware"
	"github.com/openrides/openrides/internal/api/routes"
	"github.com/openrides/openrides/internal/config"
	"github.com/openrides/openrides/internal/domain/request"
	govsvc "github.com/openrides/openrides/internal/service/governance"
	"github.com/openrides/openrides/internal/service/ledger"
	"github.com/openrides/openrides/internal/service/negotiation"
	"github.com/openrides/openrides/internal/service/pricing"
	"github.com/openrides/openrides/internal/service/profile"
	setsvc "github.com/openrides/openrides/internal/service/settlement"
	"github.com/openrides/openrides/internal/service/sweeper"
	"github.com/openrides/openrides/internal/service/tripflow"
	"github.com/openrides/openrides/internal/store/postgres"
	"github.com/openrides/openrides/pkg/cache"
	"github.com/openrides/openrides/pkg/database"
	"github.com/openrides/openrides/pkg/logger"
	"github.com/openrides/openrides/pkg/monitoring"
	"github.com/openrides/openrides/pkg/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting OpenRides",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized",
			logger.String("app_name", cfg.NewRelic.AppName))
	}
	defer nrApp.Shutdown(10 * time.Second)

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer cache.Close(redisClient)

	appLogger.Info("Connected to Redis")

	// Initialize PostgreSQL
	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cast.ToInt(cfg.Database.Port),
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConnections,
		MaxIdle:  cfg.Database.MaxIdleConns,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer db.Close()

	appLogger.Info("Connected to PostgreSQL")

	st := postgres.New(db)

	// Domain services
	pricingSvc := pricing.NewService(pricing.Config{
		BaseFare: map[request.ServiceType]float64{
			request.ServiceRide:     cfg.Pricing.BaseFare.Ride,
			request.ServiceDelivery: cfg.Pricing.BaseFare.Delivery,
		},
		VehicleOffset: map[request.VehicleType]float64{
			request.VehicleTricycle:   cfg.Pricing.VehicleOffset.Tricycle,
			request.VehicleMotorcycle: cfg.Pricing.VehicleOffset.Motorcycle,
			request.VehicleCar:        cfg.Pricing.VehicleOffset.Car,
			request.VehicleTaxi:       cfg.Pricing.VehicleOffset.Taxi,
		},
	})
	profileSvc := profile.NewService(st, appLogger)
	ledgerSvc := ledger.NewService(st, pricingSvc, appLogger, nrApp, cfg.Request.TTL)
	negotiationSvc := negotiation.NewService(st, appLogger, nrApp)
	tripSvc := tripflow.NewService(st, appLogger, nrApp)
	settlementSvc := setsvc.NewService(st, appLogger)
	governanceSvc := govsvc.NewService(st, appLogger)

	// Background expiry sweeper
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.New(ledgerSvc, appLogger, nrApp, cfg.Sweeper.Interval).Run(sweepCtx)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run()

	// Initialize handlers with dependencies
	h := handlers.NewHandlers(
		profileSvc, ledgerSvc, negotiationSvc, tripSvc, settlementSvc, governanceSvc,
		redisClient, wsHub, appLogger, cfg.WebSocket, cfg.Cache,
	)

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	auth := middleware.Auth(cfg.JWT.Secret, profileSvc, appLogger)
	routes.SetupRoutes(router, h, auth, nrApp.Application)

	appLogger.Info("Routes configured")

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	stopSweeper()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}
