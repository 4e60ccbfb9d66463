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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/application"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/config"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/database"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-trip/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/events"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/identity"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/logger"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/middleware"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/repository"
)

const serviceName = "service-trip"

// bookingStore is what the service needs from the selected storage driver.
type bookingStore interface {
	bookingDomain.Store
	bookingDomain.StatsReader
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-trip",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.Booking.StoreDriver),
		zap.String("pending_store", cfg.Booking.PendingDriver),
	)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid time zone", zap.Error(err))
	}

	checks := map[string]handler.HealthCheck{}

	// Booking storage
	store, db := openStore(cfg, log)
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get database handle", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()
		checks["database"] = sqlDB.PingContext
	}

	// Pending quotes
	var pending bookingDomain.PendingStore
	switch cfg.Booking.PendingDriver {
	case config.PendingRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		pending = repository.NewRedisPendingStore(client)
	default:
		pending = repository.NewMemoryPendingStore(time.Now)
	}

	// Quote engine and booking lifecycle
	provider := trip.NewDefaultProvider(cfg.Pricing)
	engine := trip.NewEngine(provider, trip.WithLocation(loc))
	lifecycle := bookingDomain.NewLifecycle(store,
		bookingDomain.WithTimeZone(loc),
		bookingDomain.WithCancellationPolicy(bookingDomain.CancellationPolicy{Cutoff: cfg.Booking.CancellationCutoff}),
	)

	// Initialize JWT manager and identity
	jwtManager := identity.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	identityService := identity.NewService(jwtManager, cfg.IsAdminEmail)

	// Initialize Kafka producer
	var publisher application.EventPublisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := events.NewProducer(cfg.Kafka.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	// Initialize application service
	bookingService := application.NewBookingService(
		engine,
		lifecycle,
		store,
		pending,
		publisher,
		application.Options{
			PendingTTL:   cfg.Booking.PendingTTL,
			ConfirmDelay: cfg.Booking.ConfirmDelay,
			BookingTopic: cfg.Kafka.BookingTopic,
		},
		log,
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Register routes
	handler.NewHealthHandler(serviceName, checks).RegisterRoutes(router)
	handler.NewAuthHandler(identityService).RegisterRoutes(&router.RouterGroup)
	handler.NewLocationHandler(provider).RegisterRoutes(&router.RouterGroup)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Trip schedule consumer completes bookings once the trip has run
	if cfg.Kafka.Enabled {
		scheduleConsumer := events.NewTripScheduleConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.GroupPrefix+serviceName,
			cfg.Kafka.ScheduleTopic,
			bookingService,
			log,
		)
		defer func() { _ = scheduleConsumer.Close() }()

		g.Go(func() error {
			log.Info("starting trip schedule consumer", zap.String("topic", cfg.Kafka.ScheduleTopic))
			if err := scheduleConsumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("trip schedule consumer: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down service-trip...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("service-trip stopped with error", zap.Error(err))
		return
	}
	log.Info("service-trip stopped")
}

// openStore builds the configured booking store. The returned *gorm.DB is nil
// unless the postgres driver is selected.
func openStore(cfg *config.ServiceConfig, log *zap.Logger) (bookingStore, *gorm.DB) {
	switch cfg.Booking.StoreDriver {
	case config.StorePostgres:
		db, err := database.Connect(cfg.Database.DSN(), log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(&repository.BookingModel{}); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else if err := database.RunMigrations(cfg.Database.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		return repository.NewGormBookingRepository(db), db

	case config.StoreFile:
		store, err := repository.OpenLocalStore(cfg.Booking.FilePath)
		if err != nil {
			log.Fatal("failed to open booking file", zap.String("path", cfg.Booking.FilePath), zap.Error(err))
		}
		log.Info("booking file loaded", zap.String("path", cfg.Booking.FilePath))
		return store, nil

	default:
		return repository.NewLocalStore(), nil
	}
}
