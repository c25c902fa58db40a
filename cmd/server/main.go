package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hourbank/internal/app"
	"hourbank/internal/auth"
	"hourbank/internal/config"
	"hourbank/internal/handler"
	"hourbank/internal/logging"
	"hourbank/internal/middleware"
	internalRedis "hourbank/internal/redis"
	"hourbank/internal/repository/postgres"
	"hourbank/internal/service"
)

func main() {
	cfg := config.Load()
	log := logging.Setup(cfg.Log)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first so the database and Redis clients are instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.WithField("driver", app.DriverName(nrApp)).Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.WithField("addr", cfg.Redis.Addr).Info("connected to Redis")

	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer authLimiter.Stop()

	server, err := wireServer(db, redisClient, nrApp, authLimiter, log, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to build router")
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.Server.Port,
			"env":  cfg.Server.Environment,
		}).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	authLimiter *middleware.RateLimiter,
	log *logrus.Logger,
	cfg *config.Config,
) (*http.Server, error) {
	errLog := logging.NewErrorLogger(log, cfg.Bank.ErrorLogLimit)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txnRepo := postgres.NewTransactionRepository(db)
	ratingRepo := postgres.NewRatingRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Services.
	notificationService := service.NewNotificationService(notificationRepo, log)
	ledger := service.NewLedgerService(db, userRepo, lockStore, cacheStore, errLog, log)
	ledger.SetLockTTL(cfg.Bank.LockTTL)
	userService := service.NewUserService(userRepo, serviceRepo, txnRepo, cacheStore, tokens,
		errLog, log, cfg.Bank, cfg.Auth.AdminEmails)
	listingService := service.NewListingService(serviceRepo, userRepo, errLog, log)
	scheduleService := service.NewScheduleService(scheduleRepo, serviceRepo, bookingRepo, log)
	bookingService := service.NewBookingService(bookingRepo, serviceRepo, userRepo, scheduleService,
		ledger, notificationService, lockStore, errLog, log)
	txnService := service.NewTransactionService(txnRepo, serviceRepo, userRepo, ledger, notificationService, log)
	ratingService := service.NewRatingService(db, txnRepo, ratingRepo, notificationService, log)
	adminService := service.NewAdminService(userRepo, serviceRepo, txnRepo, ledger, cacheStore,
		errLog, log, cfg.Bank.AdminQueryLimit, cfg.Bank.RecentWindow)

	router, err := app.NewRouter(app.RouterDeps{
		AuthHandler:         handler.NewAuthHandler(userService),
		UserHandler:         handler.NewUserHandler(userService, ratingService),
		ServiceHandler:      handler.NewServiceHandler(listingService),
		ScheduleHandler:     handler.NewScheduleHandler(scheduleService),
		BookingHandler:      handler.NewBookingHandler(bookingService),
		TransactionHandler:  handler.NewTransactionHandler(txnService, ratingService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		AdminHandler:        handler.NewAdminHandler(adminService),
		Tokens:              tokens,
		Users:               userService,
		AuthLimiter:         authLimiter,
		Idempotency:         internalRedis.NewIdempotencyStore(redisClient),
		NewRelicApp:         nrApp,
		Log:                 log,
		ErrorLog:            errLog,
		AllowedOrigins:      cfg.CORS.AllowedOrigins,
		TrustedProxies:      cfg.Server.TrustedProxies,
	})
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
