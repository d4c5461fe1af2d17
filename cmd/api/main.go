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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/barber-api/internal/config"
	"github.com/jwalitptl/barber-api/internal/email"
	adminHandler "github.com/jwalitptl/barber-api/internal/handler/admin"
	appointmentHandler "github.com/jwalitptl/barber-api/internal/handler/appointment"
	barberHandler "github.com/jwalitptl/barber-api/internal/handler/barber"
	catalogHandler "github.com/jwalitptl/barber-api/internal/handler/catalog"
	"github.com/jwalitptl/barber-api/internal/handler/health"
	historyHandler "github.com/jwalitptl/barber-api/internal/handler/history"
	promHandler "github.com/jwalitptl/barber-api/internal/handler/prometheus"
	reportHandler "github.com/jwalitptl/barber-api/internal/handler/report"
	spotsHandler "github.com/jwalitptl/barber-api/internal/handler/spots"
	tenantHandler "github.com/jwalitptl/barber-api/internal/handler/tenant"
	"github.com/jwalitptl/barber-api/internal/middleware"
	"github.com/jwalitptl/barber-api/internal/repository/postgres"
	"github.com/jwalitptl/barber-api/internal/router"
	appointmentService "github.com/jwalitptl/barber-api/internal/service/appointment"
	barberService "github.com/jwalitptl/barber-api/internal/service/barber"
	catalogService "github.com/jwalitptl/barber-api/internal/service/catalog"
	companyService "github.com/jwalitptl/barber-api/internal/service/company"
	historyService "github.com/jwalitptl/barber-api/internal/service/history"
	reportService "github.com/jwalitptl/barber-api/internal/service/report"
	spotsService "github.com/jwalitptl/barber-api/internal/service/spots"
	tenantService "github.com/jwalitptl/barber-api/internal/service/tenant"
	"github.com/jwalitptl/barber-api/pkg/auth"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/messaging"
	"github.com/jwalitptl/barber-api/pkg/messaging/redis"
	"github.com/jwalitptl/barber-api/pkg/metrics"
	"github.com/jwalitptl/barber-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Logging.JSON,
	})
	log.Logger = appLogger.ZL

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry, "barber")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	companyRepo := postgres.NewCompanyRepository(base)
	unitRepo := postgres.NewUnitRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	historyRepo := postgres.NewHistoryRepository(base)
	barberRepo := postgres.NewBarberRepository(base)
	serviceRepo := postgres.NewServiceRepository(base)
	userRepo := postgres.NewUserRepository(base)
	visitRepo := postgres.NewVisitRepository(base)

	broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()
	feed := messaging.NewBrokerFeed(broker, appLogger, m)

	sessions, err := tenantService.NewSessionStore(companyRepo, unitRepo, cfg.Tenant, cfg.JWT.SessionTTL, m, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create tenant session store")
	}

	spotsSvc := spotsService.NewService(companyRepo, cfg.Spots.CacheTTL, m, appLogger)
	unsubscribe, err := spotsSvc.Watch(ctx, feed)
	if err != nil {
		// Spots still work off the cache TTL without the feed.
		appLogger.Error(err, "failed to subscribe to company changes")
		unsubscribe = func() {}
	}
	defer unsubscribe()

	reportSvc, err := reportService.NewService(visitRepo, companyRepo, cfg.Reports, m, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create report service")
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	barberSvc := barberService.NewService(
		barberRepo,
		userRepo,
		companyRepo,
		security.NewBcryptHasher(cfg.Invite.TokenCost),
		email.NewSender(cfg.SMTP, appLogger),
		cfg.Invite.DefaultRedirectURL,
		appLogger,
	)
	appointmentSvc := appointmentService.NewService(appointmentRepo, barberRepo, serviceRepo, cfg.Appointments.LateCancellationThreshold, m, appLogger)
	historySvc := historyService.NewService(historyRepo, appLogger)
	catalogSvc := catalogService.NewService(barberRepo, serviceRepo)
	companySvc := companyService.NewService(companyRepo, appLogger)

	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc, cfg.Admin),
		sessions,
		router.Handlers{
			Health: health.NewHandler(map[string]health.Pinger{
				"database": health.PingFunc(db.PingContext),
				"redis":    broker,
			}),
			Metrics:     promHandler.New(registry),
			Spots:       spotsHandler.NewHandler(spotsSvc),
			Barber:      barberHandler.NewHandler(barberSvc),
			Tenant:      tenantHandler.NewHandler(),
			Appointment: appointmentHandler.NewHandler(appointmentSvc),
			History:     historyHandler.NewHandler(historySvc),
			Catalog:     catalogHandler.NewHandler(catalogSvc),
			Admin:       adminHandler.NewHandler(companySvc),
			Report:      reportHandler.NewHandler(reportSvc),
		},
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:      cfg.RateLimit.Burst,
			RateLimitIdle:  cfg.RateLimit.IdleTTL,
			DisableLimiter: !cfg.RateLimit.Enabled,
			CORSConfig:     middleware.NewCORSConfig(cfg.CORS.AllowedOrigins),
			RequestTimeout: cfg.Server.WriteTimeout,
			MetricsPrefix:  "barber_http",
			Registerer:     registry,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server exited properly")
}
