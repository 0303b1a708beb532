package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/rusdhi-de/clinic-api/internal/config"
	"github.com/rusdhi-de/clinic-api/internal/email"
	"github.com/rusdhi-de/clinic-api/internal/handler"
	appointmentHandler "github.com/rusdhi-de/clinic-api/internal/handler/appointment"
	authHandler "github.com/rusdhi-de/clinic-api/internal/handler/auth"
	dashboardHandler "github.com/rusdhi-de/clinic-api/internal/handler/dashboard"
	doctorHandler "github.com/rusdhi-de/clinic-api/internal/handler/doctor"
	prescriptionHandler "github.com/rusdhi-de/clinic-api/internal/handler/prescription"
	"github.com/rusdhi-de/clinic-api/internal/middleware"
	"github.com/rusdhi-de/clinic-api/internal/repository/postgres"
	"github.com/rusdhi-de/clinic-api/internal/router"
	appointmentService "github.com/rusdhi-de/clinic-api/internal/service/appointment"
	authService "github.com/rusdhi-de/clinic-api/internal/service/auth"
	doctorService "github.com/rusdhi-de/clinic-api/internal/service/doctor"
	prescriptionService "github.com/rusdhi-de/clinic-api/internal/service/prescription"
	"github.com/rusdhi-de/clinic-api/pkg/auth"
	"github.com/rusdhi-de/clinic-api/pkg/logger"
	"github.com/rusdhi-de/clinic-api/pkg/metrics"
	"github.com/rusdhi-de/clinic-api/pkg/security"
	"github.com/rusdhi-de/clinic-api/pkg/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	// Apply schema and seed the doctor roster and admin account,
	// idempotently, once per startup.
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()
	if err := postgres.Bootstrap(bootCtx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap database schema")
	}
	if err := postgres.Seed(bootCtx, db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, hasher); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	// Session token revocation store: Redis when configured, in-process
	// otherwise.
	var revocations session.RevocationStore
	if cfg.Redis.URL != "" {
		redisStore, err := session.NewRedisStore(session.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisStore.Close()
		revocations = redisStore
	} else {
		log.Info().Msg("no Redis configured, using in-process session store")
		revocations = session.NewMemoryStore()
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	appMetrics := metrics.NewMetrics("clinic")
	emailSvc := email.NewService(cfg.SMTP)

	// Initialize repositories
	patientRepo := postgres.NewPatientRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)

	// Initialize services
	authSvc := authService.NewService(patientRepo, adminRepo, jwtSvc, hasher, revocations, emailSvc, appMetrics)
	doctorSvc := doctorService.NewService(doctorRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, patientRepo, emailSvc, appMetrics)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, appointmentRepo, appMetrics)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	handler.RegisterValidators()

	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	doctorH := doctorHandler.NewHandler(doctorSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	dashboardH := dashboardHandler.NewHandler(appointmentSvc, prescriptionSvc)
	prescriptionH := prescriptionHandler.NewHandler(prescriptionSvc, appointmentSvc)

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		authH,
		doctorH,
		appointmentH,
		dashboardH,
		prescriptionH,
		h,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "clinic_http",
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
