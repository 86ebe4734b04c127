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
	"golang.org/x/time/rate"

	"github.com/praxisdesk/booking-api/internal/config"
	"github.com/praxisdesk/booking-api/internal/email"
	appointmentHandler "github.com/praxisdesk/booking-api/internal/handler/appointment"
	authHandler "github.com/praxisdesk/booking-api/internal/handler/auth"
	availabilityHandler "github.com/praxisdesk/booking-api/internal/handler/availability"
	healthHandler "github.com/praxisdesk/booking-api/internal/handler/health"
	scheduleHandler "github.com/praxisdesk/booking-api/internal/handler/schedule"
	"github.com/praxisdesk/booking-api/internal/middleware"
	"github.com/praxisdesk/booking-api/internal/repository/postgres"
	"github.com/praxisdesk/booking-api/internal/router"
	appointmentService "github.com/praxisdesk/booking-api/internal/service/appointment"
	authService "github.com/praxisdesk/booking-api/internal/service/auth"
	availabilityService "github.com/praxisdesk/booking-api/internal/service/availability"
	scheduleService "github.com/praxisdesk/booking-api/internal/service/schedule"
	"github.com/praxisdesk/booking-api/pkg/logger"
	"github.com/praxisdesk/booking-api/pkg/metrics"
	"github.com/praxisdesk/booking-api/pkg/security"
	"github.com/praxisdesk/booking-api/pkg/token"
	"github.com/praxisdesk/booking-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Token services share the one validated secret.
	authTokens, err := token.NewAuthTokenService([]byte(cfg.JWT.Secret))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth token service")
	}
	cancelTokens, err := token.NewCancelTokenService([]byte(cfg.JWT.Secret))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cancellation token service")
	}

	emailSvc := email.NewService(cfg.Email)

	m := metrics.New("booking")

	// Services
	availabilitySvc := availabilityService.NewService(scheduleRepo, appointmentRepo).WithMetrics(m)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, availabilitySvc, cancelTokens, emailSvc, appLogger)
	authSvc := authService.NewService(userRepo, authTokens, security.NewBcryptHasher(bcrypt.DefaultCost), appLogger)
	scheduleSvc := scheduleService.NewService(scheduleRepo, availabilitySvc)

	// Handlers
	availabilityH := availabilityHandler.NewHandler(availabilitySvc, m)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, m)
	authH := authHandler.NewHandler(authSvc, m, cfg.Server.SecureCookies)
	scheduleH := scheduleHandler.NewHandler(scheduleSvc)
	healthH := healthHandler.NewHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	if err := validator.RegisterCustomValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register request validations")
	}

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second

	r := router.New(
		authMiddleware,
		availabilityH,
		appointmentH,
		authH,
		scheduleH,
		healthH,
		m,
		router.Config{
			GlobalRate:     rate.Limit(cfg.RateLimit.GlobalPerSec),
			GlobalBurst:    cfg.RateLimit.GlobalBurst,
			LoginLimit:     cfg.RateLimit.LoginLimit,
			CancelLimit:    cfg.RateLimit.CancelLimit,
			Window:         cfg.RateLimit.Window,
			RequestTimeout: timeout,
			MetricsPrefix:  "booking_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

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
