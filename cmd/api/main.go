package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/gatovet/clinic-api/internal/config"
	"github.com/gatovet/clinic-api/internal/email"
	"github.com/gatovet/clinic-api/internal/handler"
	appointmentHandler "github.com/gatovet/clinic-api/internal/handler/appointment"
	authHandler "github.com/gatovet/clinic-api/internal/handler/auth"
	documentHandler "github.com/gatovet/clinic-api/internal/handler/document"
	patientHandler "github.com/gatovet/clinic-api/internal/handler/patient"
	"github.com/gatovet/clinic-api/internal/middleware"
	"github.com/gatovet/clinic-api/internal/repository/postgres"
	"github.com/gatovet/clinic-api/internal/router"
	appointmentService "github.com/gatovet/clinic-api/internal/service/appointment"
	authService "github.com/gatovet/clinic-api/internal/service/auth"
	documentService "github.com/gatovet/clinic-api/internal/service/document"
	"github.com/gatovet/clinic-api/internal/service/lifecycle"
	patientService "github.com/gatovet/clinic-api/internal/service/patient"
	"github.com/gatovet/clinic-api/pkg/auth"
	"github.com/gatovet/clinic-api/pkg/blob"
	"github.com/gatovet/clinic-api/pkg/logger"
	"github.com/gatovet/clinic-api/pkg/messaging"
	messagingRedis "github.com/gatovet/clinic-api/pkg/messaging/redis"
	"github.com/gatovet/clinic-api/pkg/metrics"
	"github.com/gatovet/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var blobCfg blob.Config
	if err := envconfig.Process("", &blobCfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load blob configuration")
	}
	blobStore, err := blob.Open(context.Background(), blobCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open blob store")
	}

	appLogger := logger.NewLogger(nil)

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = messagingRedis.NewRedisBroker(messagingRedis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     10,
			MinIdleConns: 2,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	m := metrics.NewMetrics("clinic")

	// Repositories
	ownerRepo := postgres.NewOwnerRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	emailSvc := email.NewService(cfg.SMTP)
	authSvc := authService.NewService(profileRepo, jwtSvc, security.NewBcryptHasher(0))
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, emailSvc, broker)
	lifecycleSvc := lifecycle.NewService(appointmentRepo, consultationRepo, broker, m)
	patientSvc := patientService.NewService(patientRepo, ownerRepo, recordRepo)
	documentSvc := documentService.NewService(documentRepo, patientRepo, blobStore, m)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, lifecycleSvc)
	patientH := patientHandler.NewHandler(patientSvc)
	documentH := documentHandler.NewHandler(documentSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		appointmentH,
		patientH,
		documentH,
		h,
		m,
		router.Config{
			RateLimit:  rate.Limit(100),
			RateBurst:  200,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
