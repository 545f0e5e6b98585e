package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/adapters/event"
	httpAdapter "github.com/khoahotran/folio/adapters/http"
	"github.com/khoahotran/folio/adapters/media_storage"
	"github.com/khoahotran/folio/adapters/persistence"
	"github.com/khoahotran/folio/adapters/relay"
	"github.com/khoahotran/folio/internal/application/usecase/auth"
	contactUC "github.com/khoahotran/folio/internal/application/usecase/contact"
	contentUC "github.com/khoahotran/folio/internal/application/usecase/content"
	mediaUC "github.com/khoahotran/folio/internal/application/usecase/media"
	profileUC "github.com/khoahotran/folio/internal/application/usecase/profile"
	projectUC "github.com/khoahotran/folio/internal/application/usecase/project"
	"github.com/khoahotran/folio/internal/application/view"
	"github.com/khoahotran/folio/internal/config"
	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
	"github.com/khoahotran/folio/internal/fallback"
	jwtAuth "github.com/khoahotran/folio/pkg/auth"
	"github.com/khoahotran/folio/pkg/logger"
	"github.com/khoahotran/folio/pkg/metrics"
	"github.com/khoahotran/folio/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Start Folio API Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "folio-api")
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			appLogger.Error("Failed to shutdown tracer", err)
		}
	}()

	runMigrations(cfg, appLogger)

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	changeFeed := persistence.NewRedisChangeFeed(redisClient, appLogger)
	publisher := content.MultiPublisher{changeFeed}

	// The worker is optional; without brokers orphaned images are never reaped.
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = append(publisher, kafkaClient)
	} else {
		appLogger.Warn("Kafka brokers not configured, content events stay on the realtime channel only")
	}

	uploader, err := media_storage.NewUploader(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	contactRelay, err := relay.NewFormRelay(cfg.Contact.RelayURL, nil, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize contact relay", err)
	}

	// Tables
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	profileTable := persistence.NewProfileTable(dbPool, appLogger)
	projectTable := persistence.NewProjectTable(dbPool, appLogger)
	skillTable := persistence.NewSkillTable(dbPool, appLogger)
	certificationTable := persistence.NewCertificationTable(dbPool, appLogger)

	// Services
	jwtSvc := jwtAuth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	sessions := auth.NewSessionService(
		userRepo,
		persistence.NewRedisSessionStore(redisClient),
		persistence.NewRedisAuthBroadcaster(redisClient),
		jwtSvc,
		appLogger,
	)

	// Use Cases
	positionOrder := []content.Order{{Column: "position"}}
	certificationOrder := []content.Order{{Column: "issue_date", Desc: true}}

	profileCRUD := contentUC.NewCRUDUseCase(profileTable, publisher, contentUC.CleanProfile, nil, appLogger)
	projectCRUD := contentUC.NewCRUDUseCase(projectTable, publisher, contentUC.CleanProject, positionOrder, appLogger)
	skillCRUD := contentUC.NewCRUDUseCase(skillTable, publisher, contentUC.CleanSkill, positionOrder, appLogger)
	certificationCRUD := contentUC.NewCRUDUseCase(certificationTable, publisher, contentUC.CleanCertification, certificationOrder, appLogger)

	profileUseCase := profileUC.NewProfileUseCase(profileCRUD)
	uploadImageUseCase := mediaUC.NewUploadImageUseCase(uploader, appLogger)
	submitContactUseCase := contactUC.NewSubmitContactUseCase(
		contactRelay,
		persistence.NewRedisRateCounter(redisClient),
		cfg.Contact.RateLimit,
		cfg.Contact.RateWindow,
		appLogger,
	)

	// Public views
	viewOpts := view.Options{
		FallbackEnabled: cfg.Content.FallbackEnabled,
		OnRefresh: func(table string, usedFallback bool) {
			metrics.ContentRefreshes.WithLabelValues(table, strconv.FormatBool(usedFallback)).Inc()
		},
	}
	profileView := view.New[profile.Profile](profileTable, content.Query{Limit: 1}, fallback.Profile(), viewOpts, appLogger)
	projectView := view.New[project.Project](projectTable, content.Query{Order: positionOrder}, fallback.Projects(), viewOpts, appLogger)
	skillView := view.New[skill.Skill](skillTable, content.Query{Order: positionOrder}, fallback.Skills(), viewOpts, appLogger)
	certificationView := view.New[certification.Certification](certificationTable, content.Query{Order: certificationOrder}, fallback.Certifications(), viewOpts, appLogger)

	viewFeed, err := changeFeed.Subscribe(ctx)
	if err != nil {
		appLogger.Fatal("Cannot subscribe to change feed", err)
	}
	defer viewFeed.Close()
	go func() {
		err := view.RunAll(ctx, viewFeed, cfg.Content.ResyncInterval, profileView, projectView, skillView, certificationView)
		if err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Public views stopped", err)
		}
	}()

	rssUseCase := projectUC.NewRSSUseCase(projectView, profileView, cfg.App.PublicURL, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth:           httpAdapter.NewAuthHandler(sessions, cfg.App.Env == "production", appLogger),
		Public:         httpAdapter.NewPublicHandler(profileView, projectView, skillView, certificationView),
		Profile:        httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		Projects:       httpAdapter.NewContentHandler[project.Project](projectCRUD, "is_featured"),
		Skills:         httpAdapter.NewContentHandler[skill.Skill](skillCRUD, "type"),
		Certifications: httpAdapter.NewContentHandler[certification.Certification](certificationCRUD),
		Media:          httpAdapter.NewMediaHandler(uploadImageUseCase, appLogger),
		Contact:        httpAdapter.NewContactHandler(submitContactUseCase),
		RSS:            httpAdapter.NewRSSHandler(rssUseCase, appLogger),
		Realtime:       httpAdapter.NewRealtimeHandler(changeFeed, sessions, cfg.App.AllowedOrigins, appLogger),
	}
	router := httpAdapter.NewRouter(handlers, sessions, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	appLogger.Info("Server exited")
}

func runMigrations(cfg config.Config, log logger.Logger) {
	m, err := migrate.New(cfg.DB.Migrations, cfg.DB.DSN)
	if err != nil {
		log.Fatal("Cannot create migrate instance", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("Cannot run migrations", err)
	}
	log.Info("Database migrations applied", zap.String("source", cfg.DB.Migrations))
}
