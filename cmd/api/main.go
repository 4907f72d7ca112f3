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

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/adapter/handler"
	"github.com/Aanishnithin07/PresenceAI/internal/adapter/repository"
	"github.com/Aanishnithin07/PresenceAI/internal/domain/repositories"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/cache"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/database"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/detector"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/events"
	httpmw "github.com/Aanishnithin07/PresenceAI/internal/infrastructure/http/middleware"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/media"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/observability"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/speech"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/storage"
	"github.com/Aanishnithin07/PresenceAI/internal/usecase/analysis"
	"github.com/Aanishnithin07/PresenceAI/internal/usecase/questions"
	pkgai "github.com/Aanishnithin07/PresenceAI/pkg/ai"
	"github.com/Aanishnithin07/PresenceAI/pkg/config"
	"github.com/Aanishnithin07/PresenceAI/pkg/jwt"
	pkgvalidator "github.com/Aanishnithin07/PresenceAI/pkg/validator"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Error reporting
	var reporter analysis.FailureReporter
	sentryEnabled, err := observability.InitSentry(cfg.Sentry, version)
	if err != nil {
		logger.Fatal("Failed to initialize Sentry", zap.Error(err))
	}
	if sentryEnabled {
		defer observability.FlushSentry()
		reporter = observability.NewSentryReporter(sentry.CurrentHub(), logger)
		logger.Info("✅ Sentry error reporting enabled")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	logger.Info("🔧 Initializing analysis pipeline...")

	executor, err := media.New(logger, cfg.Analysis.FFmpegThreads, cfg.Analysis.MaxFrameWidth)
	if err != nil {
		logger.Fatal("Failed to initialize media executor", zap.Error(err))
	}

	recognizer, err := speech.New(ctx, &cfg.Speech, logger)
	if err != nil {
		logger.Fatal("Failed to initialize speech recognizer", zap.Error(err))
	}
	defer recognizer.Close()
	logger.Info("🎙️ Speech recognizer ready", zap.String("provider", cfg.Speech.Provider))

	faceDetector, err := detector.NewPigoDetector(cfg.Detector, logger)
	if err != nil {
		logger.Fatal("Failed to load face detector", zap.Error(err))
	}
	defer faceDetector.Close()
	logger.Info("👀 Face detector ready", zap.String("cascade", cfg.Detector.CascadePath))

	pipeline := analysis.NewPipeline(
		analysis.NewAudioExtractor(executor, cfg.Analysis.TempDir, logger),
		analysis.NewTranscriber(recognizer, logger),
		analysis.NewPresenceSampler(executor, faceDetector, logger),
		metrics,
		logger,
	)

	// Persistence
	var repo repositories.AnalysisRepository
	if cfg.Database.Enabled {
		logger.Info("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.CloseDB(db)

		// Production deployments manage schema with presencectl migrate.
		if cfg.Database.AutoMigrate {
			if cfg.IsProduction() {
				logger.Fatal("DB_AUTO_MIGRATE is enabled in production; run presencectl migrate instead")
			}
			if _, err := database.Migrate(db, migrate.Up, logger); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}
		repo = repository.NewAnalysisRepository(db)
	} else {
		logger.Warn("⚠️ Database disabled, analyses are kept in memory")
		repo = repository.NewMemoryAnalysisRepository()
	}

	// Object storage
	var archive analysis.VideoArchive
	var signer handler.VideoURLSigner
	if cfg.Storage.Enabled {
		logger.Info("🗄️ Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage, logger)
		if err != nil {
			logger.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		archive = minioClient
		signer = minioClient
	}

	// Events
	publisher := events.New(cfg.Kafka, metrics, logger)
	defer publisher.Close()

	analysisService := analysis.NewService(pipeline, repo, archive, publisher, reporter, analysis.ServiceConfig{
		UploadDir:      cfg.Analysis.UploadDir,
		MaxUploadBytes: cfg.Analysis.MaxUploadBytes,
		MaxConcurrent:  cfg.Analysis.MaxConcurrent,
		Timeout:        cfg.Analysis.Timeout,
	}, logger)

	// Questions
	logger.Info("🤖 Initializing question service...")
	store, err := cache.New(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to connect to cache", zap.Error(err))
	}
	defer store.Close()

	bank, err := questions.DefaultBank()
	if err != nil {
		logger.Fatal("Failed to load fallback question bank", zap.Error(err))
	}

	var generator questions.Generator
	if cfg.LLM.APIKey != "" {
		generator = pkgai.NewGroqClient(&cfg.LLM)
	} else {
		logger.Warn("⚠️ GROQ_API_KEY not set, questions are served from the fallback bank")
	}
	questionService := questions.NewService(generator, store, bank, cfg.LLM.QuestionTTL, metrics, logger)

	// HTTP
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Analysis.MaxUploadBytes>>20+1)))

	var authMW echo.MiddlewareFunc
	if cfg.JWT.Secret != "" {
		logger.Info("🔑 API authentication enabled")
		authMW = httpmw.EchoAuth(jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry))
	}

	router := handler.NewRouter(
		cfg,
		handler.NewAnalysisController(analysisService, signer, cfg.Analysis.MaxUploadBytes, logger),
		handler.NewQuestionController(questionService, logger),
		authMW,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logger,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("version", version),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
