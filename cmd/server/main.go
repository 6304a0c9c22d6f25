package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/abhinandc/ai-interview/internal/actions"
	"github.com/abhinandc/ai-interview/internal/artifacts"
	"github.com/abhinandc/ai-interview/internal/config"
	"github.com/abhinandc/ai-interview/internal/flags"
	"github.com/abhinandc/ai-interview/internal/handlers"
	"github.com/abhinandc/ai-interview/internal/jobs"
	"github.com/abhinandc/ai-interview/internal/llm"
	_ "github.com/abhinandc/ai-interview/internal/llm/gemini"
	"github.com/abhinandc/ai-interview/internal/metrics"
	"github.com/abhinandc/ai-interview/internal/notify"
	"github.com/abhinandc/ai-interview/internal/rounds"
	"github.com/abhinandc/ai-interview/internal/routers"
	"github.com/abhinandc/ai-interview/internal/scoring"
	"github.com/abhinandc/ai-interview/internal/sessions"
	"github.com/abhinandc/ai-interview/internal/store"
	"github.com/abhinandc/ai-interview/internal/voice"
)

// Helper functions for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Int("event_log_cap", cfg.EventLogCap))

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	db, err := initDatabase()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// row-change notifier, noop without redis
	var notifier notify.Publisher = notify.Noop{}
	var redisNotifier *notify.RedisNotifier
	if cfg.RedisAddr != "" {
		redisNotifier = notify.NewRedisNotifier(cfg.RedisAddr, logger)
		notifier = redisNotifier
		logger.Info("Redis change notifications enabled", zap.String("addr", cfg.RedisAddr))
	}

	st := store.New(db, notifier)
	if err := st.AutoMigrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	machine := rounds.NewMachine(st, logger)
	monitor := flags.NewMonitor(st, machine, logger)
	engine := scoring.NewEngine(st, aiProvider, monitor, logger)
	intake := artifacts.NewIntake(st, engine, logger)
	dispatcher := actions.NewDispatcher(st, machine, monitor, logger)
	sessionService := sessions.NewService(st, cfg.EventLogCap, logger)
	voiceResolver := voice.NewResolver(cfg.VoiceAgents, logger)

	sessionHandler := handlers.NewSessionHandler(sessionService, machine, intake, logger)
	interviewerHandler := handlers.NewInterviewerHandler(dispatcher, logger)
	candidateHandler := handlers.NewCandidateHandler(sessionService, logger)
	voiceHandler := handlers.NewVoiceHandler(voiceResolver, logger)
	modelHandler := handlers.NewModelHandler(st, logger)
	adminHandler := handlers.NewAdminHandler(st, logger)
	liveHandler := handlers.NewLiveHandler(notifier, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, st, cfg)

	// report exporter
	exporterJob := jobs.NewReportExporterJob(st, &jobs.ExporterConfig{
		Schedule:      getEnv("REPORT_EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:     getEnv("REPORT_EXPORT_DIR", "./exports"),
		ExportEnabled: getEnv("REPORT_EXPORT_ENABLED", "false") == "true",
		BatchLimit:    getEnvInt("REPORT_EXPORT_BATCH_LIMIT", 0),
	})
	if err := exporterJob.Start(); err != nil {
		logger.Error("Failed to start report exporter job", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer, chimiddleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("interview"))

	routers.HealthRoutes(router, healthHandler)
	routers.SessionRoutes(router, sessionHandler, liveHandler)
	routers.InterviewerRoutes(router, interviewerHandler)
	routers.CandidateRoutes(router, candidateHandler)
	routers.VoiceRoutes(router, voiceHandler)
	routers.AdminRoutes(router, adminHandler, modelHandler, cfg.AdminJWTSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	exporterJob.Stop()
	if redisNotifier != nil {
		if err := redisNotifier.Close(); err != nil {
			logger.Warn("Failed to close redis notifier", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service stopped")
}
