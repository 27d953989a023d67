// Package main runs the Echoscribe HTTP server: auth, the transcription and
// summarization pipeline, and summary browsing.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/echoscribe/backend/config"
	"github.com/echoscribe/backend/internal/auth"
	"github.com/echoscribe/backend/internal/middleware"
	"github.com/echoscribe/backend/internal/summaries"
	"github.com/echoscribe/backend/internal/summarize"
	"github.com/echoscribe/backend/internal/transcribe"
	"github.com/echoscribe/backend/internal/worker"
	"github.com/echoscribe/backend/pkg/captions"
	"github.com/echoscribe/backend/pkg/database"
	"github.com/echoscribe/backend/pkg/media"
	"github.com/echoscribe/backend/pkg/queue"
	"github.com/echoscribe/backend/pkg/redis"
	"github.com/echoscribe/backend/pkg/response"
	"github.com/echoscribe/backend/pkg/speech"
	"github.com/echoscribe/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Constructed once and injected into both stages; missing credentials
	// fail here, before any request is served.
	speechClient, err := speech.New(speech.Config{
		APIKey:          cfg.OpenAI.APIKey,
		TranscribeModel: cfg.OpenAI.TranscribeModel,
		SummaryModel:    cfg.OpenAI.SummaryModel,
	}, logger)
	if err != nil {
		logger.Fatal("openai", zap.Error(err))
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AudioBucket:          cfg.AWS.AudioBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("audio archive disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Pipeline stages
	captionClient := captions.NewClient(logger)
	titleLookup := captions.NewTitleLookup()
	transcribeService := transcribe.NewService(
		speechClient, captionClient, titleLookup, media.DurationSeconds,
		cfg.Upload.MaxFileBytes(), logger)
	transcribeHandler := transcribe.NewHandler(transcribeService, logger)
	summarizeService := summarize.NewService(speechClient, logger)
	summarizeHandler := summarize.NewHandler(summarizeService, logger)

	// Summaries (history, transcripts, dashboard pages)
	summaryRepo := summaries.NewRepository(pool)
	summaryHandler := summaries.NewHandler(summaryRepo, s3Client, logger)

	// Audio archive (best-effort; requires S3)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	archiveProcessor := worker.NewArchiveProcessor(s3Client, jobQueue, logger)
	if s3Client != nil {
		transcribeHandler.SetSpooler(worker.NewSpooler(jobQueue, cfg.Upload.SpoolDir, logger))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.MaxMultipartMemory = cfg.Upload.MaxFileBytes()

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/me", authHandler.Me)

		// Pipeline (rate-limited per user)
		limited := api.Group("")
		limited.Use(middleware.RateLimit(rdb.Client, cfg.RateLimit.PerMinute, logger))
		{
			limited.POST("/transcribe", transcribeHandler.Transcribe)
			limited.POST("/summarize", summarizeHandler.Summarize)
		}

		// Summaries
		api.POST("/summaries", summaryHandler.Create)
		api.GET("/summaries", summaryHandler.List)
		api.GET("/summaries/stats", summaryHandler.Stats)
		api.GET("/summaries/:id", summaryHandler.GetByID)
		api.DELETE("/summaries/:id", summaryHandler.Delete)
		api.GET("/summaries/:id/audio-url", summaryHandler.AudioURL)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process archive worker (cmd/worker runs the same loop standalone)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if s3Client != nil {
		go archiveProcessor.Run(workerCtx)
		logger.Info("audio archive worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
