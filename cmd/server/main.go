package main

import (
	"context"
	"errors"
	"log"
	"runtime"
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/domain/fiber/handler"
	applog "github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/fadilmartias/cv-batch-analyzer/internal/metrics"
	"github.com/fadilmartias/cv-batch-analyzer/internal/middleware"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/repository"
	"github.com/fadilmartias/cv-batch-analyzer/internal/service"
	"github.com/fadilmartias/cv-batch-analyzer/internal/usecase"
	"github.com/fadilmartias/cv-batch-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	pipelineConfig := config.LoadPipelineConfig()

	zlog, err := applog.New(appConfig.LogJSON, appConfig.LogDebug)
	if err != nil {
		log.Fatalf("creating a logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: 20 * int(pipelineConfig.MaxUploadSize),
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return util.ErrorResponse(ctx, util.ErrorResponseFormat{Code: code, Message: message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB(zlog)
	batchMetrics := metrics.NewBatchMetrics(appConfig.Name)
	app.Get("/metrics", adaptor.HTTPHandler(batchMetrics.Handler()))

	extractor := util.NewExtractor(zlog.Named("extractor"), pipelineConfig.OCRFallback)
	engine := service.NewEngineService(config.LoadEngineConfig(), zlog.Named("engine"))

	gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), zlog.Named("gemini"))
	if err != nil {
		zlog.Fatal("creating gemini service", zap.Error(err))
	}
	summarizer := newSummarizer(config.LoadSummaryConfig(), gemini, zlog)

	synthesisUC := usecase.NewSynthesisUsecase(summarizer, pipelineConfig.SessionCacheSize, batchMetrics, zlog.Named("synthesis"))
	batchUC := usecase.NewBatchUsecase(
		extractor,
		engine,
		repository.NewBatchRepository(db),
		synthesisUC,
		pipelineConfig,
		batchMetrics,
		zlog.Named("batch"),
	)

	storageConfig := config.LoadStorageConfig()
	var storage service.StorageServiceInterface
	if s, err := newStorage(ctx, storageConfig, zlog); err != nil {
		zlog.Warn("criteria publishing disabled", zap.Error(err))
	} else {
		storage = s
	}
	var embedder service.EmbedderInterface
	if gemini.Configured() {
		embedder = gemini
	}
	criteriaUC := usecase.NewCriteriaUsecase(
		extractor,
		storage,
		repository.NewCriteriaRepository(db),
		embedder,
		storageConfig.CriteriaObject,
		zlog.Named("criteria"),
	)

	handler.NewBatchHandler(batchUC, synthesisUC, pipelineConfig.MaxUploadSize).RegisterRoutes(app)
	handler.NewCriteriaHandler(criteriaUC, pipelineConfig.MaxUploadSize).RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			zlog.Debug("active goroutines", zap.Int("count", runtime.NumGoroutine()))
		}
	}()

	zlog.Info("server running",
		zap.String("port", appConfig.Port),
		zap.String("env", appConfig.Env),
		zap.String("summarizer", summarizer.Name()),
		zap.Bool("summarizer_configured", summarizer.Configured()),
	)
	if err := app.Listen(appConfig.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func newSummarizer(cfg *config.SummaryConfig, gemini *service.GeminiService, log *zap.Logger) service.SummarizerInterface {
	if cfg.Provider == config.SummaryProviderGemini {
		return gemini
	}
	if cfg.Provider != config.SummaryProviderAzure {
		log.Warn("unknown summary provider, using azure", zap.String("provider", cfg.Provider))
	}
	return service.NewAzureOpenAIService(cfg, log.Named("azure_openai"))
}

func newStorage(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (*service.StorageService, error) {
	storage, err := service.NewStorageService(cfg, log.Named("storage"))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return storage, nil
}

func ConnectDB(log *zap.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatal("could not get database instance", zap.Error(err))
	}
	pgDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	pgDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	pgDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	if !dbConfig.AutoMigrate {
		log.Info("auto migration disabled")
		return db
	}
	for _, ext := range []string{`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`, `CREATE EXTENSION IF NOT EXISTS vector`} {
		if err := db.Exec(ext).Error; err != nil {
			log.Fatal("creating extension failed", zap.Error(err))
		}
	}
	if err := db.AutoMigrate(&model.BatchRecord{}, &model.EntryRecord{}, &model.JobCriteria{}); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	return db
}
