package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/fadilmartias/interview-analyzer/internal/analyzer"
	"github.com/fadilmartias/interview-analyzer/internal/config"
	"github.com/fadilmartias/interview-analyzer/internal/domain/fiber/handler"
	"github.com/fadilmartias/interview-analyzer/internal/middleware"
	"github.com/fadilmartias/interview-analyzer/internal/model"
	"github.com/fadilmartias/interview-analyzer/internal/repository"
	"github.com/fadilmartias/interview-analyzer/internal/service"
	"github.com/fadilmartias/interview-analyzer/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	err := godotenv.Load()
	if err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
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

			return ctx.Status(code).JSON(fiber.Map{"error": message})
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
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env != "production"
		},
	}))
	app.Use(healthcheck.New())

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	gemini, err := service.NewGeminiService(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// The embedding cache is optional: without DB config every embedding
	// goes straight to the API.
	var embedder interface {
		GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	} = gemini
	if db := connectDB(); db != nil {
		embeddingRepo := repository.NewEmbeddingRepository(db)
		embedder = service.NewEmbeddingCacheService(gemini, embeddingRepo)
	}

	analysisConfig := config.LoadAnalysisConfig()
	extractor := analyzer.NewExtractor(
		embedder,
		nil,
		analysisConfig.SimilarityThreshold,
		analysisConfig.ContextMargin,
	)
	judge := analyzer.NewJudge(gemini, config.LoadGeminiConfig().Model)
	scorer := analyzer.NewScorer(
		service.NewLanguageToolService(),
		service.NewSentimentService(),
		nil,
		analyzer.DefaultScoreWeights,
	)

	uc := usecase.NewAnalysisUsecase(extractor, judge, scorer)
	h := handler.NewAnalysisHandler(uc)

	h.RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func connectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	if dbConfig.Host == "" {
		log.Println("DB_HOST not set, running without embedding cache")
		return nil
	}
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	err = db.AutoMigrate(&model.Embedding{})
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
