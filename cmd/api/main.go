package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/vendtrack/vendtrack-api/internal/config"
	"github.com/vendtrack/vendtrack-api/internal/handlers"
	"github.com/vendtrack/vendtrack-api/internal/middleware"
	"github.com/vendtrack/vendtrack-api/internal/services"
	"github.com/vendtrack/vendtrack-api/internal/store"
	"github.com/vendtrack/vendtrack-api/internal/utils"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not found, using system environment")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := store.Connect(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConnections))
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	dates, err := services.NewBusinessTime(cfg.BusinessTimezone)
	if err != nil {
		logger.Error("invalid business timezone", "error", err)
		os.Exit(1)
	}

	archive, err := services.NewS3Archive(cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
	if err != nil {
		logger.Error("archive sink initialization failed", "error", err)
		os.Exit(1)
	}

	orders := store.NewOrders(pool, cfg.BusinessTimezone)
	machines := store.NewMachines(pool)
	collections := store.NewCollections(pool)
	importFiles := store.NewImportFiles(pool)

	importer := services.NewImporter(orders, machines, archive, importFiles, dates, logger)
	reconciler := services.NewReconciler(collections, dates)
	aggregates := services.NewAggregates(orders, dates)
	validator := services.NewUploadValidator(cfg.MaxUploadBytes)

	importsHandler := handlers.NewImportsHandler(importer, validator)
	reconciliationHandler := handlers.NewReconciliationHandler(reconciler)
	summaryHandler := handlers.NewSummaryHandler(aggregates)

	app := fiber.New(fiber.Config{
		AppName:      "vendtrack API v1.0",
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024,
	})

	app.Use(middleware.CORS(os.Getenv("CORS_ORIGINS")))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "vendtrack-api",
		})
	})

	v1 := app.Group("/v1")

	v1.Post("/imports", importsHandler.Upload)
	v1.Get("/imports", importsHandler.History)
	v1.Delete("/imports/:batchId", importsHandler.DeleteBatch)

	v1.Get("/reconciliation", reconciliationHandler.Get)

	v1.Get("/summary/daily", summaryHandler.Daily)
	v1.Get("/summary/top-machines", summaryHandler.TopMachines)
	v1.Get("/summary/machines", summaryHandler.Machines)

	logger.Info("vendtrack API listening", "port", cfg.Port)

	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
