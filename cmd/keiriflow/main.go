package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"keiriflow/internal/api"
	"keiriflow/internal/api/handlers"
	"keiriflow/internal/provider"
	"keiriflow/internal/repository"
	"keiriflow/internal/service"
	"keiriflow/pkg/auth"
	"keiriflow/pkg/config"
	"keiriflow/pkg/logger"
	"keiriflow/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting keiriflow service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db, appLogger)
	userRepo := repository.NewUserRepository(db, appLogger)
	sessionRepo := repository.NewChatSessionRepository(db, appLogger)
	fileRepo := repository.NewChatFileRepository(db, appLogger)
	ocrRepo := repository.NewOcrResultRepository(db, appLogger)
	aiRepo := repository.NewAiResultRepository(db, appLogger)
	predRepo := repository.NewPredictionRepository(db, appLogger)
	entryRepo := repository.NewJournalEntryRepository(db, appLogger)
	mfRepo := repository.NewMfJournalRepository(db, appLogger)
	recRepo := repository.NewReconciliationRepository(db, appLogger)
	masterRepo := repository.NewMasterRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize extraction and classification providers. PDFs go
	// through the embedded text layer first and fall back to OCR for
	// scans.
	pdfExtractor := provider.NewFitzExtractor(appLogger)
	ocrExtractor := provider.NewAzureDIExtractor(&cfg.AzureDI, appLogger)
	extractor := provider.NewCompositeExtractor(pdfExtractor, ocrExtractor, appLogger)
	predictor := provider.NewAnthropicPredictor(&cfg.Anthropic, appLogger)

	// Initialize services
	authService := service.NewAuthService(userRepo, tenantRepo, jwtManager, appLogger)
	ingestionService := service.NewIngestionService(sessionRepo, fileRepo, cfg.Pipeline.UploadDir, appLogger)
	extractionService := service.NewExtractionService(fileRepo, ocrRepo, ingestionService, extractor, &cfg.Pipeline, appLogger)
	matchingService := service.NewMatchingService(masterRepo, tenantRepo, &cfg.Matching, appLogger)
	predictionService := service.NewPredictionService(fileRepo, aiRepo, predRepo, extractionService, matchingService, predictor, appLogger)
	journalService := service.NewJournalService(mfRepo, entryRepo, predRepo, &cfg.Export, appLogger)
	reconciliationService := service.NewReconciliationService(recRepo, entryRepo, mfRepo, fileRepo, tenantRepo, &cfg.Reconcile, appLogger)
	registryService := service.NewRegistryService(masterRepo, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	docHandler := handlers.NewDocumentHandler(ingestionService, extractionService, predictionService, appLogger)
	journalHandler := handlers.NewJournalHandler(journalService, appLogger)
	reconciliationHandler := handlers.NewReconciliationHandler(reconciliationService, appLogger)
	registryHandler := handlers.NewRegistryHandler(registryService, appLogger)

	// Setup router
	app := api.SetupRouter(
		authHandler,
		docHandler,
		journalHandler,
		reconciliationHandler,
		registryHandler,
		jwtManager,
		cfg.Pipeline.UploadDir,
		appLogger,
	)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
