package api

import (
	"keiriflow/internal/api/handlers"
	"keiriflow/pkg/auth"
	"keiriflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	docHandler *handlers.DocumentHandler,
	journalHandler *handlers.JournalHandler,
	reconciliationHandler *handlers.ReconciliationHandler,
	registryHandler *handlers.RegistryHandler,
	jwtManager *auth.JWTManager,
	uploadDir string,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Uploaded source documents, served for the chat UI previews.
	app.Static("/uploads", uploadDir)

	// CSV downloads sit outside the JWT guard: the browser follows the
	// link without an Authorization header and the token itself is the
	// credential.
	app.Get("/exports/:token", journalHandler.Download)

	// Auth routes (public)
	user := app.Group("/user")
	authGroup := user.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	documents := protected.Group("/documents")
	documents.Post("/upload", docHandler.UploadDocument)
	documents.Get("/:id", docHandler.GetDocument)
	documents.Post("/:id/extract", docHandler.ExtractDocument)
	documents.Post("/:id/predict", docHandler.PredictDocument)
	documents.Post("/:id/process", docHandler.ProcessDocument)
	documents.Get("/:id/predictions", docHandler.ListPredictions)

	sessions := protected.Group("/sessions")
	sessions.Get("/:id/documents", docHandler.ListSessionDocuments)

	registry := protected.Group("/registry")
	registry.Get("/accounts", registryHandler.ListAccounts)
	registry.Post("/accounts", registryHandler.CreateAccount)
	registry.Get("/vendors", registryHandler.ListVendors)
	registry.Post("/vendors", registryHandler.CreateVendor)
	registry.Patch("/vendors/:id", registryHandler.SetVendorActive)

	journal := protected.Group("/journal")
	journal.Post("/mf-entries", journalHandler.CreateDraft)
	journal.Get("/mf-entries", journalHandler.ListDrafts)
	journal.Get("/mf-entries/:id", journalHandler.GetDraft)
	journal.Post("/export", journalHandler.Export)
	journal.Post("/confirm-import", journalHandler.ConfirmImport)
	journal.Post("/entries", journalHandler.CreateEntry)
	journal.Get("/entries", journalHandler.ListEntries)
	journal.Get("/entries/:id", journalHandler.GetEntry)

	reconciliations := protected.Group("/reconciliations")
	reconciliations.Post("", reconciliationHandler.Create)
	reconciliations.Get("", reconciliationHandler.List)
	reconciliations.Get("/:id", reconciliationHandler.Get)
	reconciliations.Post("/:id/evaluate", reconciliationHandler.Evaluate)
	reconciliations.Post("/:id/resolve", reconciliationHandler.Resolve)

	return app
}
