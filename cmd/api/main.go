package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"alfredoptarigan/resume-critic/internal/config"
	"alfredoptarigan/resume-critic/internal/handlers"
	"alfredoptarigan/resume-critic/internal/logger"
	"alfredoptarigan/resume-critic/internal/repositories"
	"alfredoptarigan/resume-critic/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if !cfg.EnvFileLoaded {
		log.Info().Msg("No .env file found. Using environment and default values.")
	}
	log.Info().Str("provider", cfg.LLM.Provider).Msg("✅ Config loaded successfully")

	ctx := context.Background()

	// Audit records are optional
	var recorder services.RunRecorder
	db, err := config.OpenAuditDB(cfg.Database, cfg.Server.Env == "development", log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize database")
	}
	if db != nil {
		recorder = repositories.NewRunRepository(db)
		log.Info().Msg("✅ Run repository initialized")
	}

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create upload directory")
	}

	// Initialize models
	modelSet, err := services.NewModelSet(ctx, services.ModelSetConfig{
		Provider:        cfg.LLM.Provider,
		APIKey:          cfg.LLM.APIKey(),
		ChatModel:       cfg.LLM.ChatModel,
		ContentModel:    cfg.LLM.ContentModel,
		LayoutModel:     cfg.LLM.LayoutModel,
		ExtractionModel: cfg.LLM.ExtractionModel,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize models")
	}
	log.Info().
		Str("chat", cfg.LLM.ChatModel).
		Str("content", cfg.LLM.ContentModel).
		Str("layout", cfg.LLM.LayoutModel).
		Str("extraction", cfg.LLM.ExtractionModel).
		Msg("✅ Models initialized successfully")

	guidelines := initGuidelines(ctx, cfg, log)

	var fetcher services.Fetcher
	switch cfg.Fetch.Mode {
	case "browser":
		fetcher = services.NewBrowserFetcher(cfg.Fetch.ChromePath, cfg.Fetch.Timeout, cfg.Fetch.MaxAttempts, cfg.Fetch.RetryDelay, log)
	default:
		fetcher = services.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxAttempts, cfg.Fetch.RetryDelay, log)
	}

	normalizer := services.NewDocumentNormalizer()
	store := services.NewSessionStore(services.ChatbotSystemPrompt)

	assistant := services.NewAssistant(services.AssistantConfig{
		Store:        store,
		Normalizer:   normalizer,
		Rasterizer:   services.NewPdftoppmRasterizer(cfg.Render.PdftoppmPath, cfg.Render.DPI, storageService),
		Resolver:     services.NewJobDescriptionResolver(normalizer, fetcher, modelSet.Extraction, log),
		Critique:     services.NewCritiqueEngine(modelSet.Content, modelSet.Layout, guidelines, log),
		Revision:     services.NewRevisionEngine(modelSet.Content, log),
		Chat:         modelSet.Chat,
		Recorder:     recorder,
		ModelTimeout: cfg.LLM.Timeout,
		Logger:       log,
	})
	log.Info().Msg("✅ Services initialized successfully")

	sweeper := services.NewSweeper(store, cfg.Session.IdleTTL, cfg.Session.SweepInterval, log)
	sweeper.Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Critic API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.Register(app, assistant, storageService)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("🛑 Shutting down server...")
		sweeper.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("❌ Server forced to shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("🚀 Server starting")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start server")
	}
}

// initGuidelines connects the optional guideline retriever. Embeddings
// always come from Gemini, so it needs a Gemini key whatever the chat
// provider is.
func initGuidelines(ctx context.Context, cfg *config.Config, log zerolog.Logger) services.GuidelineRetriever {
	if cfg.Qdrant.URL == "" || cfg.LLM.GeminiAPIKey == "" {
		log.Info().Msg("ℹ️ Guideline retrieval disabled")
		return nil
	}

	store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize Qdrant")
	}
	if err := store.InitCollection(ctx); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize Qdrant collection")
	}

	client, err := services.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize Gemini embeddings")
	}

	log.Info().Str("collection", cfg.Qdrant.Collection).Msg("✅ Qdrant initialized successfully")
	return services.NewGuidelineRetriever(services.NewGeminiEmbedder(client, cfg.LLM.EmbeddingModel), store, cfg.Qdrant.TopK)
}
