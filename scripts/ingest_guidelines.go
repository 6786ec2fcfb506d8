package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/resume-critic/internal/config"
	"alfredoptarigan/resume-critic/internal/logger"
	"alfredoptarigan/resume-critic/internal/services"
)

// Ingests resume-writing guides (PDF or DOCX) into the Qdrant collection
// used by the content critique.
//
//	go run ./scripts/ingest_guidelines.go [dir]
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Msg("🚀 Starting guideline ingestion...")

	dir := "./reference_docs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if cfg.Qdrant.URL == "" {
		log.Fatal().Msg("❌ QDRANT_URL is not set")
	}

	ctx := context.Background()

	client, err := services.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize Gemini")
	}
	embedder := services.NewGeminiEmbedder(client, cfg.LLM.EmbeddingModel)

	store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize Qdrant")
	}
	if err := store.InitCollection(ctx); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to initialize collection")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("❌ Failed to read guideline directory")
	}

	normalizer := services.NewDocumentNormalizer()
	chunker := services.NewTextChunker(1000, 200)

	successCount := 0
	failCount := 0

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".pdf" && ext != ".docx") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		docLog := log.With().Str("file", entry.Name()).Logger()
		docLog.Info().Msg("📄 Processing")

		data, err := os.ReadFile(path)
		if err != nil {
			docLog.Error().Err(err).Msg("❌ Failed to read file")
			failCount++
			continue
		}

		doc, err := normalizer.Normalize(entry.Name(), data)
		if err != nil {
			docLog.Error().Err(err).Msg("❌ Failed to extract text")
			failCount++
			continue
		}

		chunks := chunker.Chunk(doc.Text)
		docLog.Info().Int("pages", doc.PageCount).Int("chars", len(doc.Text)).Int("chunks", len(chunks)).Msg("✂️ Chunked text")

		// re-ingesting a file replaces its chunks
		if err := store.DeleteSource(ctx, entry.Name()); err != nil {
			docLog.Warn().Err(err).Msg("⚠️ Failed to remove previous chunks")
		}

		stored := 0
		for i, chunk := range chunks {
			embedding, err := embedder.Embed(ctx, chunk)
			if err != nil {
				docLog.Error().Err(err).Int("chunk", i+1).Msg("❌ Failed to generate embedding")
				continue
			}
			if err := store.UpsertGuideline(ctx, entry.Name(), chunk, embedding); err != nil {
				docLog.Error().Err(err).Int("chunk", i+1).Msg("❌ Failed to store chunk")
				continue
			}
			stored++
		}

		if stored == 0 {
			failCount++
			continue
		}
		docLog.Info().Int("stored", stored).Msg("✅ Ingested")
		successCount++
	}

	log.Info().Int("successful", successCount).Int("failed", failCount).Msg("📊 Ingestion summary")

	if failCount > 0 {
		log.Warn().Msg("⚠️ Some documents failed to ingest. Please check the logs above.")
		os.Exit(1)
	}
}
