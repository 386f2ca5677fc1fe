package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"versebox/internal/config"
	"versebox/internal/corpus"
	"versebox/internal/http"
	"versebox/internal/llm"
	"versebox/internal/recommend"
	"versebox/internal/storage"
	"versebox/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API recommends Bible verses for free-text queries and exact scripture
// references, and stores prayer postboxes with verse postcards.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Versebox API
//   description: |
//     Bible verse recommendation API. Queries may be mood or situation
//     keywords or exact scripture references; results blend curated theme
//     verses with semantic vector search.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	postboxRepo := storage.NewPostboxRepo(db)
	postcardRepo := storage.NewPostcardRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	exists, err := vectorStore.CollectionExists(ctx, cfg.QdrantCollection)
	if err != nil {
		slog.Warn("Could not verify Qdrant collection", "collection", cfg.QdrantCollection, "error", err)
	} else if !exists {
		slog.Warn("Qdrant collection does not exist yet", "collection", cfg.QdrantCollection)
	} else {
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection)
	}

	// Validate embedding client vector size (fail-fast)
	embedClient := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testVector, err := embedClient.Embed(ctx, "test")
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testVector) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testVector))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	embedder, err := llm.NewCachingEmbedder(embedClient, cfg.EmbedCacheSize)
	if err != nil {
		log.Fatalf("Failed to create embedding cache: %v", err)
	}

	// Create corpus index and exact reference resolver
	verseIndex := corpus.NewIndex(vectorStore, cfg.QdrantCollection)
	resolver := corpus.NewResolver(verseIndex, vectorStore, embedder, cfg.QdrantCollection)

	// Create recommendation engine
	engine := recommend.NewEngine(embedder, vectorStore, cfg.QdrantCollection, verseIndex, resolver)
	slog.Info("Recommendation engine initialized")

	// Schedule the postbox unlock sweep. The date check in the handlers
	// already makes the transition immediate; the sweep keeps the stored
	// flags in line afterwards.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.UnlockCron, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if time.Now().Before(cfg.UnlockDate) {
			return
		}
		affected, err := postboxRepo.UnlockAll(sweepCtx)
		if err != nil {
			slog.Error("Postbox unlock sweep failed", "error", err)
			return
		}
		slog.Info("Postbox unlock sweep completed", "unlocked", affected)
	})
	if err != nil {
		log.Fatalf("Failed to schedule unlock sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router with dependencies
	deps := &http.Deps{
		Engine:         engine,
		VectorStore:    vectorStore,
		DB:             db,
		PostboxStore:   postboxRepo,
		PostcardStore:  postcardRepo,
		CollectionName: cfg.QdrantCollection,
		UnlockDate:     cfg.UnlockDate,
		BaseURL:        "http://localhost:" + cfg.APIPort,
	}
	router := http.NewRouter(deps)

	// Warm the verse index in the background so the first query does not
	// pay the full scroll cost.
	go func() {
		warmCtx := context.Background()
		slog.Info("Starting background verse index warmup")
		if err := verseIndex.EnsureLoaded(warmCtx); err != nil {
			slog.Error("Verse index warmup failed", "error", err)
			return
		}
		if err := verseIndex.EnsureCurated(warmCtx); err != nil {
			slog.Error("Curated index warmup failed", "error", err)
			return
		}
		slog.Info("Verse index warmup completed")
	}()

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
