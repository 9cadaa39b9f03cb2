// Package app builds the long-lived clients every binary shares from the
// loaded settings, and tears them down again.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/data/redisStore"
	"github.com/TCC-RagBot/RagBot-Back/internal/data/sqlStore"
	"github.com/TCC-RagBot/RagBot-Back/internal/data/store"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/chunker"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/embedding"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/embedding/googleEmbedding"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/embedding/openaiEmbedding"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/ingest"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/llm"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/llm/gemini"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/llm/openaiLLM"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB/memoryDB"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB/qdrantDB"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

type App struct {
	Settings config.Settings
	Database *sqlStore.Store
	Index    vectorDB.Index
	Embedder embedding.Embedder

	closers []func() error
	logger  *logger_i.Logger
}

// Build opens the database, the vector index and the embedder. Anything
// opened before a failure is closed again.
func Build(ctx context.Context, settings config.Settings) (a *App, err error) {
	a = &App{Settings: settings, logger: logger_i.NewLogger("App")}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.Database, err = sqlStore.Open(ctx, settings.DatabaseURL)
	if err != nil {
		return a, fmt.Errorf("opening database: %w", err)
	}
	a.closers = append(a.closers, a.Database.Close)

	if a.Index, err = a.newIndex(ctx); err != nil {
		return a, err
	}
	if a.Embedder, err = NewEmbedder(ctx, settings); err != nil {
		return a, err
	}
	a.logger.Info("Services initialized",
		"vectorBackend", settings.VectorBackend,
		"embeddingProvider", settings.EmbeddingProvider,
		"embeddingModel", a.Embedder.ModelName())
	return a, nil
}

func (a *App) newIndex(ctx context.Context) (vectorDB.Index, error) {
	s := a.Settings
	if s.VectorBackend == config.BackendMemory {
		// document rows from a previous run point at vectors that no longer exist
		purged, err := a.Database.PurgeDocuments(ctx)
		if err != nil {
			return nil, err
		}
		a.logger.Warn("Using the in-memory vector index, chunks are lost on exit", "documentsPurged", purged)
		return memoryDB.New(s.EmbeddingDimension), nil
	}
	holder, err := qdrantDB.NewQdrantIndex(ctx, qdrantDB.Options{
		Host:       s.QdrantHost,
		Port:       s.QdrantPort,
		APIKey:     s.QdrantAPIKey,
		UseTLS:     s.QdrantUseTLS,
		Collection: s.QdrantCollection,
		Dimension:  s.EmbeddingDimension,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	a.closers = append(a.closers, holder.Close)
	return holder, nil
}

func NewEmbedder(ctx context.Context, s config.Settings) (embedding.Embedder, error) {
	switch s.EmbeddingProvider {
	case config.ProviderOpenAI:
		return openaiEmbedding.NewOpenAIEmbedder(s.OpenAIAPIKey, s.EmbeddingModel, s.EmbeddingDimension)
	case config.ProviderGemini:
		return googleEmbedding.NewGoogleEmbedder(ctx, s.GeminiAPIKey, s.EmbeddingModel, s.EmbeddingDimension)
	}
	return nil, fmt.Errorf("unknown embedding provider %q", s.EmbeddingProvider)
}

func NewGenerator(ctx context.Context, s config.Settings) (llm.Provider, error) {
	switch s.LLMProvider {
	case config.ProviderOpenAI:
		return openaiLLM.NewOpenAIClient(s.OpenAIAPIKey, s.LLMModel)
	case config.ProviderGemini:
		return gemini.NewGeminiClient(ctx, s.GeminiAPIKey, s.LLMModel)
	}
	return nil, fmt.Errorf("unknown llm provider %q", s.LLMProvider)
}

// Conversations returns the configured conversation store. An unreachable
// Redis falls back to process memory so chat keeps working.
func (a *App) Conversations(ctx context.Context) storeModel.ConversationStore {
	if a.Settings.ConversationBackend != config.BackendRedis {
		return a.Database.Conversations()
	}
	redisClient, err := redisStore.New(ctx, redisStore.Options{
		Addr:     a.Settings.RedisAddr,
		Password: a.Settings.RedisPassword,
		DB:       a.Settings.RedisDB,
	})
	if err != nil {
		a.logger.Error("Redis stores are offline, keeping conversations in memory", "error", err)
		return store.NewInMemoryConversationStore()
	}
	a.closers = append(a.closers, redisClient.Close)
	return store.NewRedisConversationStore(redisClient)
}

func (a *App) IngestService() (ingest.Service, error) {
	splitter, err := chunker.New(
		chunker.WithChunkSize(a.Settings.ChunkSize),
		chunker.WithOverlap(a.Settings.ChunkOverlap),
	)
	if err != nil {
		return nil, fmt.Errorf("building chunker: %w", err)
	}
	return ingest.NewService(
		ingest.NewPDFExtractor(),
		splitter,
		a.Embedder,
		a.Index,
		a.Database.Documents(),
		ingest.WithMaxFileSize(a.Settings.MaxFileSizeBytes()),
	), nil
}

func (a *App) ChatService(ctx context.Context, conversations storeModel.ConversationStore) (rag.Service, error) {
	generator, err := NewGenerator(ctx, a.Settings)
	if err != nil {
		return nil, err
	}
	a.logger.Info("LLM provider ready", "provider", a.Settings.LLMProvider, "model", generator.ModelName())
	return rag.NewService(a.Index, a.Embedder, generator, conversations,
		rag.WithDefaultMaxChunks(a.Settings.MaxChunksRetrieved),
	), nil
}

// Close releases clients in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
