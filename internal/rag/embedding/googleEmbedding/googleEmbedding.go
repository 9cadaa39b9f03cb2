package googleEmbedding

import (
	"context"
	"errors"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/customHttpClient"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/embedding"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"google.golang.org/genai"
)

// contentEmbedder is the slice of *genai.Models this package calls.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type client struct {
	models    contentEmbedder
	model     string
	dimension int32
	batchSize int
	logger    *logger_i.Logger
}

// NewGoogleEmbedder builds the Gemini embedder. It is meant to be constructed
// once at start-up and shared.
func NewGoogleEmbedder(ctx context.Context, apiKey string, modelName string, dimension int) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.Shared(),
	})
	if err != nil {
		return nil, err
	}
	return newClient(c.Models, modelName, dimension), nil
}

func newClient(models contentEmbedder, modelName string, dimension int) *client {
	log := logger_i.NewLogger("google_embedding")
	log.Info("Google Embedding client created", "model", modelName, "dimension", dimension)
	return &client{
		models:    models,
		model:     modelName,
		dimension: int32(dimension),
		batchSize: config.EmbeddingBatchSize,
		logger:    log,
	}
}

func (c *client) Dimension() int    { return int(c.dimension) }
func (c *client) ModelName() string { return c.model }

func (c *client) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, config.EmbeddingTaskTypeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	log := c.logger.FromContext(ctx)

	out := make([][]float32, 0, len(texts))
	for i, batch := range embedding.Batches(texts, c.batchSize) {
		vectors, err := c.embed(ctx, batch, config.EmbeddingTaskTypeDocument)
		if err != nil {
			log.Error("Embedding batch failed", "batch", i, "size", len(batch), "error", err)
			return nil, err
		}
		out = append(out, vectors...)
	}
	log.Debug("Embedded texts", "count", len(out))
	return out, nil
}

func (c *client) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	result, err := c.models.EmbedContent(ctx, c.model, getContent(texts), &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             taskType,
	})
	if err != nil {
		return nil, ragErrors.Embedding(err, "gemini embedding request failed")
	}
	if result == nil {
		return nil, ragErrors.Embedding(nil, "gemini returned no embeddings")
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	if err := embedding.CheckVectors(vectors, len(texts), int(c.dimension)); err != nil {
		return nil, err
	}
	return vectors, nil
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		})
	}
	return contents
}
