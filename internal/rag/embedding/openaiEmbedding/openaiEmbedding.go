package openaiEmbedding

import (
	"context"
	"errors"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/customHttpClient"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/embedding"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type embeddingsAPI interface {
	New(ctx context.Context, body openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error)
}

type client struct {
	api       embeddingsAPI
	model     string
	dimension int
	batchSize int
	logger    *logger_i.Logger
}

func NewOpenAIEmbedder(apiKey string, modelName string, dimension int) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	c := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Shared()),
	)
	return newClient(&c.Embeddings, modelName, dimension), nil
}

func newClient(api embeddingsAPI, modelName string, dimension int) *client {
	log := logger_i.NewLogger("openai_embedding")
	log.Info("OpenAI Embedding client created", "model", modelName, "dimension", dimension)
	return &client{
		api:       api,
		model:     modelName,
		dimension: dimension,
		batchSize: config.EmbeddingBatchSize,
		logger:    log,
	}
}

func (c *client) Dimension() int    { return c.dimension }
func (c *client) ModelName() string { return c.model }

func (c *client) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	out := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, c.batchSize) {
		vectors, err := c.embed(ctx, batch)
		if err != nil {
			c.logger.FromContext(ctx).Error("Embedding batch failed", "size", len(batch), "error", err)
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	res, err := c.api.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(c.dimension)),
	})
	if err != nil {
		return nil, ragErrors.Embedding(err, "openai embedding request failed")
	}
	if res == nil {
		return nil, ragErrors.Embedding(nil, "openai returned no embeddings")
	}

	// the API tags each vector with the index of its input
	vectors := make([][]float32, len(texts))
	for _, d := range res.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, ragErrors.Embedding(nil, "openai returned out of range index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}
	if err := embedding.CheckVectors(vectors, len(texts), c.dimension); err != nil {
		return nil, err
	}
	return vectors, nil
}
