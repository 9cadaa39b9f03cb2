package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/TCC-RagBot/RagBot-Back/internal/customHttpClient"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/llm"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type llmClient struct {
	models    contentGenerator
	modelName string
	logger    *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, modelName string) (llm.Provider, error) {
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
	return newLLMClient(c.Models, modelName), nil
}

func newLLMClient(models contentGenerator, modelName string) *llmClient {
	log := logger_i.NewLogger("llm_gemini")
	log.Info("Gemini client created", "model", modelName)
	return &llmClient{models: models, modelName: modelName, logger: log}
}

func (c *llmClient) ModelName() string { return c.modelName }

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := c.logger.FromContext(ctx)

	result, err := c.models.GenerateContent(ctx, c.modelName, genai.Text(prompt), nil)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", ragErrors.Generation(err, "gemini generation failed")
	}
	if result == nil {
		return "", ragErrors.Generation(nil, "gemini returned an empty response")
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", ragErrors.Generation(nil, "gemini returned no text")
	}
	return text, nil
}
