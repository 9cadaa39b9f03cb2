package openaiLLM

import (
	"context"
	"errors"
	"strings"

	"github.com/TCC-RagBot/RagBot-Back/internal/customHttpClient"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/llm"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type completionsAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type llmClient struct {
	api       completionsAPI
	modelName string
	logger    *logger_i.Logger
}

func NewOpenAIClient(apiKey string, modelName string) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	c := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.Shared()),
	)
	return newLLMClient(&c.Chat.Completions, modelName), nil
}

func newLLMClient(api completionsAPI, modelName string) *llmClient {
	log := logger_i.NewLogger("llm_openai")
	log.Info("OpenAI client created", "model", modelName)
	return &llmClient{api: api, modelName: modelName, logger: log}
}

func (c *llmClient) ModelName() string { return c.modelName }

func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := c.api.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(c.modelName),
	})
	if err != nil {
		c.logger.FromContext(ctx).Error("OpenAI generation failed", "error", err)
		return "", ragErrors.Generation(err, "openai generation failed")
	}
	if res == nil || len(res.Choices) == 0 {
		return "", ragErrors.Generation(nil, "openai returned no choices")
	}
	text := res.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", ragErrors.Generation(nil, "openai returned no text")
	}
	return text, nil
}
