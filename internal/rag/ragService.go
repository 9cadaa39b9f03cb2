package rag

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/TCC-RagBot/RagBot-Back/internal/metrics"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/embedding"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/llm"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

/*
Service is the public contract the HTTP handlers and the MCP tools call.
service is the private implementation holding the index, the model clients
and the conversation store. Keeping it lowercase means callers cannot reach
those dependencies, and tests swap them for mocks through NewService.
*/

type Service interface {
	ProcessChat(ctx context.Context, in ChatInput) (ChatResult, error)
	ResolveOrCreateConversation(ctx context.Context, id string) (string, error)
	Retrieve(ctx context.Context, query string, maxChunks int) ([]commonModels.RetrievedChunk, error)
}

type ChatInput struct {
	Message        string
	ConversationId string
	UserId         *string
	MaxChunks      int
	ReceivedAt     time.Time
}

type ChatResult struct {
	Response       string                     `json:"response"`
	ConversationId string                     `json:"conversation_id"`
	MessageId      string                     `json:"message_id"`
	Sources        []commonModels.SourceChunk `json:"sources"`
	ProcessingTime time.Duration              `json:"processing_time"`
}

type Option func(*service)

// WithDefaultMaxChunks sets k for requests that do not ask for one.
func WithDefaultMaxChunks(k int) Option {
	return func(s *service) { s.defaultK = clampK(k, config.DefaultMaxChunks) }
}

type service struct {
	index         vectorDB.Index
	embedder      embedding.Embedder
	llmProvider   llm.Provider
	conversations storeModel.ConversationStore
	defaultK      int
	logger        *logger_i.Logger
}

func NewService(index vectorDB.Index, em embedding.Embedder, generator llm.Provider, conversations storeModel.ConversationStore, opts ...Option) Service {
	s := &service{
		index:         index,
		embedder:      em,
		llmProvider:   generator,
		conversations: conversations,
		defaultK:      config.DefaultMaxChunks,
		logger:        logger_i.NewLogger("RAG Service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ProcessChat(ctx context.Context, in ChatInput) (result ChatResult, err error) {
	t := s.newTurn(ctx, in)
	defer func() {
		status := "success"
		if err != nil {
			status = string(ragErrors.KindOf(err))
			t.log.Error("ProcessChat failed", "step", t.step, "error", err)
		}
		metrics.CaptureRequestMetrics("chat", status, time.Since(t.startedAt))
	}()

	if err := validateMessage(in.Message); err != nil {
		return ChatResult{}, t.fail(err)
	}

	t.enter(StepResolve)
	conversationId, err := s.resolve(ctx, in.ConversationId, in.UserId)
	if err != nil {
		return ChatResult{}, t.fail(err)
	}
	t.conversationId = conversationId
	t.log = t.log.With("conversationId", conversationId)

	t.enter(StepRetrieve)
	chunks, err := s.retrieve(ctx, in.Message, clampK(in.MaxChunks, s.defaultK))
	if err != nil {
		return ChatResult{}, t.fail(err)
	}

	var answer string
	if len(chunks) == 0 {
		t.enter(StepNoContext)
		answer = llm.FallbackMessage
	} else {
		t.enter(StepBuildPrompt)
		prompt := llm.BuildPrompt(in.Message, chunks)

		t.enter(StepGenerate)
		answer, err = s.generate(ctx, prompt)
		if err != nil {
			return ChatResult{}, t.fail(err)
		}
	}

	t.enter(StepPersist)
	saved, err := s.persist(ctx, conversationId, in.Message, answer, chunks)
	if err != nil {
		return ChatResult{}, t.fail(err)
	}

	t.enter(StepRespond)
	return ChatResult{
		Response:       answer,
		ConversationId: conversationId,
		MessageId:      saved.Assistant.Id,
		Sources:        toSources(chunks),
		ProcessingTime: time.Since(t.startedAt),
	}, nil
}

func (s *service) ResolveOrCreateConversation(ctx context.Context, id string) (string, error) {
	return s.resolve(ctx, id, nil)
}

// Retrieve embeds query and returns the closest chunks, with k clamped the
// same way chat requests are.
func (s *service) Retrieve(ctx context.Context, query string, maxChunks int) ([]commonModels.RetrievedChunk, error) {
	if err := validateMessage(query); err != nil {
		return nil, err
	}
	return s.retrieve(ctx, query, clampK(maxChunks, s.defaultK))
}

func validateMessage(msg string) error {
	n := utf8.RuneCountInString(msg)
	if strings.TrimSpace(msg) == "" {
		return ragErrors.Validation("A mensagem não pode estar vazia")
	}
	if n > config.MaxMessageLength {
		return ragErrors.Validation("A mensagem excede %d caracteres", config.MaxMessageLength)
	}
	return nil
}
