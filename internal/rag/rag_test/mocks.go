package rag_test

import (
	"context"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
)

// MockIndex implements vectorDB.Index
type MockIndex struct {
	OnSearch func(ctx context.Context, vector []float32, k int) ([]commonModels.RetrievedChunk, error)
	lastK    int
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error { return nil }

func (m *MockIndex) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	return nil
}

func (m *MockIndex) Search(ctx context.Context, vector []float32, k int) ([]commonModels.RetrievedChunk, error) {
	m.lastK = k
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, k)
	}
	return []commonModels.RetrievedChunk{}, nil
}

func (m *MockIndex) DeleteByDocument(ctx context.Context, documentId string) (int, error) {
	return 0, nil
}

func (m *MockIndex) TestConnection(ctx context.Context) bool { return true }

type MockEmbedder struct {
	OnEmbedOne func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedOne != nil {
		return m.OnEmbedOne(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int    { return 3 }
func (m *MockEmbedder) ModelName() string { return "mock-embedding" }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
	calls      int
	lastPrompt string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) ModelName() string { return "mock-llm" }

// MockConversationStore wraps a real store so tests can inject failures.
type MockConversationStore struct {
	Inner          storeModel.ConversationStore
	OnCreate       func(ctx context.Context, userId *string) (commonModels.Conversation, error)
	OnAppendTurn   func(ctx context.Context, turn commonModels.Turn) (commonModels.Turn, error)
	createdUserIds []*string
}

func (m *MockConversationStore) CreateConversation(ctx context.Context, userId *string) (commonModels.Conversation, error) {
	m.createdUserIds = append(m.createdUserIds, userId)
	if m.OnCreate != nil {
		return m.OnCreate(ctx, userId)
	}
	return m.Inner.CreateConversation(ctx, userId)
}

func (m *MockConversationStore) AppendTurn(ctx context.Context, turn commonModels.Turn) (commonModels.Turn, error) {
	if m.OnAppendTurn != nil {
		return m.OnAppendTurn(ctx, turn)
	}
	return m.Inner.AppendTurn(ctx, turn)
}

func (m *MockConversationStore) ListMessages(ctx context.Context, conversationId string) ([]commonModels.Message, error) {
	return m.Inner.ListMessages(ctx, conversationId)
}

func (m *MockConversationStore) TestConnection(ctx context.Context) bool { return true }
