package mcpServer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type MockChat struct {
	OnProcessChat func(ctx context.Context, in rag.ChatInput) (rag.ChatResult, error)
	OnRetrieve    func(ctx context.Context, query string, maxChunks int) ([]commonModels.RetrievedChunk, error)
}

func (m *MockChat) ProcessChat(ctx context.Context, in rag.ChatInput) (rag.ChatResult, error) {
	return m.OnProcessChat(ctx, in)
}

func (m *MockChat) ResolveOrCreateConversation(ctx context.Context, id string) (string, error) {
	return id, nil
}

func (m *MockChat) Retrieve(ctx context.Context, query string, maxChunks int) ([]commonModels.RetrievedChunk, error) {
	return m.OnRetrieve(ctx, query, maxChunks)
}

type MockDocuments struct {
	OnListDocuments func(ctx context.Context) ([]commonModels.Document, error)
}

func (m *MockDocuments) ListDocuments(ctx context.Context) ([]commonModels.Document, error) {
	return m.OnListDocuments(ctx)
}

func newTestServer(t *testing.T, ports Ports) *Server {
	t.Helper()
	s, err := NewServer(ports)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestNewServer_RequiresChat(t *testing.T) {
	if _, err := NewServer(Ports{}); !errors.Is(err, ErrMissingChatService) {
		t.Errorf("err = %v, want ErrMissingChatService", err)
	}
}

func TestHandleAsk(t *testing.T) {
	var got rag.ChatInput
	var traced string
	chat := &MockChat{
		OnProcessChat: func(ctx context.Context, in rag.ChatInput) (rag.ChatResult, error) {
			got = in
			traced = logger_i.TraceID(ctx)
			return rag.ChatResult{
				Response:       "A matrícula vai até sexta.",
				ConversationId: "conv-1",
				MessageId:      "msg-2",
				Sources: []commonModels.SourceChunk{
					{Content: "prazo...", DocumentName: "calendario.pdf", PageNumber: 3, SimilarityScore: 0.91},
				},
			}, nil
		},
	}
	s := newTestServer(t, Ports{Chat: chat})

	_, out, err := s.handleAsk(context.Background(), nil, AskInput{Question: "Quando acaba a matrícula?", ConversationId: "0b6f3c2e-8a41-4d1e-9c55-2f7d1a9e6b10", MaxChunks: 3})
	if err != nil {
		t.Fatalf("handleAsk: %v", err)
	}
	if got.Message != "Quando acaba a matrícula?" || got.ConversationId != "0b6f3c2e-8a41-4d1e-9c55-2f7d1a9e6b10" || got.MaxChunks != 3 {
		t.Errorf("forwarded %+v", got)
	}
	if got.ReceivedAt.IsZero() {
		t.Error("ReceivedAt not set")
	}
	if traced == "" {
		t.Error("no trace id in context")
	}
	if out.Answer != "A matrícula vai até sexta." || out.MessageId != "msg-2" || len(out.Sources) != 1 {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.Sources[0].DocumentName != "calendario.pdf" || out.Sources[0].PageNumber != 3 {
		t.Errorf("source = %+v", out.Sources[0])
	}
}

func TestHandleAsk_PropagatesErrors(t *testing.T) {
	chat := &MockChat{
		OnProcessChat: func(ctx context.Context, in rag.ChatInput) (rag.ChatResult, error) {
			return rag.ChatResult{}, ragErrors.Validation("mensagem vazia")
		},
	}
	s := newTestServer(t, Ports{Chat: chat})

	if _, _, err := s.handleAsk(context.Background(), nil, AskInput{}); ragErrors.KindOf(err) != ragErrors.KindValidation {
		t.Errorf("err = %v, want a validation error", err)
	}
}

func TestHandleAsk_RejectsMalformedConversationId(t *testing.T) {
	called := false
	chat := &MockChat{
		OnProcessChat: func(ctx context.Context, in rag.ChatInput) (rag.ChatResult, error) {
			called = true
			return rag.ChatResult{}, nil
		},
	}
	s := newTestServer(t, Ports{Chat: chat})

	_, _, err := s.handleAsk(context.Background(), nil, AskInput{Question: "Oi", ConversationId: "conv-1"})
	if ragErrors.KindOf(err) != ragErrors.KindValidation {
		t.Errorf("err = %v, want a validation error", err)
	}
	if called {
		t.Error("chat service called with a malformed conversation id")
	}
}

func TestHandleSearch(t *testing.T) {
	long := strings.Repeat("a", 300)
	var gotK int
	chat := &MockChat{
		OnRetrieve: func(ctx context.Context, query string, maxChunks int) ([]commonModels.RetrievedChunk, error) {
			gotK = maxChunks
			return []commonModels.RetrievedChunk{
				{DocName: "regulamento.pdf", Content: long, PageNum: 1, Similarity: 0.8},
				{DocName: "regulamento.pdf", Content: "curto", PageNum: 2, Similarity: 0.7},
			}, nil
		},
	}
	s := newTestServer(t, Ports{Chat: chat})

	_, out, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "estágio", Limit: 2})
	if err != nil {
		t.Fatalf("handleSearch: %v", err)
	}
	if gotK != 2 {
		t.Errorf("limit forwarded as %d", gotK)
	}
	if out.Count != 2 || len(out.Results) != 2 {
		t.Fatalf("count = %d, results = %d", out.Count, len(out.Results))
	}
	if want := strings.Repeat("a", 200) + "..."; out.Results[0].Content != want {
		t.Errorf("first result not truncated: %d runes", len([]rune(out.Results[0].Content)))
	}
	if out.Results[1].Content != "curto" {
		t.Errorf("short content changed: %q", out.Results[1].Content)
	}
}

func TestHandleListDocuments(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		docs      []commonModels.Document
		err       error
		wantCount int
		wantErr   bool
	}{
		{name: "empty", wantCount: 0},
		{
			name: "two documents",
			docs: []commonModels.Document{
				{Id: "d1", Filename: "a.pdf", ChunkCount: 4, CreatedAt: created},
				{Id: "d2", Filename: "b.pdf", ChunkCount: 1, CreatedAt: created},
			},
			wantCount: 2,
		},
		{name: "store failure", err: errors.New("database is locked"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := &MockDocuments{
				OnListDocuments: func(ctx context.Context) ([]commonModels.Document, error) {
					return tt.docs, tt.err
				},
			}
			s := newTestServer(t, Ports{Chat: &MockChat{}, Documents: docs})

			_, out, err := s.handleListDocuments(context.Background(), nil, ListDocumentsInput{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if out.Count != tt.wantCount || len(out.Documents) != tt.wantCount {
				t.Errorf("count = %d, documents = %d, want %d", out.Count, len(out.Documents), tt.wantCount)
			}
			if tt.wantCount > 0 && (out.Documents[0].Filename != "a.pdf" || out.Documents[0].ChunksCount != 4) {
				t.Errorf("document = %+v", out.Documents[0])
			}
		})
	}
}

func TestRegisteredTools(t *testing.T) {
	tests := []struct {
		name  string
		ports Ports
		want  []string
	}{
		{"chat only", Ports{Chat: &MockChat{}}, []string{"ask", "search_documents"}},
		{"with documents", Ports{Chat: &MockChat{}, Documents: &MockDocuments{}}, []string{"ask", "list_documents", "search_documents"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestServer(t, tt.ports)

			clientTransport, serverTransport := mcp.NewInMemoryTransports()
			serverSession, err := s.server.Connect(ctx, serverTransport, nil)
			if err != nil {
				t.Fatalf("server connect: %v", err)
			}
			defer serverSession.Close()

			client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
			session, err := client.Connect(ctx, clientTransport, nil)
			if err != nil {
				t.Fatalf("client connect: %v", err)
			}
			defer session.Close()

			res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
			if err != nil {
				t.Fatalf("ListTools: %v", err)
			}
			var names []string
			for _, tool := range res.Tools {
				names = append(names, tool.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") {
				t.Errorf("tools = %v, want %v", names, tt.want)
			}
		})
	}
}
