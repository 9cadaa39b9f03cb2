package mcpServer

import (
	"context"
	"errors"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AskInput struct {
	Question       string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	ConversationId string `json:"conversation_id,omitempty" jsonschema:"continue an existing conversation"`
	MaxChunks      int    `json:"max_chunks,omitempty" jsonschema:"how many chunks to retrieve, 1 to 10 (default 5)"`
}

type SourceOutput struct {
	DocumentName    string  `json:"document_name"`
	PageNumber      int     `json:"page_number,omitempty"`
	SimilarityScore float32 `json:"similarity_score"`
	Content         string  `json:"content"`
}

type AskOutput struct {
	Answer         string         `json:"answer"`
	ConversationId string         `json:"conversation_id"`
	MessageId      string         `json:"message_id"`
	Sources        []SourceOutput `json:"sources"`
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"text to search for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of chunks, 1 to 10 (default 5)"`
}

type SearchOutput struct {
	Results []SourceOutput `json:"results"`
	Count   int            `json:"count"`
}

type ListDocumentsInput struct{}

type DocumentOutput struct {
	Id          string    `json:"id"`
	Filename    string    `json:"filename"`
	ChunksCount int       `json:"chunks_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the indexed documents, citing the chunks used",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Return the chunks most similar to a query, without generating an answer",
	}, s.handleSearch)
	if s.ports.Documents != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the documents that have been ingested",
		}, s.handleListDocuments)
	}
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	ctx = withTrace(ctx)
	if input.ConversationId != "" {
		if _, err := uuid.Parse(input.ConversationId); err != nil {
			return nil, AskOutput{}, ragErrors.Validation("conversation_id deve ser um UUID válido")
		}
	}
	res, err := s.ports.Chat.ProcessChat(ctx, rag.ChatInput{
		Message:        input.Question,
		ConversationId: input.ConversationId,
		MaxChunks:      input.MaxChunks,
		ReceivedAt:     time.Now(),
	})
	if err != nil {
		s.logger.FromContext(ctx).Error("ask failed", "error", err)
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:         res.Response,
		ConversationId: res.ConversationId,
		MessageId:      res.MessageId,
		Sources:        make([]SourceOutput, len(res.Sources)),
	}
	for i, src := range res.Sources {
		out.Sources[i] = SourceOutput{
			DocumentName:    src.DocumentName,
			PageNumber:      src.PageNumber,
			SimilarityScore: src.SimilarityScore,
			Content:         src.Content,
		}
	}
	return nil, out, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	ctx = withTrace(ctx)
	chunks, err := s.ports.Chat.Retrieve(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	out := SearchOutput{Results: make([]SourceOutput, len(chunks)), Count: len(chunks)}
	for i, c := range chunks {
		out.Results[i] = SourceOutput{
			DocumentName:    c.DocName,
			PageNumber:      c.PageNum,
			SimilarityScore: c.Similarity,
			Content:         rag.Preview(c.Content, config.PreviewLength),
		}
	}
	return nil, out, nil
}

func (s *Server) handleListDocuments(ctx context.Context, _ *mcp.CallToolRequest, _ ListDocumentsInput) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Documents == nil {
		return nil, ListDocumentsOutput{}, errors.New("document listing is not available")
	}
	docs, err := s.ports.Documents.ListDocuments(withTrace(ctx))
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	out := ListDocumentsOutput{Documents: make([]DocumentOutput, len(docs)), Count: len(docs)}
	for i, d := range docs {
		out.Documents[i] = DocumentOutput{Id: d.Id, Filename: d.Filename, ChunksCount: d.ChunkCount, CreatedAt: d.CreatedAt}
	}
	return nil, out, nil
}

func withTrace(ctx context.Context) context.Context {
	return context.WithValue(ctx, config.TRACE_ID_KEY, uuid.NewString())
}
