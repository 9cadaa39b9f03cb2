package storeModel

import (
	"context"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
)

// DocumentStore keeps one record per ingested document. Filenames are unique;
// Reserve reports a duplicate as a validation error. FindByFilename sees rows
// in any status so a failed attempt can be cleared before a retry.
type DocumentStore interface {
	FindByFilename(ctx context.Context, filename string) (commonModels.Document, error)
	Reserve(ctx context.Context, doc commonModels.Document) (commonModels.Document, error)
	Commit(ctx context.Context, id string, chunkCount int) (commonModels.Document, error)
	MarkFailed(ctx context.Context, id string, reason string) error
	Release(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (commonModels.Document, error)
	List(ctx context.Context) ([]commonModels.Document, error)
	Delete(ctx context.Context, id string) error
	ListStale(ctx context.Context, pendingBefore time.Time) ([]commonModels.Document, error)
	TestConnection(ctx context.Context) bool
}

// ConversationStore persists conversations and their ordered messages.
// AppendTurn writes both messages of a turn or neither.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userId *string) (commonModels.Conversation, error)
	AppendTurn(ctx context.Context, turn commonModels.Turn) (commonModels.Turn, error)
	ListMessages(ctx context.Context, conversationId string) ([]commonModels.Message, error)
	TestConnection(ctx context.Context) bool
}
