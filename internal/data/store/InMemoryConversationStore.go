package store

import (
	"context"
	"sync"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/google/uuid"
)

var inMemLogger = logger_i.NewLogger("InMem ConversationStore")

// InMemoryConversationStore is the fallback when Redis is offline. History
// does not survive a restart.
type InMemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]commonModels.Conversation
	messages      map[string][]commonModels.Message
}

var _ storeModel.ConversationStore = (*InMemoryConversationStore)(nil)

func NewInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		conversations: make(map[string]commonModels.Conversation),
		messages:      make(map[string][]commonModels.Message),
	}
}

func (store *InMemoryConversationStore) CreateConversation(ctx context.Context, userId *string) (commonModels.Conversation, error) {
	conv := commonModels.Conversation{Id: uuid.NewString(), UserId: userId, CreatedAt: time.Now().UTC()}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.conversations[conv.Id] = conv
	return conv, nil
}

func (store *InMemoryConversationStore) AppendTurn(ctx context.Context, turn commonModels.Turn) (commonModels.Turn, error) {
	if turn.ConversationId == "" {
		return commonModels.Turn{}, ragErrors.Validation("conversation id is required")
	}
	turn = commonModels.PrepareTurn(turn, time.Now().UTC())

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.conversations[turn.ConversationId]; !ok {
		store.conversations[turn.ConversationId] = commonModels.Conversation{
			Id:        turn.ConversationId,
			CreatedAt: turn.User.CreatedAt,
		}
	}
	store.messages[turn.ConversationId] = append(store.messages[turn.ConversationId], turn.User, turn.Assistant)
	inMemLogger.Debug("Saved turn to conversation store", "conversationId", turn.ConversationId)
	return turn, nil
}

func (store *InMemoryConversationStore) ListMessages(ctx context.Context, conversationId string) ([]commonModels.Message, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if _, ok := store.conversations[conversationId]; !ok {
		return nil, ragErrors.NotFound("Conversa %s não encontrada", conversationId)
	}
	return append([]commonModels.Message{}, store.messages[conversationId]...), nil
}

func (store *InMemoryConversationStore) TestConnection(ctx context.Context) bool { return true }
