package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/data/redisStore"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

var _ storeModel.ConversationStore = (*RedisConversationStore)(nil)

func NewRedisConversationStore(s *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  s,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func conversationKey(id string) string { return "conversation:" + id }
func messagesKey(id string) string     { return "conversation:" + id + ":messages" }

func (s *RedisConversationStore) CreateConversation(ctx context.Context, userId *string) (commonModels.Conversation, error) {
	conv := commonModels.Conversation{
		Id:        uuid.NewString(),
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}
	fields := map[string]any{
		"id":         conv.Id,
		"created_at": strconv.FormatInt(conv.CreatedAt.UnixNano(), 10),
	}
	if userId != nil {
		fields["user_id"] = *userId
	}
	if err := s.store.HashSet(ctx, conversationKey(conv.Id), fields); err != nil {
		s.logger.FromContext(ctx).Error("Error creating conversation", "error", err)
		return commonModels.Conversation{}, ragErrors.Storage(err, "creating conversation")
	}
	return conv, nil
}

// AppendTurn pushes both messages inside one MULTI/EXEC block.
func (s *RedisConversationStore) AppendTurn(ctx context.Context, turn commonModels.Turn) (commonModels.Turn, error) {
	if turn.ConversationId == "" {
		return commonModels.Turn{}, ragErrors.Validation("conversation id is required")
	}
	turn = commonModels.PrepareTurn(turn, time.Now().UTC())
	log := s.logger.FromContext(ctx).With("conversationId", turn.ConversationId)

	user, err := json.Marshal(turn.User)
	if err != nil {
		return commonModels.Turn{}, ragErrors.Storage(err, "encoding user message")
	}
	assistant, err := json.Marshal(turn.Assistant)
	if err != nil {
		return commonModels.Turn{}, ragErrors.Storage(err, "encoding assistant message")
	}

	err = s.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := conversationKey(turn.ConversationId)
		pipe.HSetNX(ctx, key, "id", turn.ConversationId)
		pipe.HSetNX(ctx, key, "created_at", strconv.FormatInt(turn.User.CreatedAt.UnixNano(), 10))
		pipe.RPush(ctx, messagesKey(turn.ConversationId), user, assistant)
		return nil
	})
	if err != nil {
		log.Error("Error saving turn", "error", err)
		return commonModels.Turn{}, ragErrors.Storage(err, "persisting turn for conversation %s", turn.ConversationId)
	}
	log.Debug("Saved turn successfully")
	return turn, nil
}

func (s *RedisConversationStore) ListMessages(ctx context.Context, conversationId string) ([]commonModels.Message, error) {
	found, err := s.store.Exists(ctx, conversationKey(conversationId))
	if err != nil {
		return nil, ragErrors.Storage(err, "checking conversation %s", conversationId)
	}
	if !found {
		return nil, ragErrors.NotFound("Conversa %s não encontrada", conversationId)
	}

	raw, err := s.store.ListGetAll(ctx, messagesKey(conversationId))
	if err != nil && !s.store.IsNil(err) {
		return nil, ragErrors.Storage(err, "listing messages of %s", conversationId)
	}
	messages := make([]commonModels.Message, 0, len(raw))
	for _, item := range raw {
		var msg commonModels.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, ragErrors.Storage(err, "decoding message of %s", conversationId)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *RedisConversationStore) TestConnection(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Redis health check failed", "error", err)
		return false
	}
	return true
}
