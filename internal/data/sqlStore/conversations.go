package sqlStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/google/uuid"
)

type conversationStore struct {
	store *Store
}

var _ storeModel.ConversationStore = (*conversationStore)(nil)

func (s *conversationStore) CreateConversation(ctx context.Context, userId *string) (commonModels.Conversation, error) {
	conv := commonModels.Conversation{
		Id:        uuid.NewString(),
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.store.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, created_at) VALUES (?, ?, ?)`,
		conv.Id, nullString(userId), toUnix(conv.CreatedAt))
	if err != nil {
		return commonModels.Conversation{}, ragErrors.Storage(err, "creating conversation")
	}
	return conv, nil
}

// AppendTurn writes the user message and the assistant reply in one
// transaction. A conversation id the store has not seen yet is created on the
// fly.
func (s *conversationStore) AppendTurn(ctx context.Context, turn commonModels.Turn) (commonModels.Turn, error) {
	if turn.ConversationId == "" {
		return commonModels.Turn{}, ragErrors.Validation("conversation id is required")
	}
	turn = commonModels.PrepareTurn(turn, time.Now().UTC())

	err := s.store.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO conversations (id, created_at) VALUES (?, ?)`,
			turn.ConversationId, toUnix(turn.User.CreatedAt))
		if err != nil {
			return fmt.Errorf("ensuring conversation: %w", err)
		}

		var seq int64
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE conversation_id = ?`,
			turn.ConversationId).Scan(&seq)
		if err != nil {
			return fmt.Errorf("reading message sequence: %w", err)
		}

		for _, msg := range []commonModels.Message{turn.User, turn.Assistant} {
			seq++
			if err := insertMessage(ctx, tx, msg, seq); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return commonModels.Turn{}, ragErrors.Storage(err, "persisting turn for conversation %s", turn.ConversationId)
	}
	return turn, nil
}

func (s *conversationStore) ListMessages(ctx context.Context, conversationId string) ([]commonModels.Message, error) {
	var exists bool
	err := s.store.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM conversations WHERE id = ?)`, conversationId).Scan(&exists)
	if err != nil {
		return nil, ragErrors.Storage(err, "checking conversation %s", conversationId)
	}
	if !exists {
		return nil, ragErrors.NotFound("Conversa %s não encontrada", conversationId)
	}

	rows, err := s.store.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, sources, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY seq`, conversationId)
	if err != nil {
		return nil, ragErrors.Storage(err, "listing messages of %s", conversationId)
	}
	defer rows.Close()

	messages := []commonModels.Message{}
	for rows.Next() {
		var (
			msg       commonModels.Message
			role      string
			sources   string
			createdAt int64
		)
		if err := rows.Scan(&msg.Id, &msg.ConversationId, &role, &msg.Content, &sources, &createdAt); err != nil {
			return nil, ragErrors.Storage(err, "scanning message")
		}
		msg.Role = commonModels.Role(role)
		msg.CreatedAt = fromUnix(createdAt)
		if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
			return nil, ragErrors.Storage(err, "decoding sources of message %s", msg.Id)
		}
		if len(msg.Sources) == 0 {
			msg.Sources = nil
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, ragErrors.Storage(err, "listing messages of %s", conversationId)
	}
	return messages, nil
}

func (s *conversationStore) TestConnection(ctx context.Context) bool {
	return s.store.TestConnection(ctx)
}

func insertMessage(ctx context.Context, tx *sql.Tx, msg commonModels.Message, seq int64) error {
	sources := msg.Sources
	if sources == nil {
		sources = []commonModels.SourceRef{}
	}
	encoded, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, seq, role, content, sources, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.Id, msg.ConversationId, seq, string(msg.Role), msg.Content, string(encoded), toUnix(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting %s message: %w", msg.Role, err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
