package commonModels

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentCommitted DocumentStatus = "committed"
	DocumentFailed    DocumentStatus = "failed"
)

type Document struct {
	Id            string         `json:"id"`
	Filename      string         `json:"filename"`
	SizeBytes     int64          `json:"file_size_bytes"`
	ChunkCount    int            `json:"chunks_count"`
	Status        DocumentStatus `json:"status"`
	FailureReason string         `json:"failure_reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	CommittedAt   *time.Time     `json:"processed_at,omitempty"`
}

// DocChunk is one embeddable window of a document, as stored in the vector index payload.
type DocChunk struct {
	ChunkId        string `json:"chunk_id"`
	DocumentId     string `json:"document_id"`
	DocName        string `json:"doc_name"`
	Content        string `json:"content"`
	PageNum        int    `json:"page_num"`
	ChunkIndex     int    `json:"chunk_index"`
	TotalChunks    int    `json:"total_chunks"`
	Source         string `json:"source"`
	EmbeddingModel string `json:"embedding_model"`
}

type RetrievedChunk struct {
	ChunkId    string  `json:"chunk_id"`
	DocumentId string  `json:"document_id"`
	DocName    string  `json:"doc_name"`
	Content    string  `json:"content"`
	PageNum    int     `json:"page_num"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float32 `json:"similarity_score"`
}

// SourceChunk is the truncated, response-only view of a RetrievedChunk.
type SourceChunk struct {
	Content         string  `json:"content"`
	DocumentName    string  `json:"document_name"`
	PageNumber      int     `json:"page_number,omitempty"`
	SimilarityScore float32 `json:"similarity_score"`
}

type Conversation struct {
	Id        string    `json:"id"`
	UserId    *string   `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Id             string      `json:"id"`
	ConversationId string      `json:"conversation_id"`
	Role           Role        `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
	Sources        []SourceRef `json:"sources,omitempty"`
}

// SourceRef links an assistant message to a chunk that grounded it.
type SourceRef struct {
	ChunkId      string  `json:"chunk_id"`
	DocumentName string  `json:"document_name"`
	PageNumber   int     `json:"page_number,omitempty"`
	Similarity   float32 `json:"similarity_score"`
}

// Turn is one user message and the assistant reply, appended as a unit.
type Turn struct {
	ConversationId string
	User           Message
	Assistant      Message
}

// PrepareTurn fills the ids, roles and timestamps a store needs before it
// writes a turn. Values already set are kept.
func PrepareTurn(turn Turn, now time.Time) Turn {
	fill := func(m Message, role Role) Message {
		if m.Id == "" {
			m.Id = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.ConversationId = turn.ConversationId
		m.Role = role
		return m
	}
	turn.User = fill(turn.User, RoleUser)
	turn.User.Sources = nil
	turn.Assistant = fill(turn.Assistant, RoleAssistant)
	return turn
}
