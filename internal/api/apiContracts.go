package api

import "time"

type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Degraded  HealthStatus = "degraded"
	Unhealthy HealthStatus = "unhealthy"
)

// requests---------------------

type ChatRequest struct {
	Message        string  `json:"message" validate:"required" example:"Qual o prazo de matrícula?"`
	ConversationId string  `json:"conversation_id,omitempty" example:"6f1c1f0e-6d3b-4b2a-9d7e-0c6c1c0b5a11"`
	MaxChunks      int     `json:"max_chunks,omitempty" example:"5"`
	UserId         *string `json:"user_id,omitempty"`
}

// responses---------------------

type SourceChunk struct {
	Content         string  `json:"content"`
	DocumentName    string  `json:"document_name" example:"regulamento.pdf"`
	PageNumber      *int    `json:"page_number,omitempty" example:"3"`
	SimilarityScore float32 `json:"similarity_score" example:"0.82"`
}

type ChatResponse struct {
	Response       string        `json:"response"`
	ConversationId string        `json:"conversation_id"`
	MessageId      string        `json:"message_id"`
	Sources        []SourceChunk `json:"sources"`
	ProcessingTime float64       `json:"processing_time" example:"1.42"`
}

type DocumentUploadResponse struct {
	DocumentId     string  `json:"document_id"`
	Filename       string  `json:"filename" example:"regulamento.pdf"`
	ChunksCreated  int     `json:"chunks_created" example:"12"`
	ProcessingTime float64 `json:"processing_time" example:"3.7"`
	Status         string  `json:"status" example:"success"`
}

type DocumentResponse struct {
	Id            string     `json:"id"`
	Filename      string     `json:"filename"`
	FileSizeBytes int64      `json:"file_size_bytes"`
	ChunksCount   int        `json:"chunks_count"`
	CreatedAt     time.Time  `json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

type DeleteDocumentResponse struct {
	DocumentId    string `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksRemoved int    `json:"chunks_removed"`
}

type MessageSource struct {
	ChunkId         string  `json:"chunk_id"`
	DocumentName    string  `json:"document_name"`
	PageNumber      *int    `json:"page_number,omitempty"`
	SimilarityScore float32 `json:"similarity_score"`
}

type MessageResponse struct {
	Id        string          `json:"id"`
	Role      string          `json:"role" example:"assistant"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Sources   []MessageSource `json:"sources,omitempty"`
}

type ConversationMessagesResponse struct {
	ConversationId string            `json:"conversation_id"`
	Messages       []MessageResponse `json:"messages"`
}

type HealthResponse struct {
	Status            HealthStatus `json:"status" example:"healthy"`
	Timestamp         string       `json:"timestamp"`
	Version           string       `json:"version" example:"1.0.0"`
	DatabaseStatus    HealthStatus `json:"database_status" example:"healthy"`
	VectorIndexStatus HealthStatus `json:"vector_index_status" example:"healthy"`
}

type WelcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

type ErrorResponse struct {
	Error     string `json:"error" example:"VALIDATION_ERROR"`
	Detail    string `json:"detail,omitempty" example:"A mensagem não pode estar vazia"`
	Timestamp string `json:"timestamp"`
	TraceId   string `json:"trace_id,omitempty"`
}
