package handlers

import (
	"context"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/ingest"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

type connectionTester interface {
	TestConnection(ctx context.Context) bool
}

// Services is everything the handlers call. It is built once in main.
type Services struct {
	Chat          rag.Service
	Documents     ingest.Service
	Conversations storeModel.ConversationStore
	Database      connectionTester
	VectorIndex   connectionTester
	MaxUploadSize int64
	Debug         bool
}

type Handler struct {
	services Services
	logger   *logger_i.Logger
	now      func() time.Time
}

func New(services Services) *Handler {
	if services.MaxUploadSize <= 0 {
		services.MaxUploadSize = int64(config.DefaultMaxFileSizeMB) << 20
	}
	h := &Handler{
		services: services,
		logger:   logger_i.NewLogger("RequestHandler"),
		now:      time.Now,
	}
	h.logger.Info("Starting request handler")
	return h
}
