package adapter

import (
	"errors"
	"net/http"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/api"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/ingest"
)

const internalErrorDetail = "Ocorreu um erro inesperado. Tente novamente mais tarde."

func ToChatResponse(res rag.ChatResult) api.ChatResponse {
	sources := make([]api.SourceChunk, len(res.Sources))
	for i, s := range res.Sources {
		sources[i] = api.SourceChunk{
			Content:         s.Content,
			DocumentName:    s.DocumentName,
			PageNumber:      pageNumber(s.PageNumber),
			SimilarityScore: s.SimilarityScore,
		}
	}
	return api.ChatResponse{
		Response:       res.Response,
		ConversationId: res.ConversationId,
		MessageId:      res.MessageId,
		Sources:        sources,
		ProcessingTime: res.ProcessingTime.Seconds(),
	}
}

func ToUploadResponse(res ingest.Result) api.DocumentUploadResponse {
	return api.DocumentUploadResponse{
		DocumentId:     res.DocumentId,
		Filename:       res.Filename,
		ChunksCreated:  res.ChunksCreated,
		ProcessingTime: res.ProcessingTime.Seconds(),
		Status:         res.Status,
	}
}

func ToDocumentResponse(doc commonModels.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:            doc.Id,
		Filename:      doc.Filename,
		FileSizeBytes: doc.SizeBytes,
		ChunksCount:   doc.ChunkCount,
		CreatedAt:     doc.CreatedAt,
		ProcessedAt:   doc.CommittedAt,
	}
}

func ToDocumentListResponse(docs []commonModels.Document) api.DocumentListResponse {
	out := make([]api.DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = ToDocumentResponse(d)
	}
	return api.DocumentListResponse{Documents: out, Total: len(out)}
}

func ToDeleteResponse(res ingest.DeleteResult) api.DeleteDocumentResponse {
	return api.DeleteDocumentResponse{
		DocumentId:    res.DocumentId,
		Filename:      res.Filename,
		ChunksRemoved: res.ChunksRemoved,
	}
}

func ToMessagesResponse(conversationId string, msgs []commonModels.Message) api.ConversationMessagesResponse {
	out := make([]api.MessageResponse, len(msgs))
	for i, m := range msgs {
		var sources []api.MessageSource
		for _, s := range m.Sources {
			sources = append(sources, api.MessageSource{
				ChunkId:         s.ChunkId,
				DocumentName:    s.DocumentName,
				PageNumber:      pageNumber(s.PageNumber),
				SimilarityScore: s.Similarity,
			})
		}
		out[i] = api.MessageResponse{
			Id:        m.Id,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Sources:   sources,
		}
	}
	return api.ConversationMessagesResponse{ConversationId: conversationId, Messages: out}
}

// HTTPStatus maps an error kind to the status code the API answers with.
func HTTPStatus(err error) int {
	switch ragErrors.KindOf(err) {
	case ragErrors.KindValidation:
		return http.StatusBadRequest
	case ragErrors.KindExtraction:
		return http.StatusUnprocessableEntity
	case ragErrors.KindNotFound:
		return http.StatusNotFound
	case ragErrors.KindEmbedding, ragErrors.KindGeneration:
		return http.StatusBadGateway
	case ragErrors.KindIndexUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ToErrorResponse hides the cause of internal and storage errors from callers.
func ToErrorResponse(err error, traceId string, now time.Time) api.ErrorResponse {
	res := api.ErrorResponse{
		Error:     string(ragErrors.KindOf(err)),
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		TraceId:   traceId,
	}
	switch ragErrors.KindOf(err) {
	case ragErrors.KindInternal, ragErrors.KindStorage:
		res.Detail = internalErrorDetail
	default:
		res.Detail = detail(err)
	}
	return res
}

func BadRequest(message, traceId string, now time.Time) api.ErrorResponse {
	return ToErrorResponse(ragErrors.Validation("%s", message), traceId, now)
}

func detail(err error) string {
	var e *ragErrors.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func pageNumber(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
