package handlers

import (
	"net/http"

	"github.com/TCC-RagBot/RagBot-Back/internal/adapter"
	"github.com/TCC-RagBot/RagBot-Back/internal/adapter/utils"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/google/uuid"
)

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Tags         Documentos
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Router       /documents [get]
func (h *Handler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(w, r) {
		return
	}
	docs, err := h.services.Documents.ListDocuments(r.Context())
	if err != nil {
		h.WriteErrorResponse(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
}

// GetDocumentHandler godoc
// @Summary      Get one document
// @Tags         Documentos
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [get]
func (h *Handler) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(w, r) {
		return
	}
	doc, err := h.services.Documents.GetDocument(r.Context(), utils.GetChiURLParam(r, "id"))
	if err != nil {
		h.WriteErrorResponse(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document and its chunks
// @Tags         Documentos
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DeleteDocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse  "Vector index unavailable"
// @Router       /documents/{id} [delete]
func (h *Handler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(w, r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	result, err := h.services.Documents.DeleteDocument(r.Context(), id)
	if err != nil {
		h.WriteErrorResponse(w, r, err)
		return
	}
	h.logger.FromContext(r.Context()).Info("Document deleted", "documentId", id, "chunksRemoved", result.ChunksRemoved)
	writeJsonResponse(w, http.StatusOK, adapter.ToDeleteResponse(result))
}

// ConversationMessagesHandler godoc
// @Summary      Conversation history
// @Description  Messages of a conversation in the order they were written.
// @Tags         Chat
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  api.ConversationMessagesResponse
// @Failure      400  {object}  api.ErrorResponse  "Not a UUID"
// @Failure      404  {object}  api.ErrorResponse
// @Router       /conversations/{id}/messages [get]
func (h *Handler) ConversationMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(w, r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.WriteErrorResponse(w, r, ragErrors.Validation("conversation_id deve ser um UUID válido"))
		return
	}
	msgs, err := h.services.Conversations.ListMessages(r.Context(), id)
	if err != nil {
		h.WriteErrorResponse(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToMessagesResponse(id, msgs))
}
