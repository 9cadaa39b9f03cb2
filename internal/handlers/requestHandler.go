package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/TCC-RagBot/RagBot-Back/internal/adapter"
	"github.com/TCC-RagBot/RagBot-Back/internal/api"
	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag"
	"github.com/google/uuid"
)

// GetHandler godoc
// @Summary      Welcome message
// @Tags         Sistema
// @Produce      json
// @Success      200  {object}  api.WelcomeResponse
// @Router       / [get]
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	docs := "Documentação disponível apenas em modo debug"
	if h.services.Debug {
		docs = "/swagger/index.html"
	}
	writeJsonResponse(w, http.StatusOK, api.WelcomeResponse{
		Message: "Bem-vindo ao " + config.AppName + "!",
		Version: config.AppVersion,
		Docs:    docs,
	})
}

// ChatHandler godoc
// @Summary      Ask a question
// @Description  Retrieves the closest chunks, generates an answer grounded on them and stores the turn in the conversation.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest     true  "Message, optional conversation id and max chunks"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "Invalid message or conversation id"
// @Failure      502      {object}  api.ErrorResponse  "Embedding or generation provider failed"
// @Failure      503      {object}  api.ErrorResponse  "Vector index unavailable"
// @Router       /chat [post]
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(w, r) {
		return
	}
	log := h.logger.FromContext(r.Context())
	receivedAt := h.now()

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the chat handler reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		log.Warn("Bad chat request", "error", err)
		h.WriteErrorResponse(w, r, ragErrors.Validation("Corpo da requisição inválido"))
		return
	}
	if requestData.ConversationId != "" {
		if _, err := uuid.Parse(requestData.ConversationId); err != nil {
			h.WriteErrorResponse(w, r, ragErrors.Validation("conversation_id deve ser um UUID válido"))
			return
		}
	}

	log.Info("Processing chat request", "conversationId", requestData.ConversationId, "maxChunks", requestData.MaxChunks)
	result, err := h.services.Chat.ProcessChat(r.Context(), rag.ChatInput{
		Message:        requestData.Message,
		ConversationId: requestData.ConversationId,
		UserId:         requestData.UserId,
		MaxChunks:      requestData.MaxChunks,
		ReceivedAt:     receivedAt,
	})
	if err != nil {
		h.WriteErrorResponse(w, r, err)
		return
	}
	log.Info("Chat response generated", "conversationId", result.ConversationId, "processingTime", result.ProcessingTime)
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(result))
}

// UploadHandler godoc
// @Summary      Upload a PDF for ingestion
// @Description  Extracts the text, splits it into chunks, embeds them and indexes them. Duplicate filenames are rejected.
// @Tags         Documentos
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The PDF file"
// @Success      200  {object}  api.DocumentUploadResponse
// @Failure      400  {object}  api.ErrorResponse  "Missing file, not a PDF, empty, too large or duplicate"
// @Failure      422  {object}  api.ErrorResponse  "No text could be extracted"
// @Failure      502  {object}  api.ErrorResponse  "Embedding provider failed"
// @Failure      503  {object}  api.ErrorResponse  "Vector index unavailable"
// @Router       /upload [post]
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(w, r) {
		return
	}
	log := h.logger.FromContext(r.Context())

	// room for the multipart envelope on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.services.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(config.MaxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteErrorResponse(w, r, ragErrors.Validation("Arquivo excede o tamanho máximo de %d MB", h.services.MaxUploadSize>>20))
			return
		}
		h.WriteErrorResponse(w, r, ragErrors.Validation("Requisição multipart inválida"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		h.WriteErrorResponse(w, r, ragErrors.Validation("Campo 'file' é obrigatório"))
		return
	}
	defer fileReader.Close()

	raw, err := io.ReadAll(io.LimitReader(fileReader, h.services.MaxUploadSize+1))
	if err != nil {
		log.Error("Couldn't read the uploaded file", "error", err)
		h.WriteErrorResponse(w, r, ragErrors.Validation("Não foi possível ler o arquivo"))
		return
	}

	log.Info("Starting document upload", "filename", fileMetadata.Filename, "sizeBytes", len(raw))
	result, err := h.services.Documents.Ingest(r.Context(), raw, fileMetadata.Filename, config.UploadSource)
	if err != nil {
		h.WriteErrorResponse(w, r, err)
		return
	}
	log.Info("Document upload completed", "filename", result.Filename, "chunks", result.ChunksCreated, "processingTime", result.ProcessingTime)
	writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(result))
}

// NotFoundHandler answers unknown routes with the standard error body.
func (h *Handler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.WriteErrorResponse(w, r, ragErrors.NotFound("O endpoint %s não existe", r.URL.Path))
}
