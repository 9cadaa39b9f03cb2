// Package ingest turns uploaded PDFs into committed chunks in the vector index.
//
// A document row is reserved as pending before any work is done. It becomes
// committed only after every chunk is in the index. Failures before the
// upsert release the reservation; failures after it leave a failed row for
// Reconcile to sweep, together with whatever vectors were written.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/TCC-RagBot/RagBot-Back/internal/metrics"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/chunker"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/embedding"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

const (
	StageValidate = "validate"
	StageReserve  = "reserve"
	StageExtract  = "extract"
	StageChunk    = "chunk"
	StageEmbed    = "embed"
	StageUpsert   = "upsert"
	StageCommit   = "commit"

	StatusSuccess = "success"
)

type Result struct {
	DocumentId     string        `json:"document_id"`
	Filename       string        `json:"filename"`
	ChunksCreated  int           `json:"chunks_created"`
	ProcessingTime time.Duration `json:"processing_time"`
	Status         string        `json:"status"`
}

type DeleteResult struct {
	DocumentId    string `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksRemoved int    `json:"chunks_removed"`
}

type ReconcileReport struct {
	Examined      int      `json:"examined"`
	Removed       int      `json:"removed"`
	ChunksRemoved int      `json:"chunks_removed"`
	Failures      []string `json:"failures,omitempty"`
}

type Service interface {
	Ingest(ctx context.Context, raw []byte, filename, source string) (Result, error)
	DeleteDocument(ctx context.Context, id string) (DeleteResult, error)
	ListDocuments(ctx context.Context) ([]commonModels.Document, error)
	GetDocument(ctx context.Context, id string) (commonModels.Document, error)
	Reconcile(ctx context.Context, olderThan time.Duration) (ReconcileReport, error)
}

type Option func(*service)

func WithMaxFileSize(bytes int64) Option {
	return func(s *service) { s.maxFileSize = bytes }
}

// WithStalePendingAfter sets how old a pending row must be before a new
// upload of the same filename may take it over.
func WithStalePendingAfter(d time.Duration) Option {
	return func(s *service) { s.stalePendingAfter = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	extractor   Extractor
	splitter    *chunker.Splitter
	embedder    embedding.Embedder
	index       vectorDB.Index
	documents   storeModel.DocumentStore
	maxFileSize int64
	now         func() time.Time
	logger      *logger_i.Logger

	stalePendingAfter time.Duration
}

func NewService(extractor Extractor, splitter *chunker.Splitter, embedder embedding.Embedder, index vectorDB.Index, documents storeModel.DocumentStore, opts ...Option) Service {
	s := &service{
		extractor:   extractor,
		splitter:    splitter,
		embedder:    embedder,
		index:       index,
		documents:   documents,
		maxFileSize: int64(config.DefaultMaxFileSizeMB) << 20,
		now:         time.Now,
		logger:      logger_i.NewLogger("Document Ingestion"),

		stalePendingAfter: config.StalePendingAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Ingest(ctx context.Context, raw []byte, filename, source string) (result Result, err error) {
	start := s.now()
	log := s.logger.FromContext(ctx).With("filename", filename)
	result = Result{Filename: filename}

	defer func() {
		result.ProcessingTime = s.now().Sub(start)
		status := StatusSuccess
		if err != nil {
			status = string(ragErrors.KindOf(err))
			if !ragErrors.Is(err, ragErrors.KindValidation) {
				result.Status = "error: " + err.Error()
			}
		}
		metrics.CaptureRequestMetrics("ingest", status, result.ProcessingTime)
	}()

	if err := s.validate(raw, filename); err != nil {
		return result, err.WithStage(StageValidate)
	}

	if err := s.reclaim(ctx, filename); err != nil {
		return result, err
	}

	doc, err := s.documents.Reserve(ctx, commonModels.Document{
		Filename:  filename,
		SizeBytes: int64(len(raw)),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return result, stageError(StageReserve, err)
	}
	result.DocumentId = doc.Id
	log = log.With("documentId", doc.Id)
	log.Info("Processing document", "sizeBytes", len(raw))

	chunks, err := s.prepareChunks(ctx, raw, doc, source)
	if err != nil {
		s.release(ctx, doc.Id)
		return result, err
	}
	log.Debug("Processing document", "chunks", len(chunks))

	embedStart := time.Now()
	vectors, err := s.embedder.EmbedMany(ctx, chunkTexts(chunks))
	metrics.CaptureExecutionMetrics(metrics.Embedding, time.Since(embedStart))
	if err == nil {
		err = embedding.CheckVectors(vectors, len(chunks), s.embedder.Dimension())
	}
	if err != nil {
		s.release(ctx, doc.Id)
		return result, stageError(StageEmbed, asKind(err, ragErrors.KindEmbedding))
	}

	upsertStart := time.Now()
	err = s.index.Upsert(ctx, chunks, vectors)
	metrics.CaptureExecutionMetrics(metrics.Upsert, time.Since(upsertStart))
	if err != nil {
		err = stageError(StageUpsert, asKind(err, ragErrors.KindIndexUnavailable))
		s.markFailed(ctx, doc.Id, err)
		return result, err
	}

	if _, err := s.documents.Commit(ctx, doc.Id, len(chunks)); err != nil {
		err = stageError(StageCommit, asKind(err, ragErrors.KindStorage))
		s.markFailed(ctx, doc.Id, err)
		return result, err
	}

	metrics.AddIngestedChunks(source, len(chunks))
	result.ChunksCreated = len(chunks)
	result.Status = StatusSuccess
	log.Info("Document committed", "chunks", len(chunks))
	return result, nil
}

// reclaim frees a filename still held by a failed attempt or by a pending row
// older than the stale window, removing any vectors it wrote. A committed or
// in-flight document keeps the name and the upload is a duplicate.
func (s *service) reclaim(ctx context.Context, filename string) error {
	existing, err := s.documents.FindByFilename(ctx, filename)
	if ragErrors.Is(err, ragErrors.KindNotFound) {
		return nil
	}
	if err != nil {
		return stageError(StageReserve, err)
	}

	stale := existing.Status == commonModels.DocumentPending &&
		existing.CreatedAt.Before(s.now().Add(-s.stalePendingAfter))
	if existing.Status != commonModels.DocumentFailed && !stale {
		return ragErrors.Validation("Documento '%s' já foi processado anteriormente", filename).WithStage(StageValidate)
	}

	removed, err := s.index.DeleteByDocument(ctx, existing.Id)
	if err != nil {
		return stageError(StageReserve, asKind(err, ragErrors.KindIndexUnavailable))
	}
	if err := s.documents.Release(ctx, existing.Id); err != nil {
		return stageError(StageReserve, err)
	}
	s.logger.FromContext(ctx).Info("Reclaimed filename from an earlier attempt",
		"filename", filename, "previousId", existing.Id, "status", existing.Status, "chunksRemoved", removed)
	return nil
}

func (s *service) validate(raw []byte, filename string) *ragErrors.Error {
	if filename == "" {
		return ragErrors.Validation("Nome do arquivo é obrigatório")
	}
	if !isPDF(filename) {
		return ragErrors.Validation("Apenas arquivos PDF são suportados")
	}
	if len(raw) == 0 {
		return ragErrors.Validation("Arquivo está vazio")
	}
	if int64(len(raw)) > s.maxFileSize {
		return ragErrors.Validation("Arquivo excede o tamanho máximo de %d MB", s.maxFileSize>>20)
	}
	return nil
}

func (s *service) prepareChunks(ctx context.Context, raw []byte, doc commonModels.Document, source string) ([]commonModels.DocChunk, error) {
	extractStart := time.Now()
	pages, err := s.extractor.Extract(ctx, raw)
	metrics.CaptureExecutionMetrics(metrics.Extraction, time.Since(extractStart))
	if err != nil {
		return nil, stageError(StageExtract, asKind(err, ragErrors.KindExtraction))
	}
	if len(pages) == 0 {
		return nil, ragErrors.Extraction(nil, "nenhum texto extraído de '%s'", doc.Filename).WithStage(StageExtract)
	}

	locator, text := newPageLocator(pages)
	texts := s.splitter.Split(text)
	if len(texts) == 0 {
		return nil, ragErrors.Extraction(nil, "nenhum texto extraído de '%s'", doc.Filename).WithStage(StageChunk)
	}
	return buildChunks(texts, locator, doc, source, s.embedder.ModelName()), nil
}

func (s *service) release(ctx context.Context, id string) {
	if err := s.documents.Release(context.WithoutCancel(ctx), id); err != nil {
		s.logger.FromContext(ctx).Error("Could not release reservation", "documentId", id, "error", err)
	}
}

func (s *service) markFailed(ctx context.Context, id string, cause error) {
	if err := s.documents.MarkFailed(context.WithoutCancel(ctx), id, cause.Error()); err != nil {
		s.logger.FromContext(ctx).Error("Could not mark document failed", "documentId", id, "error", err)
	}
}

func (s *service) DeleteDocument(ctx context.Context, id string) (DeleteResult, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}

	removed, err := s.index.DeleteByDocument(ctx, id)
	if err != nil {
		return DeleteResult{}, asKind(err, ragErrors.KindIndexUnavailable)
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return DeleteResult{}, err
	}

	s.logger.FromContext(ctx).Info("Document deleted", "documentId", id, "chunksRemoved", removed)
	return DeleteResult{DocumentId: id, Filename: doc.Filename, ChunksRemoved: removed}, nil
}

func (s *service) ListDocuments(ctx context.Context) ([]commonModels.Document, error) {
	return s.documents.List(ctx)
}

func (s *service) GetDocument(ctx context.Context, id string) (commonModels.Document, error) {
	return s.documents.Get(ctx, id)
}

// Reconcile removes failed rows and pending rows older than olderThan, along
// with any vectors they left behind.
func (s *service) Reconcile(ctx context.Context, olderThan time.Duration) (ReconcileReport, error) {
	log := s.logger.FromContext(ctx)
	stale, err := s.documents.ListStale(ctx, s.now().Add(-olderThan))
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{Examined: len(stale)}
	for _, doc := range stale {
		removed, err := s.index.DeleteByDocument(ctx, doc.Id)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", doc.Filename, err))
			continue
		}
		if err := s.documents.Release(ctx, doc.Id); err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", doc.Filename, err))
			continue
		}
		report.Removed++
		report.ChunksRemoved += removed
		log.Info("Reconciled document", "documentId", doc.Id, "filename", doc.Filename, "status", doc.Status, "chunksRemoved", removed)
	}
	if len(report.Failures) > 0 {
		return report, errors.New("reconcile left documents behind")
	}
	return report, nil
}

func stageError(stage string, err error) error {
	return ragErrors.AtStage(err, stage)
}

func asKind(err error, kind ragErrors.Kind) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ragErrors.Classify(err, kind, "operation cancelled")
	}
	return ragErrors.Classify(err, kind, "%s", kindMessage(kind))
}

func kindMessage(kind ragErrors.Kind) string {
	switch kind {
	case ragErrors.KindExtraction:
		return "falha ao extrair texto do PDF"
	case ragErrors.KindEmbedding:
		return "falha ao gerar embeddings"
	case ragErrors.KindIndexUnavailable:
		return "índice vetorial indisponível"
	case ragErrors.KindStorage:
		return "falha ao salvar documento"
	}
	return "erro interno"
}
