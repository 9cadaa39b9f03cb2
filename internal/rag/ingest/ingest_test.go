package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/data/sqlStore"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/chunker"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB/memoryDB"
	"github.com/google/uuid"
)

const testDim = 4

// --- Mocks ---

type mockExtractor struct {
	OnExtract func(ctx context.Context, raw []byte) ([]Page, error)
}

func (m *mockExtractor) Extract(ctx context.Context, raw []byte) ([]Page, error) {
	return m.OnExtract(ctx, raw)
}

type mockEmbedder struct {
	OnEmbedMany func(ctx context.Context, texts []string) ([][]float32, error)
	calls       int
}

func (m *mockEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (m *mockEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.OnEmbedMany != nil {
		return m.OnEmbedMany(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, float32(i), 0, 0}
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimension() int    { return testDim }
func (m *mockEmbedder) ModelName() string { return "test-embedding" }

type mockIndex struct {
	*memoryDB.Index
	OnUpsert func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *mockIndex) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, chunks, vectors)
	}
	return m.Index.Upsert(ctx, chunks, vectors)
}

type mockDocumentStore struct {
	mu       sync.Mutex
	docs     map[string]commonModels.Document
	OnCommit func(id string) error
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{docs: make(map[string]commonModels.Document)}
}

func (m *mockDocumentStore) FindByFilename(ctx context.Context, filename string) (commonModels.Document, error) {
	if d, ok := m.byFilename(filename); ok {
		return d, nil
	}
	return commonModels.Document{}, ragErrors.NotFound("Documento %s não encontrado", filename)
}

func (m *mockDocumentStore) Reserve(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.Filename == doc.Filename {
			return commonModels.Document{}, ragErrors.Validation("Documento '%s' já foi processado anteriormente", doc.Filename)
		}
	}
	doc.Id = uuid.NewString()
	doc.Status = commonModels.DocumentPending
	m.docs[doc.Id] = doc
	return doc, nil
}

func (m *mockDocumentStore) Commit(ctx context.Context, id string, chunkCount int) (commonModels.Document, error) {
	if m.OnCommit != nil {
		if err := m.OnCommit(id); err != nil {
			return commonModels.Document{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.docs[id]
	now := time.Now()
	doc.Status, doc.ChunkCount, doc.CommittedAt = commonModels.DocumentCommitted, chunkCount, &now
	m.docs[id] = doc
	return doc, nil
}

func (m *mockDocumentStore) MarkFailed(ctx context.Context, id string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.docs[id]
	doc.Status, doc.FailureReason = commonModels.DocumentFailed, reason
	m.docs[id] = doc
	return nil
}

func (m *mockDocumentStore) Release(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[id].Status != commonModels.DocumentCommitted {
		delete(m.docs, id)
	}
	return nil
}

func (m *mockDocumentStore) Get(ctx context.Context, id string) (commonModels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || doc.Status != commonModels.DocumentCommitted {
		return commonModels.Document{}, ragErrors.NotFound("Documento %s não encontrado", id)
	}
	return doc, nil
}

func (m *mockDocumentStore) List(ctx context.Context) ([]commonModels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []commonModels.Document
	for _, d := range m.docs {
		if d.Status == commonModels.DocumentCommitted {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ragErrors.NotFound("Documento %s não encontrado", id)
	}
	delete(m.docs, id)
	return nil
}

func (m *mockDocumentStore) ListStale(ctx context.Context, pendingBefore time.Time) ([]commonModels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []commonModels.Document
	for _, d := range m.docs {
		if d.Status == commonModels.DocumentFailed ||
			(d.Status == commonModels.DocumentPending && d.CreatedAt.Before(pendingBefore)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocumentStore) TestConnection(ctx context.Context) bool { return true }

func (m *mockDocumentStore) byFilename(name string) (commonModels.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.Filename == name {
			return d, true
		}
	}
	return commonModels.Document{}, false
}

// --- Fixtures ---

type fixture struct {
	extractor *mockExtractor
	embedder  *mockEmbedder
	index     *mockIndex
	documents *mockDocumentStore
	svc       Service
}

// twoPages is 1600 characters on page 1 and 800 on page 2.
func twoPages(ctx context.Context, raw []byte) ([]Page, error) {
	return []Page{
		{Number: 1, Content: strings.Repeat("abcd ", 320)},
		{Number: 2, Content: strings.Repeat("wxyz ", 160)},
	}, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	splitter, err := chunker.New()
	if err != nil {
		t.Fatalf("chunker.New failed: %v", err)
	}
	f := &fixture{
		extractor: &mockExtractor{OnExtract: twoPages},
		embedder:  &mockEmbedder{},
		index:     &mockIndex{Index: memoryDB.New(testDim)},
		documents: newMockDocumentStore(),
	}
	f.svc = NewService(f.extractor, splitter, f.embedder, f.index, f.documents, WithMaxFileSize(1<<20))
	return f
}

var pdfBytes = []byte("%PDF-1.4 fake body")

// --- Tests ---

func TestIngest_TwoPagesProduceThreeChunks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.Ingest(ctx, pdfBytes, "regulamento.pdf", "api_upload")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if res.ChunksCreated != 3 || res.Status != StatusSuccess {
		t.Fatalf("result = %+v, want 3 chunks and success", res)
	}

	doc, err := f.svc.GetDocument(ctx, res.DocumentId)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc.ChunkCount != 3 || doc.Status != commonModels.DocumentCommitted {
		t.Errorf("document = %+v", doc)
	}
	if f.index.Count() != 3 {
		t.Errorf("index holds %d chunks, want 3", f.index.Count())
	}

	hits, _ := f.index.Search(ctx, []float32{1, 0, 0, 0}, 10)
	pages := map[int]int{}
	for _, h := range hits {
		pages[h.PageNum]++
		if h.DocName != "regulamento.pdf" {
			t.Errorf("chunk doc name = %q", h.DocName)
		}
	}
	if pages[1] != 2 || pages[2] != 1 {
		t.Errorf("chunks per page = %v, want two on page 1 and one on page 2", pages)
	}
}

func TestIngest_Validation(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		filename string
	}{
		{"missing name", pdfBytes, ""},
		{"not a pdf", pdfBytes, "notas.docx"},
		{"empty file", []byte{}, "vazio.pdf"},
		{"too large", make([]byte, 2<<20), "grande.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.svc.Ingest(context.Background(), tt.raw, tt.filename, "api_upload")
			if !ragErrors.Is(err, ragErrors.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if res.Status != "" {
				t.Errorf("validation failure reported status %q", res.Status)
			}
			if f.embedder.calls != 0 || f.index.Count() != 0 {
				t.Error("validation failure reached the embedder or the index")
			}
		})
	}
}

func TestIngest_UppercaseExtensionAccepted(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Ingest(context.Background(), pdfBytes, "EDITAL.PDF", "cli_ingest"); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
}

func TestIngest_DuplicateIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Ingest(ctx, pdfBytes, "calendario.pdf", "api_upload"); err != nil {
		t.Fatalf("first Ingest failed: %v", err)
	}
	_, err := f.svc.Ingest(ctx, pdfBytes, "calendario.pdf", "api_upload")
	if !ragErrors.Is(err, ragErrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "já foi processado") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if f.index.Count() != 3 {
		t.Errorf("duplicate wrote chunks: index holds %d", f.index.Count())
	}
}

func TestIngest_FailureStages(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(f *fixture)
		wantKind   ragErrors.Kind
		wantStage  string
		wantRow    bool
		wantStatus commonModels.DocumentStatus
	}{
		{
			name: "no text extracted",
			setupMocks: func(f *fixture) {
				f.extractor.OnExtract = func(ctx context.Context, raw []byte) ([]Page, error) { return nil, nil }
			},
			wantKind:  ragErrors.KindExtraction,
			wantStage: StageExtract,
		},
		{
			name: "unreadable pdf",
			setupMocks: func(f *fixture) {
				f.extractor.OnExtract = func(ctx context.Context, raw []byte) ([]Page, error) {
					return nil, errors.New("malformed xref")
				}
			},
			wantKind:  ragErrors.KindExtraction,
			wantStage: StageExtract,
		},
		{
			name: "embedding provider down",
			setupMocks: func(f *fixture) {
				f.embedder.OnEmbedMany = func(ctx context.Context, texts []string) ([][]float32, error) {
					return nil, errors.New("503 from provider")
				}
			},
			wantKind:  ragErrors.KindEmbedding,
			wantStage: StageEmbed,
		},
		{
			name: "embedding returns wrong cardinality",
			setupMocks: func(f *fixture) {
				f.embedder.OnEmbedMany = func(ctx context.Context, texts []string) ([][]float32, error) {
					return [][]float32{{1, 0, 0, 0}}, nil
				}
			},
			wantKind:  ragErrors.KindEmbedding,
			wantStage: StageEmbed,
		},
		{
			name: "vector index down",
			setupMocks: func(f *fixture) {
				f.index.OnUpsert = func(ctx context.Context, c []commonModels.DocChunk, v [][]float32) error {
					return errors.New("connection refused")
				}
			},
			wantKind:   ragErrors.KindIndexUnavailable,
			wantStage:  StageUpsert,
			wantRow:    true,
			wantStatus: commonModels.DocumentFailed,
		},
		{
			name: "commit fails",
			setupMocks: func(f *fixture) {
				f.documents.OnCommit = func(id string) error { return errors.New("disk full") }
			},
			wantKind:   ragErrors.KindStorage,
			wantStage:  StageCommit,
			wantRow:    true,
			wantStatus: commonModels.DocumentFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMocks(f)

			res, err := f.svc.Ingest(context.Background(), pdfBytes, "falha.pdf", "api_upload")
			if !ragErrors.Is(err, tt.wantKind) {
				t.Fatalf("expected kind %s, got %v", tt.wantKind, err)
			}
			if got := ragErrors.StageOf(err); got != tt.wantStage {
				t.Errorf("stage = %q, want %q", got, tt.wantStage)
			}
			if !strings.HasPrefix(res.Status, "error: "+tt.wantStage) {
				t.Errorf("status = %q", res.Status)
			}

			doc, found := f.documents.byFilename("falha.pdf")
			if found != tt.wantRow {
				t.Fatalf("row present = %v, want %v", found, tt.wantRow)
			}
			if found && doc.Status != tt.wantStatus {
				t.Errorf("row status = %s, want %s", doc.Status, tt.wantStatus)
			}
			if _, err := f.svc.GetDocument(context.Background(), res.DocumentId); !ragErrors.Is(err, ragErrors.KindNotFound) {
				t.Errorf("uncommitted document visible: %v", err)
			}
		})
	}
}

func TestIngest_RetryReclaimsFilename(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture)
		wantErr bool
	}{
		{
			name: "after failed upsert with orphan vectors",
			setup: func(t *testing.T, f *fixture) {
				f.index.OnUpsert = func(ctx context.Context, c []commonModels.DocChunk, v [][]float32) error {
					_ = f.index.Index.Upsert(ctx, c, v)
					return errors.New("connection refused")
				}
				if _, err := f.svc.Ingest(context.Background(), pdfBytes, "edital.pdf", "api_upload"); err == nil {
					t.Fatal("expected the first attempt to fail")
				}
				f.index.OnUpsert = nil
			},
		},
		{
			name: "after failed commit",
			setup: func(t *testing.T, f *fixture) {
				f.documents.OnCommit = func(id string) error { return errors.New("disk full") }
				if _, err := f.svc.Ingest(context.Background(), pdfBytes, "edital.pdf", "api_upload"); err == nil {
					t.Fatal("expected the first attempt to fail")
				}
				f.documents.OnCommit = nil
			},
		},
		{
			name: "stale pending row",
			setup: func(t *testing.T, f *fixture) {
				_, _ = f.documents.Reserve(context.Background(), commonModels.Document{
					Filename:  "edital.pdf",
					CreatedAt: time.Now().Add(-2 * time.Hour),
				})
			},
		},
		{
			name: "pending row still in flight",
			setup: func(t *testing.T, f *fixture) {
				_, _ = f.documents.Reserve(context.Background(), commonModels.Document{
					Filename:  "edital.pdf",
					CreatedAt: time.Now(),
				})
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			tt.setup(t, f)

			res, err := f.svc.Ingest(ctx, pdfBytes, "edital.pdf", "api_upload")
			if tt.wantErr {
				if !ragErrors.Is(err, ragErrors.KindValidation) {
					t.Fatalf("expected duplicate validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("retry failed: %v", err)
			}
			if res.ChunksCreated != 3 || f.index.Count() != 3 {
				t.Errorf("chunks created %d, index holds %d, want 3 and 3", res.ChunksCreated, f.index.Count())
			}
			docs, _ := f.svc.ListDocuments(ctx)
			if len(docs) != 1 || docs[0].Id != res.DocumentId {
				t.Errorf("listed documents = %+v", docs)
			}
		})
	}
}

func TestIngest_RetryAfterFailure_SQLStore(t *testing.T) {
	ctx := context.Background()
	db, err := sqlStore.Open(ctx, "file:"+filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("sqlStore.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	splitter, _ := chunker.New()
	index := &mockIndex{Index: memoryDB.New(testDim)}
	index.OnUpsert = func(ctx context.Context, c []commonModels.DocChunk, v [][]float32) error {
		return errors.New("connection refused")
	}
	svc := NewService(&mockExtractor{OnExtract: twoPages}, splitter, &mockEmbedder{}, index, db.Documents())

	if _, err := svc.Ingest(ctx, pdfBytes, "edital.pdf", "api_upload"); !ragErrors.Is(err, ragErrors.KindIndexUnavailable) {
		t.Fatalf("first attempt: expected index unavailable, got %v", err)
	}

	index.OnUpsert = nil
	res, err := svc.Ingest(ctx, pdfBytes, "edital.pdf", "api_upload")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	docs, err := svc.ListDocuments(ctx)
	if err != nil || len(docs) != 1 || docs[0].Id != res.DocumentId {
		t.Fatalf("listed documents = %+v, %v", docs, err)
	}
	if _, err := svc.Ingest(ctx, pdfBytes, "edital.pdf", "api_upload"); !ragErrors.Is(err, ragErrors.KindValidation) {
		t.Errorf("committed document must block a new upload, got %v", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.extractor.OnExtract = func(ctx context.Context, raw []byte) ([]Page, error) {
		// five paragraphs of 900 characters each chunk separately
		var pages []Page
		for i := range 5 {
			pages = append(pages, Page{Number: i + 1, Content: strings.Repeat(fmt.Sprintf("p%d ", i), 300)})
		}
		return pages, nil
	}

	res, err := f.svc.Ingest(ctx, pdfBytes, "cinco.pdf", "api_upload")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if res.ChunksCreated != 5 {
		t.Fatalf("fixture produced %d chunks, want 5", res.ChunksCreated)
	}
	if _, err := f.svc.Ingest(ctx, pdfBytes, "outro.pdf", "api_upload"); err != nil {
		t.Fatalf("second Ingest failed: %v", err)
	}

	del, err := f.svc.DeleteDocument(ctx, res.DocumentId)
	if err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if del.ChunksRemoved != 5 || del.Filename != "cinco.pdf" {
		t.Errorf("delete result = %+v", del)
	}
	hits, _ := f.index.Search(ctx, []float32{1, 0, 0, 0}, 10)
	for _, h := range hits {
		if h.DocumentId == res.DocumentId {
			t.Errorf("chunk %s survived the delete", h.ChunkId)
		}
	}
	if _, err := f.svc.GetDocument(ctx, res.DocumentId); !ragErrors.Is(err, ragErrors.KindNotFound) {
		t.Errorf("deleted document still visible: %v", err)
	}

	if _, err := f.svc.DeleteDocument(ctx, "nao-existe"); !ragErrors.Is(err, ragErrors.KindNotFound) {
		t.Errorf("unknown id: expected not found, got %v", err)
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// upsert writes its vectors and then reports failure
	f.index.OnUpsert = func(ctx context.Context, c []commonModels.DocChunk, v [][]float32) error {
		_ = f.index.Index.Upsert(ctx, c, v)
		return errors.New("timeout after partial write")
	}
	if _, err := f.svc.Ingest(ctx, pdfBytes, "parcial.pdf", "cli_ingest"); err == nil {
		t.Fatal("expected ingest failure")
	}
	f.index.OnUpsert = nil
	if f.index.Count() == 0 {
		t.Fatal("fixture did not leave orphan vectors")
	}

	report, err := f.svc.Reconcile(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if report.Examined != 1 || report.Removed != 1 || report.ChunksRemoved != 3 {
		t.Errorf("report = %+v", report)
	}
	if f.index.Count() != 0 {
		t.Errorf("orphan vectors left: %d", f.index.Count())
	}
	if _, err := f.svc.Ingest(ctx, pdfBytes, "parcial.pdf", "cli_ingest"); err != nil {
		t.Errorf("re-ingest after reconcile failed: %v", err)
	}
}

func TestLocatePages(t *testing.T) {
	pages := []Page{{Number: 2, Content: "alpha beta"}, {Number: 5, Content: "gamma delta"}}
	locator, text := newPageLocator(pages)
	if text != "alpha beta\n\ngamma delta" {
		t.Fatalf("joined text = %q", text)
	}
	tests := []struct {
		chunk string
		want  int
	}{
		{"alpha beta", 2},
		{"beta\n\ngamma", 2},
		{"gamma delta", 5},
		{"not in text", 5},
	}
	for _, tt := range tests {
		if got := locator.locate(tt.chunk); got != tt.want {
			t.Errorf("locate(%q) = %d, want %d", tt.chunk, got, tt.want)
		}
	}
}
