package sqlStore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/storeModel"
	"github.com/google/uuid"
)

const documentColumns = `id, filename, size_bytes, chunk_count, status, failure_reason, created_at, committed_at`

type documentStore struct {
	store *Store
}

var _ storeModel.DocumentStore = (*documentStore)(nil)

func (s *documentStore) FindByFilename(ctx context.Context, filename string) (commonModels.Document, error) {
	return s.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE filename = ?`, filename)
}

// Reserve inserts a pending row. The UNIQUE constraint on filename decides
// which of two concurrent uploads of the same file wins.
func (s *documentStore) Reserve(ctx context.Context, doc commonModels.Document) (commonModels.Document, error) {
	if doc.Id == "" {
		doc.Id = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.Status = commonModels.DocumentPending
	doc.ChunkCount = 0
	doc.CommittedAt = nil

	_, err := s.store.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, size_bytes, chunk_count, status, failure_reason, created_at)
		 VALUES (?, ?, ?, 0, ?, '', ?)`,
		doc.Id, doc.Filename, doc.SizeBytes, string(doc.Status), toUnix(doc.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return commonModels.Document{}, ragErrors.Validation("Documento '%s' já foi processado anteriormente", doc.Filename)
		}
		return commonModels.Document{}, ragErrors.Storage(err, "reserving document %q", doc.Filename)
	}
	return doc, nil
}

func (s *documentStore) Commit(ctx context.Context, id string, chunkCount int) (commonModels.Document, error) {
	res, err := s.store.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, chunk_count = ?, committed_at = ?, failure_reason = ''
		 WHERE id = ? AND status = ?`,
		string(commonModels.DocumentCommitted), chunkCount, toUnix(time.Now()), id, string(commonModels.DocumentPending))
	if err != nil {
		return commonModels.Document{}, ragErrors.Storage(err, "committing document %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return commonModels.Document{}, ragErrors.NotFound("Documento pendente %s não encontrado", id)
	}
	return s.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
}

func (s *documentStore) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := s.store.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, failure_reason = ? WHERE id = ? AND status = ?`,
		string(commonModels.DocumentFailed), reason, id, string(commonModels.DocumentPending))
	if err != nil {
		return ragErrors.Storage(err, "marking document %s failed", id)
	}
	return nil
}

// Release drops a reservation that never reached the vector index.
func (s *documentStore) Release(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND status != ?`, id, string(commonModels.DocumentCommitted))
	if err != nil {
		return ragErrors.Storage(err, "releasing document %s", id)
	}
	return nil
}

func (s *documentStore) Get(ctx context.Context, id string) (commonModels.Document, error) {
	return s.get(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? AND status = ?`,
		id, string(commonModels.DocumentCommitted))
}

func (s *documentStore) List(ctx context.Context) ([]commonModels.Document, error) {
	return s.list(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE status = ? ORDER BY created_at DESC`,
		string(commonModels.DocumentCommitted))
}

func (s *documentStore) ListStale(ctx context.Context, pendingBefore time.Time) ([]commonModels.Document, error) {
	return s.list(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE status = ? OR (status = ? AND created_at < ?)
		 ORDER BY created_at`,
		string(commonModels.DocumentFailed), string(commonModels.DocumentPending), toUnix(pendingBefore))
}

func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return ragErrors.Storage(err, "deleting document %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ragErrors.NotFound("Documento %s não encontrado", id)
	}
	return nil
}

func (s *documentStore) TestConnection(ctx context.Context) bool {
	return s.store.TestConnection(ctx)
}

func (s *documentStore) get(ctx context.Context, query string, args ...any) (commonModels.Document, error) {
	doc, err := scanDocument(s.store.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return commonModels.Document{}, ragErrors.NotFound("Documento %v não encontrado", args[0])
	}
	if err != nil {
		return commonModels.Document{}, ragErrors.Storage(err, "loading document")
	}
	return doc, nil
}

func (s *documentStore) list(ctx context.Context, query string, args ...any) ([]commonModels.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ragErrors.Storage(err, "listing documents")
	}
	defer rows.Close()

	docs := []commonModels.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, ragErrors.Storage(err, "scanning document")
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, ragErrors.Storage(err, "listing documents")
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (commonModels.Document, error) {
	var (
		doc         commonModels.Document
		status      string
		createdAt   int64
		committedAt sql.NullInt64
	)
	err := row.Scan(&doc.Id, &doc.Filename, &doc.SizeBytes, &doc.ChunkCount, &status,
		&doc.FailureReason, &createdAt, &committedAt)
	if err != nil {
		return commonModels.Document{}, err
	}
	doc.Status = commonModels.DocumentStatus(status)
	doc.CreatedAt = fromUnix(createdAt)
	if committedAt.Valid {
		t := fromUnix(committedAt.Int64)
		doc.CommittedAt = &t
	}
	return doc, nil
}
