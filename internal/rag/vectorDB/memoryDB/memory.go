// Package memoryDB is a brute-force cosine index held in process memory. It
// backs local runs without Qdrant and the pipeline tests.
package memoryDB

import (
	"context"
	"math"
	"sync"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/vectorDB"
)

type entry struct {
	chunk  commonModels.DocChunk
	vector []float32
	norm   float64
}

type Index struct {
	mu        sync.RWMutex
	dimension int
	order     []string
	entries   map[string]entry
}

var _ vectorDB.Index = (*Index)(nil)

func New(dimension int) *Index {
	return &Index{
		dimension: dimension,
		entries:   make(map[string]entry),
	}
}

func (i *Index) EnsureCollection(ctx context.Context) error { return nil }

func (i *Index) TestConnection(ctx context.Context) bool { return true }

func (i *Index) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return ragErrors.Validation("got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	for n, v := range vectors {
		if len(v) != i.dimension {
			return ragErrors.Validation("vector %d has dimension %d, want %d", n, len(v), i.dimension)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for n, c := range chunks {
		if _, exists := i.entries[c.ChunkId]; !exists {
			i.order = append(i.order, c.ChunkId)
		}
		v := append([]float32(nil), vectors[n]...)
		i.entries[c.ChunkId] = entry{chunk: c, vector: v, norm: norm(v)}
	}
	return nil
}

func (i *Index) Search(ctx context.Context, vector []float32, k int) ([]commonModels.RetrievedChunk, error) {
	if k <= 0 {
		return []commonModels.RetrievedChunk{}, nil
	}
	if len(vector) != i.dimension {
		return nil, ragErrors.Validation("query vector has dimension %d, want %d", len(vector), i.dimension)
	}
	qNorm := norm(vector)

	i.mu.RLock()
	results := make([]commonModels.RetrievedChunk, 0, len(i.order))
	for _, id := range i.order {
		e := i.entries[id]
		results = append(results, commonModels.RetrievedChunk{
			ChunkId:    e.chunk.ChunkId,
			DocumentId: e.chunk.DocumentId,
			DocName:    e.chunk.DocName,
			Content:    e.chunk.Content,
			PageNum:    e.chunk.PageNum,
			ChunkIndex: e.chunk.ChunkIndex,
			Similarity: vectorDB.SimilarityFromCosine(cosine(vector, qNorm, e.vector, e.norm)),
		})
	}
	i.mu.RUnlock()

	return vectorDB.RankTopK(results, k), nil
}

func (i *Index) DeleteByDocument(ctx context.Context, documentId string) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	kept := i.order[:0]
	for _, id := range i.order {
		if i.entries[id].chunk.DocumentId == documentId {
			delete(i.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	i.order = kept
	return removed, nil
}

// Count is the number of stored chunks.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.order)
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float32 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
	}
	return float32(dot / (aNorm * bNorm))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
