package vectorDB

import (
	"context"
	"sort"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
)

// Index stores chunk vectors and answers nearest-neighbour queries.
//
// Search returns at most k results ordered by non-increasing similarity, each
// in [0,1]. An empty index yields an empty slice, never an error. Storage
// outages surface as IndexUnavailable.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]commonModels.RetrievedChunk, error)
	DeleteByDocument(ctx context.Context, documentId string) (int, error)
	TestConnection(ctx context.Context) bool
}

// SimilarityFromCosine maps a cosine similarity in [-1,1] into [0,1] by
// clamping; anti-correlated vectors count as unrelated.
func SimilarityFromCosine(score float32) float32 {
	return clamp01(score)
}

// SimilarityFromDistance converts a cosine distance into a similarity.
func SimilarityFromDistance(distance float32) float32 {
	return clamp01(1 - distance)
}

func clamp01(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RankTopK sorts by descending similarity, stable on ties, and keeps the first k.
func RankTopK(results []commonModels.RetrievedChunk, k int) []commonModels.RetrievedChunk {
	if k <= 0 {
		return []commonModels.RetrievedChunk{}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
