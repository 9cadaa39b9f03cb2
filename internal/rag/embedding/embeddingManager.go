package embedding

import (
	"context"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
)

// Embedder maps text to fixed-length vectors. EmbedMany preserves order and
// cardinality; every vector has Dimension() entries.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

// CheckVectors rejects provider output that does not match the request.
func CheckVectors(vectors [][]float32, want int, dim int) error {
	if len(vectors) != want {
		return ragErrors.Embedding(nil, "provider returned %d vectors for %d inputs", len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return ragErrors.Embedding(nil, "vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}

// Batches splits texts into consecutive slices of at most size entries.
func Batches(texts []string, size int) [][]string {
	if size <= 0 {
		size = len(texts)
	}
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}
