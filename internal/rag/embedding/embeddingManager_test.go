package embedding

import (
	"testing"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
)

func TestCheckVectors(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
		want    int
		dim     int
		wantErr bool
	}{
		{"empty request", [][]float32{}, 0, 3, false},
		{"matching", [][]float32{{1, 2, 3}, {4, 5, 6}}, 2, 3, false},
		{"missing vector", [][]float32{{1, 2, 3}}, 2, 3, true},
		{"wrong dimension", [][]float32{{1, 2, 3}, {4, 5}}, 2, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVectors(tt.vectors, tt.want, tt.dim)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckVectors() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !ragErrors.Is(err, ragErrors.KindEmbedding) {
				t.Errorf("expected an embedding error, got %v", err)
			}
		})
	}
}

func TestBatches(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}

	batches := Batches(texts, 2)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if len(batches[2]) != 1 || batches[2][0] != "e" {
		t.Errorf("last batch = %v, want [e]", batches[2])
	}
	if got := Batches(nil, 2); len(got) != 0 {
		t.Errorf("nil input produced %d batches", len(got))
	}
}
