package openaiEmbedding

import (
	"context"
	"errors"
	"testing"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type mockEmbeddingsAPI struct {
	OnNew func(body openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error)
}

func (m *mockEmbeddingsAPI) New(ctx context.Context, body openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error) {
	return m.OnNew(body)
}

func TestEmbedMany_ReordersByIndex(t *testing.T) {
	api := &mockEmbeddingsAPI{OnNew: func(body openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error) {
		n := len(body.Input.OfArrayOfStrings)
		res := &openai.CreateEmbeddingResponse{}
		// answer in reverse order
		for i := n - 1; i >= 0; i-- {
			res.Data = append(res.Data, openai.Embedding{Index: int64(i), Embedding: []float64{float64(i), 0, 0}})
		}
		return res, nil
	}}
	c := newClient(api, "text-embedding-3-small", 3)

	vectors, err := c.EmbedMany(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedMany failed: %v", err)
	}
	for i, v := range vectors {
		if int(v[0]) != i {
			t.Errorf("vector %d carries marker %v", i, v[0])
		}
	}
}

func TestEmbedMany_Failures(t *testing.T) {
	tests := []struct {
		name  string
		onNew func(openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error)
	}{
		{"provider error", func(openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error) {
			return nil, errors.New("401 unauthorized")
		}},
		{"missing vector", func(openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error) {
			return &openai.CreateEmbeddingResponse{Data: []openai.Embedding{{Index: 0, Embedding: []float64{1, 2, 3}}}}, nil
		}},
		{"bad index", func(openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error) {
			return &openai.CreateEmbeddingResponse{Data: []openai.Embedding{{Index: 7, Embedding: []float64{1, 2, 3}}}}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(&mockEmbeddingsAPI{OnNew: tt.onNew}, "model", 3)
			_, err := c.EmbedMany(context.Background(), []string{"a", "b"})
			if !ragErrors.Is(err, ragErrors.KindEmbedding) {
				t.Errorf("expected embedding error, got %v", err)
			}
		})
	}
}
