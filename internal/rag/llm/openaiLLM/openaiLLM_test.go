package openaiLLM

import (
	"context"
	"errors"
	"testing"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type mockCompletions struct {
	OnNew func(body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

func (m *mockCompletions) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return m.OnNew(body)
}

func completion(text string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: text},
		}},
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		onNew   func(openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
		want    string
		wantErr bool
	}{
		{
			name: "returns first choice",
			onNew: func(body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
				if len(body.Messages) != 1 {
					return nil, errors.New("expected a single user message")
				}
				return completion("resposta"), nil
			},
			want: "resposta",
		},
		{
			name: "provider error",
			onNew: func(openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
				return nil, errors.New("429 too many requests")
			},
			wantErr: true,
		},
		{
			name: "no choices",
			onNew: func(openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
				return &openai.ChatCompletion{}, nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newLLMClient(&mockCompletions{OnNew: tt.onNew}, "gpt-4o-mini")
			got, err := c.Generate(context.Background(), "prompt")
			if tt.wantErr {
				if !ragErrors.Is(err, ragErrors.KindGeneration) {
					t.Errorf("expected generation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}
