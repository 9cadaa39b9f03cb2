package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"google.golang.org/genai"
)

type mockModels struct {
	OnGenerate func(prompt string) (*genai.GenerateContentResponse, error)
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.OnGenerate(contents[0].Parts[0].Text)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name       string
		onGenerate func(string) (*genai.GenerateContentResponse, error)
		want       string
		wantErr    bool
	}{
		{
			name: "returns model text",
			onGenerate: func(p string) (*genai.GenerateContentResponse, error) {
				return textResponse("resposta para: " + p), nil
			},
			want: "resposta para: prompt",
		},
		{
			name: "provider error",
			onGenerate: func(string) (*genai.GenerateContentResponse, error) {
				return nil, errors.New("503 overloaded")
			},
			wantErr: true,
		},
		{
			name: "empty text",
			onGenerate: func(string) (*genai.GenerateContentResponse, error) {
				return textResponse("  "), nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newLLMClient(&mockModels{OnGenerate: tt.onGenerate}, "gemini-2.5-flash")
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
