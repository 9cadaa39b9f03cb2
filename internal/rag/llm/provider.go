package llm

import (
	"context"
)

// Provider turns an assembled prompt into answer text. The text is opaque to
// callers; any failure is returned as a GenerationError.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}
