package ragErrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("connection refused")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("only PDF files are supported"), KindValidation},
		{"wrapped index error", fmt.Errorf("search: %w", IndexUnavailable(base, "qdrant unreachable")), KindIndexUnavailable},
		{"staged embedding error", Embedding(base, "provider failed").WithStage("embed"), KindEmbedding},
		{"plain error", base, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	base := errors.New("quota exceeded")
	err := Embedding(base, "embedding %d chunks", 3).WithStage("embed")

	if got, want := err.Error(), "embed: embedding 3 chunks: quota exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("expected the cause to be reachable through errors.Is")
	}
	if StageOf(fmt.Errorf("ingest: %w", err)) != "embed" {
		t.Error("expected stage to survive wrapping")
	}
}

func TestIsClientFault(t *testing.T) {
	if !IsClientFault(NotFound("document %s", "x")) {
		t.Error("not found should be a client fault")
	}
	if IsClientFault(Generation(nil, "model down")) {
		t.Error("generation failure should be a server fault")
	}
}

func TestAtStageAndClassify(t *testing.T) {
	plain := errors.New("connection reset")

	classified := Classify(plain, KindIndexUnavailable, "index down")
	if KindOf(classified) != KindIndexUnavailable {
		t.Errorf("Classify kind = %s", KindOf(classified))
	}
	if again := Classify(classified, KindStorage, "ignored"); KindOf(again) != KindIndexUnavailable {
		t.Error("Classify must keep an existing kind")
	}

	staged := AtStage(classified, "upsert")
	if StageOf(staged) != "upsert" || KindOf(staged) != KindIndexUnavailable {
		t.Errorf("AtStage lost kind or stage: %v", staged)
	}
	if KindOf(AtStage(plain, "commit")) != KindInternal {
		t.Error("unclassified errors should become internal")
	}
}
