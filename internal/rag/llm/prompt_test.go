package llm

import (
	"strings"
	"testing"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
)

func TestBuildPrompt_OrderAndFraming(t *testing.T) {
	chunks := []commonModels.RetrievedChunk{
		{DocName: "regulamento.pdf", Content: "O prazo de matrícula é 10 de março.", Similarity: 0.9},
		{DocName: "calendario.pdf", Content: "Aulas começam em abril.", Similarity: 0.7},
	}

	prompt := BuildPrompt("Qual o prazo de matrícula?", chunks)

	wantContext := "Documento: regulamento.pdf\nConteúdo: O prazo de matrícula é 10 de março.\n\n" +
		"Documento: calendario.pdf\nConteúdo: Aulas começam em abril."
	if !strings.Contains(prompt, wantContext) {
		t.Errorf("prompt does not contain the ordered context blocks:\n%s", prompt)
	}

	for _, fragment := range []string{
		"Responda APENAS com base no conteúdo dos documentos",
		"não há informações suficientes",
		"Cite sempre os documentos",
		"Seja preciso e objetivo",
		"PERGUNTA DO USUÁRIO:\nQual o prazo de matrícula?",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt is missing %q", fragment)
		}
	}

	if strings.Index(prompt, "regulamento.pdf") > strings.Index(prompt, "calendario.pdf") {
		t.Error("context blocks must keep retrieval order")
	}
	if !strings.HasSuffix(prompt, "RESPOSTA:") {
		t.Error("prompt should end with the answer marker")
	}
}

func TestBuildPrompt_IsDeterministic(t *testing.T) {
	chunks := []commonModels.RetrievedChunk{{DocName: "a.pdf", Content: "x"}}
	if BuildPrompt("q", chunks) != BuildPrompt("q", chunks) {
		t.Error("same inputs produced different prompts")
	}
}
