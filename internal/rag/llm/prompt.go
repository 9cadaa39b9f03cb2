package llm

import (
	"fmt"
	"strings"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
)

// FallbackMessage is returned, without calling the model, when retrieval finds nothing.
const FallbackMessage = "Desculpe, não encontrei informações relevantes nos documentos disponíveis para responder sua pergunta."

const promptTemplate = `Você é um assistente especializado em responder perguntas baseadas exclusivamente no conteúdo dos documentos fornecidos.

INSTRUÇÕES:
1. Responda APENAS com base no conteúdo dos documentos fornecidos abaixo
2. Se a pergunta não puder ser respondida com base nos documentos, diga claramente que não há informações suficientes
3. Cite sempre os documentos utilizados na resposta
4. Seja preciso e objetivo

CONTEXTO DOS DOCUMENTOS:
%s

PERGUNTA DO USUÁRIO:
%s

RESPOSTA:`

// BuildContext renders each chunk as a document/content block, in the order
// given, separated by blank lines.
func BuildContext(chunks []commonModels.RetrievedChunk) string {
	blocks := make([]string, 0, len(chunks))
	for _, c := range chunks {
		blocks = append(blocks, fmt.Sprintf("Documento: %s\nConteúdo: %s", c.DocName, c.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt is deterministic: the same question and chunks always give the same prompt.
func BuildPrompt(question string, chunks []commonModels.RetrievedChunk) string {
	return fmt.Sprintf(promptTemplate, BuildContext(chunks), question)
}
