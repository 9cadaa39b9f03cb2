package rag

import (
	"context"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/internal/metrics"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

type Step string

const (
	StepReceive     Step = "RECEIVE"
	StepResolve     Step = "RESOLVE_CONVERSATION"
	StepRetrieve    Step = "RETRIEVE"
	StepNoContext   Step = "NO_CONTEXT"
	StepBuildPrompt Step = "BUILD_PROMPT"
	StepGenerate    Step = "GENERATE"
	StepPersist     Step = "PERSIST"
	StepRespond     Step = "RESPOND"
)

// turn tracks one chat request through the steps.
type turn struct {
	step           Step
	startedAt      time.Time
	conversationId string
	log            *logger_i.Logger
}

func (s *service) newTurn(ctx context.Context, in ChatInput) *turn {
	started := in.ReceivedAt
	if started.IsZero() {
		started = time.Now()
	}
	t := &turn{step: StepReceive, startedAt: started, log: s.logger.FromContext(ctx)}
	t.log.Debug("ProcessChat", "Current Step", t.step)
	return t
}

func (t *turn) enter(step Step) {
	t.step = step
	t.log.Debug("ProcessChat", "Current Step", step)
}

func (t *turn) fail(err error) error {
	return ragErrors.AtStage(err, string(t.step))
}

func (s *service) resolve(ctx context.Context, id string, userId *string) (string, error) {
	if id != "" {
		return id, nil
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(metrics.Storage, time.Since(start)) }()

	conv, err := s.conversations.CreateConversation(ctx, userId)
	if err != nil {
		return "", ragErrors.Classify(err, ragErrors.KindStorage, "creating conversation")
	}
	return conv.Id, nil
}

func (s *service) retrieve(ctx context.Context, query string, k int) ([]commonModels.RetrievedChunk, error) {
	embedStart := time.Now()
	vector, err := s.embedder.EmbedOne(ctx, query)
	metrics.CaptureExecutionMetrics(metrics.Embedding, time.Since(embedStart))
	if err != nil {
		return nil, ragErrors.Classify(err, ragErrors.KindEmbedding, "embedding the question")
	}

	searchStart := time.Now()
	chunks, err := s.index.Search(ctx, vector, k)
	metrics.CaptureExecutionMetrics(metrics.VectorSearch, time.Since(searchStart))
	if err != nil {
		return nil, ragErrors.Classify(err, ragErrors.KindIndexUnavailable, "searching the vector index")
	}
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	return chunks, nil
}

func (s *service) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(metrics.LLM, time.Since(start)) }()

	answer, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", ragErrors.Classify(err, ragErrors.KindGeneration, "generating the answer")
	}
	return answer, nil
}

func (s *service) persist(ctx context.Context, conversationId, question, answer string, chunks []commonModels.RetrievedChunk) (commonModels.Turn, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(metrics.Storage, time.Since(start)) }()

	refs := make([]commonModels.SourceRef, len(chunks))
	for i, c := range chunks {
		refs[i] = commonModels.SourceRef{
			ChunkId:      c.ChunkId,
			DocumentName: c.DocName,
			PageNumber:   c.PageNum,
			Similarity:   c.Similarity,
		}
	}
	saved, err := s.conversations.AppendTurn(ctx, commonModels.Turn{
		ConversationId: conversationId,
		User:           commonModels.Message{Content: question},
		Assistant:      commonModels.Message{Content: answer, Sources: refs},
	})
	if err != nil {
		return commonModels.Turn{}, ragErrors.Classify(err, ragErrors.KindStorage, "persisting the turn")
	}
	return saved, nil
}

func toSources(chunks []commonModels.RetrievedChunk) []commonModels.SourceChunk {
	sources := make([]commonModels.SourceChunk, len(chunks))
	for i, c := range chunks {
		sources[i] = commonModels.SourceChunk{
			Content:         Preview(c.Content, config.PreviewLength),
			DocumentName:    c.DocName,
			PageNumber:      c.PageNum,
			SimilarityScore: c.Similarity,
		}
	}
	return sources
}

// Preview cuts text to at most max characters and marks the cut with "...".
func Preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// clampK maps a requested chunk count into [MinMaxChunks, MaxMaxChunks]. Zero
// means the caller did not ask, so def applies.
func clampK(k, def int) int {
	if k == 0 {
		k = def
	}
	if k < config.MinMaxChunks {
		return config.MinMaxChunks
	}
	if k > config.MaxMaxChunks {
		return config.MaxMaxChunks
	}
	return k
}
