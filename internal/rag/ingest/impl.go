package ingest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/TCC-RagBot/RagBot-Back/internal/domain/commonModels"
	"github.com/google/uuid"
)

const pageSeparator = "\n\n"

func isPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// joinPages concatenates page texts and returns the byte offset where each
// page starts in the joined text.
func joinPages(pages []Page) (string, []int) {
	var b strings.Builder
	starts := make([]int, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteString(pageSeparator)
		}
		starts[i] = b.Len()
		b.WriteString(p.Content)
	}
	return b.String(), starts
}

// pageLocator maps successive chunks back to the page holding their first
// character. Chunks arrive in document order, so the search only moves
// forward.
type pageLocator struct {
	text   string
	starts []int
	pages  []Page
	cursor int
	last   int
}

func newPageLocator(pages []Page) (*pageLocator, string) {
	text, starts := joinPages(pages)
	return &pageLocator{text: text, starts: starts, pages: pages}, text
}

func (l *pageLocator) locate(chunk string) int {
	if len(l.pages) == 0 {
		return 0
	}
	idx := strings.Index(l.text[l.cursor:], chunk)
	if idx < 0 {
		return l.pages[l.last].Number
	}
	offset := l.cursor + idx
	l.cursor = offset + 1
	if l.cursor > len(l.text) {
		l.cursor = len(l.text)
	}
	// last page whose start is at or before offset
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	l.last = i
	return l.pages[i].Number
}

func buildChunks(texts []string, locator *pageLocator, doc commonModels.Document, source, embeddingModel string) []commonModels.DocChunk {
	chunks := make([]commonModels.DocChunk, len(texts))
	for i, text := range texts {
		chunks[i] = commonModels.DocChunk{
			ChunkId:        uuid.NewString(),
			DocumentId:     doc.Id,
			DocName:        doc.Filename,
			Content:        text,
			PageNum:        locator.locate(text),
			ChunkIndex:     i,
			TotalChunks:    len(texts),
			Source:         source,
			EmbeddingModel: embeddingModel,
		}
	}
	return chunks
}

func chunkTexts(chunks []commonModels.DocChunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return texts
}
