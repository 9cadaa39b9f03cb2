package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/dslipak/pdf"
)

type Page struct {
	Number  int
	Content string
}

// Extractor turns a raw document into its text pages. Pages without text are
// omitted.
type Extractor interface {
	Extract(ctx context.Context, raw []byte) ([]Page, error)
}

type PDFExtractor struct {
	pageTimeout time.Duration
	logger      *logger_i.Logger
}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		pageTimeout: config.PageExtractionTimeout,
		logger:      logger_i.NewLogger("PDFExtractor"),
	}
}

func (e *PDFExtractor) Extract(ctx context.Context, raw []byte) (pages []Page, err error) {
	log := e.logger.FromContext(ctx)

	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			log.Error("PDF parser panicked", "panic", r)
			pages, err = nil, ragErrors.Extraction(fmt.Errorf("%v", r), "arquivo PDF inválido")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		log.Error("failed opening of pdf file", "error", err)
		return nil, ragErrors.Extraction(err, "não foi possível abrir o PDF")
	}

	numPages := reader.NumPage()
	log.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := e.protectExtract(ctx, page)
		if err != nil {
			// one bad page does not sink the document
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Content: content})
	}
	return pages, nil
}

func (e *PDFExtractor) protectExtract(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(e.pageTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errors.New("timeout")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
