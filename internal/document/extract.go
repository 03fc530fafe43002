// Package document handles uploaded PDF files: text extraction, size checks
// and temporary file management.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSeparator joins the text of consecutive pages.
const pageSeparator = "\n\n"

// Extractor pulls plain text out of a document on disk.
type Extractor interface {
	// Extract returns the document text and true, or "" and false when no
	// text could be obtained. It never returns an error.
	Extract(ctx context.Context, path string) (string, bool)
}

// PDFExtractor extracts text from PDF files page by page.
type PDFExtractor struct {
	logger *slog.Logger
}

// NewPDFExtractor creates a PDF extractor. A nil logger discards output.
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PDFExtractor{logger: logger}
}

// Extract implements Extractor.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, bool) {
	text, err := e.extract(ctx, path)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e.logger.Info("pdf extraction cancelled", "path", path, "error", err)
		return "", false
	}
	if err != nil {
		e.logger.Error("pdf extraction failed", "path", path, "error", err)
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		e.logger.Warn("pdf contains no extractable text", "path", path)
		return "", false
	}
	return text, true
}

func (e *PDFExtractor) extract(ctx context.Context, path string) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat pdf: %w", err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return "", fmt.Errorf("create pdf reader: %w", err)
	}

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("failed to extract text from page", "page", i, "error", err)
			continue
		}
		if pageText == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	e.logger.Debug("pdf extracted", "path", path, "pages", pageCount, "text_pages", len(pages))
	return strings.Join(pages, pageSeparator), nil
}
