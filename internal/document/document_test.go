package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with one page per entry. An empty entry
// produces a page without any text operators.
func buildPDF(t *testing.T, pages ...string) string {
	t.Helper()

	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		content := "BT ET"
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestPDFExtractorExtract(t *testing.T) {
	ctx := context.Background()
	e := NewPDFExtractor(nil)

	t.Run("joins pages in order", func(t *testing.T) {
		path := buildPDF(t, "Indemnity", "Arbitration")

		text, ok := e.Extract(ctx, path)
		require.True(t, ok)
		assert.Contains(t, text, "Indemnity")
		assert.Contains(t, text, "Arbitration")
		assert.Contains(t, text, pageSeparator)
		assert.Less(t, strings.Index(text, "Indemnity"), strings.Index(text, "Arbitration"))
	})

	t.Run("pages without text are skipped", func(t *testing.T) {
		path := buildPDF(t, "Clause", "", "Schedule")

		text, ok := e.Extract(ctx, path)
		require.True(t, ok)
		assert.NotContains(t, text, pageSeparator+pageSeparator)
	})

	t.Run("document without text", func(t *testing.T) {
		path := buildPDF(t, "", "")

		text, ok := e.Extract(ctx, path)
		assert.False(t, ok)
		assert.Empty(t, text)
	})

	t.Run("missing file", func(t *testing.T) {
		text, ok := e.Extract(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
		assert.False(t, ok)
		assert.Empty(t, text)
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.pdf")
		require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

		text, ok := e.Extract(ctx, path)
		assert.False(t, ok)
		assert.Empty(t, text)
	})
}

func TestPDFExtractorLogsFailures(t *testing.T) {
	var logs bytes.Buffer
	e := NewPDFExtractor(slog.New(slog.NewTextHandler(&logs, nil)))

	_, ok := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "pdf extraction failed")
}

func TestSizeMB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, bytesPerMB/2), 0o644))

	size, err := SizeMB(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, size, 0.0001)

	_, err = SizeMB(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, apperr.ErrDocumentNotFound)
}

func TestValidateFileType(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"contract.pdf", false},
		{"CONTRACT.PDF", false},
		{"notes.txt", true},
		{"pdf", true},
		{"archive.pdf.zip", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileType(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidFileType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveUploadAndCleanup(t *testing.T) {
	path, err := SaveUpload(strings.NewReader("%PDF-1.4 body"), "lease.pdf")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	Cleanup(slog.New(slog.DiscardHandler), path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is silent.
	var logs bytes.Buffer
	Cleanup(slog.New(slog.NewTextHandler(&logs, nil)), path)
	assert.Empty(t, logs.String())
}

func TestSaveUploadRejectsNonPDF(t *testing.T) {
	_, err := SaveUpload(strings.NewReader("hello"), "notes.docx")
	assert.ErrorIs(t, err, apperr.ErrInvalidFileType)
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	hash, err := FileHash(path)
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", hash)

	_, err = FileHash(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestPDFExtractorCancelled(t *testing.T) {
	var logs bytes.Buffer
	e := NewPDFExtractor(slog.New(slog.NewTextHandler(&logs, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text, ok := e.Extract(ctx, buildPDF(t, "Indemnity"))
	assert.False(t, ok)
	assert.Empty(t, text)
	assert.Contains(t, logs.String(), "pdf extraction cancelled")
	assert.NotContains(t, logs.String(), "pdf extraction failed")
}
