// Package pdftext extracts the text layer of a PDF document, page by page
// in ascending order.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/easyfill/easyfill/internal/extract"
)

// retryGuidance is appended to read errors so callers know the image-OCR
// path remains available for scanned or damaged PDFs.
const retryGuidance = "try converting the PDF to an image and re-submitting it for OCR"

// Engine is the PDF text-layer extraction strategy.
type Engine struct{}

// New creates the PDF text engine.
func New() *Engine {
	return &Engine{}
}

// Format reports the classified format this engine serves.
func (e *Engine) Format() extract.Format {
	return extract.FormatPDF
}

// Extract opens the PDF container, walks pages 1..N, and concatenates each
// page's plain text followed by a newline. Pages without a text layer
// contribute an empty string rather than failing the run. Progress after
// page i is 40 + i/N*50; the 0-40 band is reserved for opening the
// container.
func (e *Engine) Extract(ctx context.Context, doc extract.Document, report extract.ProgressFunc) (string, error) {
	if err := validateContainer(doc.Data); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", extract.NewDocumentReadError(
			fmt.Sprintf("failed to parse PDF; %s", retryGuidance), err)
	}

	report(extract.ProgressEvent{Percent: extract.PDFOpenProgress, Phase: "document opened"})

	return collectPages(ctx, &ledongthucSource{reader: reader}, report)
}

// validateContainer runs pdfcpu's relaxed validation over the payload so
// corrupt or encrypted documents fail up front with a classified error
// instead of surfacing as library panics mid-walk.
func validateContainer(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return extract.NewDocumentReadError(
			fmt.Sprintf("failed to open PDF; %s", retryGuidance), err)
	}
	if pdfCtx.Encrypt != nil {
		return extract.NewDocumentReadError(
			fmt.Sprintf("PDF is encrypted; %s", retryGuidance), nil)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return extract.NewDocumentReadError(
			fmt.Sprintf("failed to read PDF page tree; %s", retryGuidance), err)
	}
	return nil
}

// pageSource abstracts the page walk so concatenation order and progress
// math are testable without a real PDF.
type pageSource interface {
	PageCount() int
	// PageText returns the plain text of page n (1-based). Pages without
	// a text layer return the empty string.
	PageText(n int) string
}

// collectPages concatenates page texts in ascending page order, separated
// by a newline, reporting progress after each page.
func collectPages(ctx context.Context, src pageSource, report extract.ProgressFunc) (string, error) {
	total := src.PageCount()

	var b strings.Builder
	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		b.WriteString(src.PageText(i))
		b.WriteString("\n")
		report(extract.ProgressEvent{
			Percent: extract.PDFPageScale(i, total),
			Phase:   fmt.Sprintf("rendering page %d of %d", i, total),
		})
	}
	return b.String(), nil
}

// ledongthucSource adapts the ledongthuc reader to the page walk.
type ledongthucSource struct {
	reader *pdf.Reader
}

func (s *ledongthucSource) PageCount() int {
	return s.reader.NumPage()
}

// PageText swallows per-page failures: a page with no text layer, or one
// the library cannot decode, yields an empty string. The library is known
// to panic on some malformed content streams, so the walk is
// panic-protected per page.
func (s *ledongthucSource) PageText(n int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := s.reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return content
}
