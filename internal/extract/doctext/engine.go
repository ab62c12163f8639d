// Package doctext extracts the raw text body of a word-processor document.
// A .docx file is a zip container whose text lives in word/document.xml;
// the engine unpacks the container and streams the XML, which is the whole
// of the underlying capability — hence only two progress checkpoints.
package doctext

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/easyfill/easyfill/internal/extract"
)

// documentPath is where the OOXML spec keeps the main document part.
const documentPath = "word/document.xml"

// Engine is the word-processor document extraction strategy.
type Engine struct{}

// New creates the document text engine.
func New() *Engine {
	return &Engine{}
}

// Format reports the classified format this engine serves.
func (e *Engine) Format() extract.Format {
	return extract.FormatWord
}

// Extract unpacks the document container and returns its raw text body as
// a single string. Paragraphs are separated by a blank line. Progress is
// reported at 50 (unpack start) and 90 (text materialized).
func (e *Engine) Extract(ctx context.Context, doc extract.Document, report extract.ProgressFunc) (string, error) {
	report(extract.ProgressEvent{Percent: extract.DocUnpackProgress, Phase: "unpacking document"})

	zr, err := zip.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", extract.NewDocumentReadError("failed to unpack document container", err)
	}

	part := findPart(zr, documentPath)
	if part == nil {
		return "", extract.NewDocumentReadError("not a Word document: missing "+documentPath, nil)
	}

	rc, err := part.Open()
	if err != nil {
		return "", extract.NewDocumentReadError("failed to read document body", err)
	}
	defer rc.Close()

	text, err := documentText(rc)
	if err != nil {
		return "", extract.NewDocumentReadError("failed to parse document body", err)
	}

	report(extract.ProgressEvent{Percent: extract.DocTextProgress, Phase: "text extracted"})

	return text, nil
}

func findPart(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// documentText walks the WordprocessingML token stream: <w:t> runs carry
// the text, <w:br> and <w:tab> become newline and tab, and each closed
// <w:p> paragraph is followed by a blank line.
func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var b strings.Builder
	inRun := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inRun = true
			case "br", "cr":
				b.WriteString("\n")
			case "tab":
				b.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inRun {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
