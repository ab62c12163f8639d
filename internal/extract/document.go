package extract

import "strings"

// WordExtension is the word-processor container suffix the classifier
// accepts in addition to a document media type.
const WordExtension = ".docx"

// Format identifies the extraction strategy chosen for a document.
type Format int

const (
	// FormatUnknown is the zero value; it never classifies successfully.
	FormatUnknown Format = iota
	// FormatImage routes to the image OCR engine.
	FormatImage
	// FormatPDF routes to the PDF text-layer engine.
	FormatPDF
	// FormatWord routes to the word-processor document engine.
	FormatWord
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatImage:
		return "image"
	case FormatPDF:
		return "pdf"
	case FormatWord:
		return "word"
	default:
		return "unknown"
	}
}

// Document is one extraction request: an opaque payload plus the media type
// and filename declared by the caller. The payload is never retained after
// the request completes.
type Document struct {
	Data      []byte
	MediaType string
	Filename  string
}

// Classify selects the extraction strategy for a document based solely on
// its declared media type and filename. Byte content is never inspected;
// a spoofed declared type surfaces later as a read error from whichever
// engine it was routed to.
func Classify(doc Document) (Format, error) {
	switch {
	case strings.HasPrefix(doc.MediaType, "image/"):
		return FormatImage, nil
	case doc.MediaType == "application/pdf":
		return FormatPDF, nil
	case strings.Contains(doc.MediaType, "document") || strings.HasSuffix(doc.Filename, WordExtension):
		return FormatWord, nil
	default:
		return FormatUnknown, NewUnsupportedFormatError(doc.MediaType, doc.Filename)
	}
}
