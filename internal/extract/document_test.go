package extract

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		filename  string
		want      Format
		wantErr   bool
	}{
		{"png image", "image/png", "scan.png", FormatImage, false},
		{"jpeg image", "image/jpeg", "photo.jpg", FormatImage, false},
		{"pdf", "application/pdf", "form.pdf", FormatPDF, false},
		{
			"docx media type",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"letter.docx",
			FormatWord,
			false,
		},
		{"docx by suffix only", "application/octet-stream", "letter.docx", FormatWord, false},
		{"legacy word media type", "application/msword-document", "letter.doc", FormatWord, false},
		{"zip is rejected", "application/zip", "archive.zip", FormatUnknown, true},
		{"empty declaration", "", "mystery", FormatUnknown, true},
		{"pdf prefix does not match", "application/pdf+extra", "form.pdf", FormatUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(Document{MediaType: tt.mediaType, Filename: tt.filename})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Classify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			if tt.wantErr {
				ee, ok := AsError(err)
				if !ok {
					t.Fatalf("Expected classified error, got %T", err)
				}
				if ee.Kind != KindUnsupportedFormat {
					t.Errorf("Kind = %q, want %q", ee.Kind, KindUnsupportedFormat)
				}
			}
		})
	}
}

func TestClassifyIgnoresContent(t *testing.T) {
	// Classification trusts the declared type; payload bytes play no part.
	doc := Document{Data: []byte("%PDF-1.7"), MediaType: "image/png", Filename: "form.pdf"}

	got, err := Classify(doc)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != FormatImage {
		t.Errorf("Classify() = %v, want %v", got, FormatImage)
	}
}

func TestWrapEngineError(t *testing.T) {
	classified := NewDocumentReadError("broken container", errors.New("eof"))
	if got := WrapEngineError(FormatPDF, classified); got != classified {
		t.Errorf("Expected classified error to pass through unchanged")
	}

	plain := errors.New("segfault in recognizer")
	wrapped := WrapEngineError(FormatImage, plain)
	if wrapped.Kind != KindEngineFailure {
		t.Errorf("Kind = %q, want %q", wrapped.Kind, KindEngineFailure)
	}
	if !errors.Is(wrapped, plain) {
		t.Errorf("Expected wrapped error to preserve the cause")
	}
}

func TestFormatString(t *testing.T) {
	for f, want := range map[Format]string{
		FormatImage:   "image",
		FormatPDF:     "pdf",
		FormatWord:    "word",
		FormatUnknown: "unknown",
	} {
		if got := f.String(); got != want {
			t.Errorf("Format(%d).String() = %q, want %q", f, got, want)
		}
	}
}
