// Package ocr recognizes text in raster images by shelling out to the
// tesseract binary.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/easyfill/easyfill/internal/extract"
)

// Config controls how tesseract is invoked. Zero values fall back to the
// defaults below.
type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Language    string // single fixed language model; if empty -> "eng"
	TessdataDir string
}

// Engine is the image OCR extraction strategy.
type Engine struct {
	cfg    Config
	runner Runner
}

// New creates the OCR engine with the given configuration.
func New(cfg Config) *Engine {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Engine{cfg: cfg, runner: execRunner{}}
}

// Format reports the classified format this engine serves.
func (e *Engine) Format() extract.Format {
	return extract.FormatImage
}

// Extract writes the image payload to a scratch file and runs tesseract
// over it, returning the recognized text verbatim including whitespace.
// Recognition progress occupies the 30-90 band: 30 at setup, 90 once the
// recognizer hands its text back.
func (e *Engine) Extract(ctx context.Context, doc extract.Document, report extract.ProgressFunc) (string, error) {
	report(extract.ProgressEvent{Percent: extract.OCRScale(0), Phase: "preparing image"})

	path, cleanup, err := e.writeScratch(doc)
	if err != nil {
		return "", extract.NewEngineFailureError("failed to stage image for recognition", err)
	}
	defer cleanup()

	args := []string{path, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", extract.NewEngineFailureError(
			fmt.Sprintf("text recognition failed: %s", truncate(string(errb), 1<<10)), err)
	}

	report(extract.ProgressEvent{Percent: extract.OCRScale(1), Phase: "recognizing text"})

	return string(out), nil
}

// writeScratch stages the payload on disk for tesseract, which only reads
// files. The original extension is kept so the binary picks the right
// decoder.
func (e *Engine) writeScratch(doc extract.Document) (string, func(), error) {
	ext := filepath.Ext(doc.Filename)
	if ext == "" {
		ext = ".png"
	}

	f, err := os.CreateTemp("", "easyfill-ocr-*"+ext)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.Write(doc.Data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// Language reports the configured recognition language, e.g. for server
// info surfaces.
func (e *Engine) Language() string {
	return e.cfg.Language
}
