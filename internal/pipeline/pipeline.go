// Package pipeline is the composition root of the extraction flow: it
// classifies a document, runs the matching engine under a uniform error
// contract, forwards normalized progress, and turns the extracted text
// into structured fields.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/easyfill/easyfill/internal/extract"
	"github.com/easyfill/easyfill/internal/fields"
	"github.com/easyfill/easyfill/internal/store"
)

// Archiver receives finalized extractions best-effort. Failures are logged
// and never affect the result already delivered to the caller.
type Archiver interface {
	Save(rec store.ExtractionRecord) error
}

// Request is one extraction run. OnProgress may be nil; Principal is an
// opaque identifier recorded alongside the archived text.
type Request struct {
	Document   extract.Document
	Principal  string
	OnProgress extract.ProgressFunc
}

// Result is the successful outcome of one run. Ownership of Fields passes
// to the caller, which may edit values freely.
type Result struct {
	Filename string
	Text     string
	Fields   []fields.Field
}

// Pipeline dispatches documents to extraction engines. Runs share no
// mutable state; a single Pipeline serves concurrent documents.
type Pipeline struct {
	engines map[extract.Format]extract.Engine
	archive Archiver
}

// New builds a pipeline over the given engines. archive may be nil to
// disable the best-effort persistence side effect.
func New(archive Archiver, engines ...extract.Engine) *Pipeline {
	m := make(map[extract.Format]extract.Engine, len(engines))
	for _, e := range engines {
		m[e.Format()] = e
	}
	return &Pipeline{engines: m, archive: archive}
}

// Process runs one document through classification, extraction, and field
// inference, delivering exactly one terminal outcome. Progress events
// arrive on the request's callback while extraction runs; a successful run
// always ends with 100, a failed run presents 0 and emits nothing further.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	tracker := extract.NewTracker(req.OnProgress)
	tracker.Report(extract.ProgressEvent{
		Percent: extract.ClassifyProgress,
		Phase:   "classifying document",
	})

	format, err := extract.Classify(req.Document)
	if err != nil {
		tracker.Fail()
		return nil, err
	}

	engine, ok := p.engines[format]
	if !ok {
		tracker.Fail()
		return nil, extract.NewEngineFailureError(
			fmt.Sprintf("no engine registered for %s documents", format), nil)
	}

	text, err := p.runEngine(ctx, engine, req.Document, tracker)
	if err != nil {
		tracker.Fail()
		return nil, extract.WrapEngineError(format, err)
	}

	// The wrapper owns the terminal 100, engines never emit it themselves.
	tracker.Finish()

	result := &Result{
		Filename: req.Document.Filename,
		Text:     text,
		Fields:   fields.Infer(text),
	}

	p.archiveAsync(req, result)

	return result, nil
}

// runEngine executes the engine on its own goroutine so an abandoning
// caller is released immediately; the terminal tracker then discards any
// progress still in flight from the orphaned run.
func (p *Pipeline) runEngine(ctx context.Context, engine extract.Engine, doc extract.Document, tracker *extract.Tracker) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)

	go func() {
		text, err := engine.Extract(ctx, doc, tracker.Report)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case out := <-ch:
		return out.text, out.err
	}
}

// archiveAsync forwards the finalized extraction to the archive without
// blocking or failing the run.
func (p *Pipeline) archiveAsync(req Request, result *Result) {
	if p.archive == nil {
		return
	}

	rec := store.ExtractionRecord{
		ID:         uuid.NewString(),
		Filename:   result.Filename,
		Text:       result.Text,
		Principal:  req.Principal,
		FieldCount: len(result.Fields),
		CreatedAt:  time.Now(),
	}

	go func() {
		if err := p.archive.Save(rec); err != nil {
			log.Printf("archive save failed for %s: %v", rec.Filename, err)
		}
	}()
}

// Formats lists the formats the pipeline can currently dispatch, for
// serving-layer capability reporting.
func (p *Pipeline) Formats() []extract.Format {
	out := make([]extract.Format, 0, len(p.engines))
	for _, f := range []extract.Format{extract.FormatImage, extract.FormatPDF, extract.FormatWord} {
		if _, ok := p.engines[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
