// Package extract defines the shared contract between the pipeline and the
// format-specific extraction engines: the document model and classifier,
// the progress scale, and the error taxonomy.
package extract

import "context"

// ProgressEvent is one normalized progress report on the shared 0-100
// scale, optionally annotated with a human-readable phase.
type ProgressEvent struct {
	Percent int
	Phase   string
}

// ProgressFunc receives progress events during an extraction run. It may be
// invoked from the goroutine running the engine.
type ProgressFunc func(ProgressEvent)

// Engine turns a document payload of one specific format into plain text.
// All engines share the signature so the pipeline stays agnostic to which
// one runs. Engines report progress inside their reserved band only; the
// pipeline wrapper owns the terminal 100 (success) and 0 (failure) values.
type Engine interface {
	// Format reports which classified format this engine serves.
	Format() Format

	// Extract produces the document's raw text. On failure it returns a
	// classified *Error and emits no further progress events.
	Extract(ctx context.Context, doc Document, report ProgressFunc) (string, error)
}
