package extract

import (
	"math"
	"sync"
)

// Reservation bands on the normalized 0-100 scale. Each engine reports
// inside its own band; values outside it belong to the pipeline wrapper
// (setup below, hand-off above).
const (
	// ClassifyProgress is emitted by the pipeline once dispatch begins.
	ClassifyProgress = 10

	// OCRSetupProgress opens the 30-90 band reserved for recognition.
	OCRSetupProgress = 30
	// OCRHandoffProgress closes the recognition band.
	OCRHandoffProgress = 90

	// PDFOpenProgress is reported once the PDF container is open; the
	// 40-90 band above it is divided across pages.
	PDFOpenProgress = 40

	// DocUnpackProgress is reported when the word-processor container
	// starts unpacking, DocTextProgress once its text is materialized.
	// The underlying capability exposes no finer granularity.
	DocUnpackProgress = 50
	DocTextProgress   = 90

	// CompleteProgress is the terminal value of every successful run.
	CompleteProgress = 100
)

// OCRScale maps the OCR capability's fractional completion (0.0-1.0) onto
// the 30-90 recognition band. Out-of-range input is clamped.
func OCRScale(fraction float64) int {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return OCRSetupProgress + int(math.Round(fraction*(OCRHandoffProgress-OCRSetupProgress)))
}

// PDFPageScale maps page completion onto the 40-90 band: 40 + done/total*50.
func PDFPageScale(done, total int) int {
	if total <= 0 {
		return PDFOpenProgress
	}
	if done < 0 {
		done = 0
	}
	if done > total {
		done = total
	}
	return PDFOpenProgress + int(math.Round(float64(done)/float64(total)*50))
}

// Tracker aggregates heterogeneous engine progress into the monotonic
// stream presented to the caller. Reports that would move the value
// backwards are dropped, so the caller never observes a regression, and
// nothing is forwarded after the run reaches a terminal state — late
// events from an abandoned or failed run are discarded, not delivered.
//
// A Tracker belongs to exactly one extraction run.
type Tracker struct {
	mu   sync.Mutex
	sink ProgressFunc
	last int
	done bool
}

// NewTracker wraps sink, which may be nil for callers that do not observe
// progress.
func NewTracker(sink ProgressFunc) *Tracker {
	return &Tracker{sink: sink}
}

// Report forwards one progress event unless the run is terminal or the
// value would regress. Values are clamped to [0,100].
func (t *Tracker) Report(ev ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	if ev.Percent < 0 {
		ev.Percent = 0
	}
	if ev.Percent > CompleteProgress {
		ev.Percent = CompleteProgress
	}
	if ev.Percent < t.last {
		return
	}
	t.last = ev.Percent
	t.emit(ev)
}

// Finish marks the run successful, emitting the final 100.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.last = CompleteProgress
	t.emit(ProgressEvent{Percent: CompleteProgress, Phase: "complete"})
}

// Fail marks the run failed. The caller-visible value resets to 0 and no
// further events are forwarded.
func (t *Tracker) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.last = 0
	t.emit(ProgressEvent{Percent: 0})
}

func (t *Tracker) emit(ev ProgressEvent) {
	if t.sink != nil {
		t.sink(ev)
	}
}
