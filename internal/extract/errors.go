package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal extraction failures. Every failed run maps
// to exactly one kind; none are retried automatically.
type ErrorKind string

const (
	// KindUnsupportedFormat means the classifier matched no engine.
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	// KindDocumentRead means an engine could not open or parse its input
	// (corrupt file, encrypted PDF, malformed container).
	KindDocumentRead ErrorKind = "document_read"
	// KindEngineFailure means the underlying extraction capability failed
	// unexpectedly.
	KindEngineFailure ErrorKind = "engine_failure"
)

// Error is a classified extraction failure. Message is suitable for
// surfacing to an end user; Err preserves the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewUnsupportedFormatError reports a document the classifier could not
// route, with guidance on what is accepted.
func NewUnsupportedFormatError(mediaType, filename string) *Error {
	return &Error{
		Kind: KindUnsupportedFormat,
		Message: fmt.Sprintf(
			"unsupported file type %q (%s): upload an image, PDF, or Word document",
			mediaType, filename),
	}
}

// NewDocumentReadError reports input an engine could not open or parse.
func NewDocumentReadError(message string, err error) *Error {
	return &Error{Kind: KindDocumentRead, Message: message, Err: err}
}

// NewEngineFailureError reports an unexpected failure in the underlying
// extraction capability.
func NewEngineFailureError(message string, err error) *Error {
	return &Error{Kind: KindEngineFailure, Message: message, Err: err}
}

// AsError unwraps err to the classified extraction error, if any.
func AsError(err error) (*Error, bool) {
	var ee *Error
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// WrapEngineError passes classified errors through unchanged and folds
// anything else into an engine failure, so callers always observe the
// taxonomy.
func WrapEngineError(format Format, err error) *Error {
	if ee, ok := AsError(err); ok {
		return ee
	}
	return NewEngineFailureError(fmt.Sprintf("%s extraction failed", format), err)
}
