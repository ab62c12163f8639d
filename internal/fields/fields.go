// Package fields turns unstructured extracted text into an ordered
// collection of labeled, editable form fields.
package fields

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind declares which input widget a field should render as.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindEmail    Kind = "email"
	KindTel      Kind = "tel"
	KindDate     Kind = "date"
)

// Field is one structured, user-editable unit inferred from extracted
// text. IDs are a stable function of line position, unique within one
// inference run. Ownership passes to the caller, which may mutate Value;
// the engine never reads a Field back.
type Field struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
	Kind  Kind   `json:"kind"`
}

// FallbackID is the identifier of the single catch-all field produced when
// no structured fields could be inferred.
const FallbackID = "extracted-text"

// FallbackLabel is the catch-all field's display label.
const FallbackLabel = "Extracted Text"

// pattern pairs a label-colon-value matcher with the display label and
// input kind it produces. Matchers run against the whole line and are
// case-insensitive on the label token only; captured values keep their
// original casing.
type pattern struct {
	re    *regexp.Regexp
	label string
	kind  Kind
}

// namedPatterns is tried in order per line; the first match wins. Order is
// a correctness tie-break, not incidental: the date-of-birth matcher must
// precede the generic date matcher or "Birth Date:" lines misclassify.
var namedPatterns = []pattern{
	{regexp.MustCompile(`(?i)name[:]\s*(.+)`), "Full Name", KindText},
	{regexp.MustCompile(`(?i)first\s*name[:]\s*(.+)`), "First Name", KindText},
	{regexp.MustCompile(`(?i)last\s*name[:]\s*(.+)`), "Last Name", KindText},
	{regexp.MustCompile(`(?i)email[:]\s*(.+)`), "Email Address", KindEmail},
	{regexp.MustCompile(`(?i)phone[:]\s*(.+)`), "Phone Number", KindTel},
	{regexp.MustCompile(`(?i)address[:]\s*(.+)`), "Address", KindTextarea},
	{regexp.MustCompile(`(?i)birth.*date[:]\s*(.+)`), "Date of Birth", KindDate},
	{regexp.MustCompile(`(?i)date[:]\s*(.+)`), "Date", KindDate},
}

// Infer derives an ordered field collection from extracted text. It never
// fails: text with no recognizable structure degrades to a single
// catch-all field holding the whole input, and only empty input yields an
// empty collection. Running Infer twice on the same text yields identical
// collections.
func Infer(text string) []Field {
	if text == "" {
		return nil
	}

	var out []Field
	lines := splitLines(text)
	for i, line := range lines {
		if f, ok := matchNamed(i, line); ok {
			out = append(out, f)
			continue
		}
		if f, ok := matchGeneric(i, line); ok {
			out = append(out, f)
		}
	}

	if len(out) == 0 {
		out = append(out, Field{
			ID:    FallbackID,
			Label: FallbackLabel,
			Value: text,
			Kind:  KindTextarea,
		})
	}
	return out
}

// splitLines breaks text on line-break characters, discarding lines that
// are empty after trimming.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// matchNamed tries the named patterns in priority order against the whole
// line; the first whose matcher succeeds wins.
func matchNamed(index int, line string) (Field, bool) {
	for _, p := range namedPatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return Field{
			ID:    fieldID(index),
			Label: p.label,
			Value: strings.TrimSpace(m[1]),
			Kind:  p.kind,
		}, true
	}
	return Field{}, false
}

// matchGeneric applies the colon rule: split on the first colon and emit a
// short-text field using the raw label text, provided both sides are
// non-empty after trimming.
func matchGeneric(index int, line string) (Field, bool) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return Field{}, false
	}
	label := strings.TrimSpace(line[:colon])
	value := strings.TrimSpace(line[colon+1:])
	if label == "" || value == "" {
		return Field{}, false
	}
	return Field{
		ID:    fieldID(index),
		Label: label,
		Value: value,
		Kind:  KindText,
	}, true
}

func fieldID(index int) string {
	return fmt.Sprintf("field-%d", index)
}
