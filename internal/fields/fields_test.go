package fields

import (
	"reflect"
	"testing"
)

func TestInferNamedPatterns(t *testing.T) {
	got := Infer("Name: Jane Doe\nEmail: jane@x.com\nNotes")

	want := []Field{
		{ID: "field-0", Label: "Full Name", Value: "Jane Doe", Kind: KindText},
		{ID: "field-1", Label: "Email Address", Value: "jane@x.com", Kind: KindEmail},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Infer() = %+v, want %+v", got, want)
	}
}

func TestInferBirthDateBeforeDate(t *testing.T) {
	got := Infer("Birth Date: 1990-01-01")

	if len(got) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(got))
	}
	if got[0].Label != "Date of Birth" {
		t.Errorf("Expected 'Date of Birth', got %q", got[0].Label)
	}
	if got[0].Kind != KindDate {
		t.Errorf("Expected date kind, got %q", got[0].Kind)
	}
	if got[0].Value != "1990-01-01" {
		t.Errorf("Expected '1990-01-01', got %q", got[0].Value)
	}
}

func TestInferPatternPriority(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantLabel string
		wantKind  Kind
		wantValue string
	}{
		{"full name", "Name: Jane", "Full Name", KindText, "Jane"},
		{"plain date", "Date: 2024-05-01", "Date", KindDate, "2024-05-01"},
		{"phone", "Phone: 555-0100", "Phone Number", KindTel, "555-0100"},
		{"address", "Address: 12 Elm St", "Address", KindTextarea, "12 Elm St"},
		{"case insensitive label", "EMAIL: JANE@X.COM", "Email Address", KindEmail, "JANE@X.COM"},
		{"label inside longer line", "Contact email: a@b.c", "Email Address", KindEmail, "a@b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.line)
			if len(got) != 1 {
				t.Fatalf("Expected 1 field, got %d", len(got))
			}
			if got[0].Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", got[0].Label, tt.wantLabel)
			}
			if got[0].Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got[0].Kind, tt.wantKind)
			}
			if got[0].Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", got[0].Value, tt.wantValue)
			}
		})
	}
}

func TestInferGenericColonRule(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantLabel string
		wantValue string
	}{
		{"plain label", "Occupation: Carpenter", "Occupation", "Carpenter"},
		{"first colon wins", "Schedule: 9:30 to 5:00", "Schedule", "9:30 to 5:00"},
		{"spaced named label falls through", "NAME : Jane", "NAME", "Jane"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.line)
			if len(got) != 1 {
				t.Fatalf("Expected 1 field, got %d", len(got))
			}
			if got[0].Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", got[0].Label, tt.wantLabel)
			}
			if got[0].Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", got[0].Value, tt.wantValue)
			}
			if got[0].Kind != KindText {
				t.Errorf("Kind = %q, want %q", got[0].Kind, KindText)
			}
		})
	}
}

func TestInferNamedPatternWithTrailingColons(t *testing.T) {
	// Named matchers operate on the whole line, not just up to the first
	// colon.
	got := Infer("Email: jane@x.com (work: primary)")

	if len(got) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(got))
	}
	if got[0].Label != "Email Address" {
		t.Errorf("Expected named pattern to win, got label %q", got[0].Label)
	}
	if got[0].Value != "jane@x.com (work: primary)" {
		t.Errorf("Value = %q", got[0].Value)
	}
}

func TestInferFallbackField(t *testing.T) {
	text := "hello world"
	got := Infer(text)

	want := []Field{{ID: FallbackID, Label: FallbackLabel, Value: text, Kind: KindTextarea}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Infer() = %+v, want %+v", got, want)
	}
}

func TestInferFallbackKeepsWholeInput(t *testing.T) {
	// Multi-line text with no colon structure collapses into a single
	// textarea holding the input unmodified.
	text := "line one\n\nline two\nline three"
	got := Infer(text)

	if len(got) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(got))
	}
	if got[0].Value != text {
		t.Errorf("Fallback value = %q, want original input", got[0].Value)
	}
}

func TestInferEmptyInput(t *testing.T) {
	if got := Infer(""); len(got) != 0 {
		t.Errorf("Expected no fields for empty input, got %d", len(got))
	}
}

func TestInferSkipsBlankAndUnmatchedLines(t *testing.T) {
	got := Infer("\n  \nName: Jane\n\nloose text without separator\nCity: Oslo\n")

	if len(got) != 2 {
		t.Fatalf("Expected 2 fields, got %d: %+v", len(got), got)
	}
	if got[0].Label != "Full Name" || got[1].Label != "City" {
		t.Errorf("Labels = %q, %q", got[0].Label, got[1].Label)
	}
	// IDs are positional over the non-blank lines, preserving source order.
	if got[0].ID != "field-0" || got[1].ID != "field-2" {
		t.Errorf("IDs = %q, %q", got[0].ID, got[1].ID)
	}
}

func TestInferIdempotent(t *testing.T) {
	text := "Name: Jane Doe\nEmail: jane@x.com\nCity: Oslo\nNotes"

	first := Infer(text)
	second := Infer(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Infer not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}
