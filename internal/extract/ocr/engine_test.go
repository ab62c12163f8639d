package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/easyfill/easyfill/internal/extract"
)

// stubRunner records the invocation and plays back canned output.
type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return s.stdout, s.stderr, s.err
}

func testDoc() extract.Document {
	return extract.Document{
		Data:      []byte("fake image bytes"),
		MediaType: "image/png",
		Filename:  "scan.png",
	}
}

func TestExtractReturnsRecognizedTextVerbatim(t *testing.T) {
	recognized := "Name: Jane Doe\n\n  Email: jane@x.com\n"
	runner := &stubRunner{stdout: []byte(recognized)}
	e := &Engine{cfg: Config{Tesseract: "tesseract", Language: "eng"}, runner: runner}

	text, err := e.Extract(context.Background(), testDoc(), func(extract.ProgressEvent) {})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != recognized {
		t.Errorf("Extract() = %q, want verbatim %q", text, recognized)
	}
}

func TestExtractInvokesTesseract(t *testing.T) {
	runner := &stubRunner{stdout: []byte("ok")}
	e := &Engine{
		cfg:    Config{Tesseract: "/usr/bin/tesseract", Language: "deu", TessdataDir: "/opt/tessdata"},
		runner: runner,
	}

	if _, err := e.Extract(context.Background(), testDoc(), func(extract.ProgressEvent) {}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if runner.gotName != "/usr/bin/tesseract" {
		t.Errorf("binary = %q", runner.gotName)
	}
	if len(runner.gotArgs) != 6 {
		t.Fatalf("args = %v", runner.gotArgs)
	}
	if filepath.Ext(runner.gotArgs[0]) != ".png" {
		t.Errorf("scratch file should keep the image extension, got %q", runner.gotArgs[0])
	}
	if runner.gotArgs[1] != "stdout" || runner.gotArgs[2] != "-l" || runner.gotArgs[3] != "deu" {
		t.Errorf("unexpected args %v", runner.gotArgs)
	}
	if runner.gotArgs[4] != "--tessdata-dir" || runner.gotArgs[5] != "/opt/tessdata" {
		t.Errorf("expected tessdata args, got %v", runner.gotArgs)
	}

	// Scratch file is removed after the run.
	if _, err := os.Stat(runner.gotArgs[0]); !os.IsNotExist(err) {
		t.Errorf("scratch file %q still exists", runner.gotArgs[0])
	}
}

func TestExtractProgressBand(t *testing.T) {
	var events []extract.ProgressEvent
	e := &Engine{cfg: Config{Tesseract: "tesseract", Language: "eng"}, runner: &stubRunner{stdout: []byte("x")}}

	_, err := e.Extract(context.Background(), testDoc(), func(ev extract.ProgressEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Percent != 30 {
		t.Errorf("setup event = %d, want 30", events[0].Percent)
	}
	if events[1].Percent != 90 {
		t.Errorf("hand-off event = %d, want 90", events[1].Percent)
	}
}

func TestExtractRunnerFailure(t *testing.T) {
	runner := &stubRunner{stderr: []byte("Error in pixReadStream"), err: errors.New("exit status 1")}
	e := &Engine{cfg: Config{Tesseract: "tesseract", Language: "eng"}, runner: runner}

	var events []extract.ProgressEvent
	_, err := e.Extract(context.Background(), testDoc(), func(ev extract.ProgressEvent) {
		events = append(events, ev)
	})
	if err == nil {
		t.Fatal("Expected error")
	}

	ee, ok := extract.AsError(err)
	if !ok {
		t.Fatalf("Expected classified error, got %T", err)
	}
	if ee.Kind != extract.KindEngineFailure {
		t.Errorf("Kind = %q, want %q", ee.Kind, extract.KindEngineFailure)
	}
	if !strings.Contains(ee.Message, "pixReadStream") {
		t.Errorf("Message should carry recognizer stderr, got %q", ee.Message)
	}
	// Only the setup checkpoint precedes the failure; nothing follows it.
	if len(events) != 1 || events[0].Percent != 30 {
		t.Errorf("Expected single setup event before failure, got %+v", events)
	}
}

func TestNewDefaults(t *testing.T) {
	e := New(Config{})
	if e.cfg.Tesseract != "tesseract" {
		t.Errorf("Tesseract = %q", e.cfg.Tesseract)
	}
	if e.Language() != "eng" {
		t.Errorf("Language = %q", e.Language())
	}
	if e.Format() != extract.FormatImage {
		t.Errorf("Format = %v", e.Format())
	}
}
