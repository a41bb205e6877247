package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestProgressLifecycle(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, "Probing")

	p.Start(4)
	p.Update(2)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "Probing") {
		t.Errorf("expected label in output: %q", out)
	}
	if !strings.Contains(out, "2/4 (50%)") {
		t.Errorf("expected intermediate progress in output: %q", out)
	}
	if !strings.Contains(out, "4/4 (100%)") {
		t.Errorf("expected completed progress in output: %q", out)
	}
}

func TestProgressZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, "Probing")

	p.Start(0)
	p.Update(0)
	p.Finish()

	// Only the trailing newline from Finish should be written.
	if got := buf.String(); got != "\n" {
		t.Errorf("expected no progress bar for zero total, got %q", got)
	}
}

func TestProgressError(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, "Probing")

	p.Start(3)
	p.Error(errors.New("provider unreachable"))

	out := buf.String()
	if !strings.Contains(out, "Probing failed") {
		t.Errorf("expected labelled failure in output: %q", out)
	}
	if !strings.Contains(out, "provider unreachable") {
		t.Errorf("expected error message in output: %q", out)
	}
}

func TestProgressDefaults(t *testing.T) {
	p := NewProgressReporter(nil, "")
	pp, ok := p.(*ProbeProgress)
	if !ok {
		t.Fatalf("unexpected reporter type %T", p)
	}
	if pp.writer == nil {
		t.Error("expected nil writer to default to stdout")
	}
	if pp.label != "Progress" {
		t.Errorf("label = %q, want default Progress", pp.label)
	}
}
