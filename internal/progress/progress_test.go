package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestReporterWritesResultLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Report(Status{Path: "Movie.en.srt", Done: true, OK: true, Text: "dev 0.10s"})

	out := buf.String()
	if !strings.Contains(out, "OK") || !strings.Contains(out, "Movie.en.srt") || !strings.Contains(out, "dev 0.10s") {
		t.Errorf("unexpected reporter output: %q", out)
	}
}

func TestReporterFailMark(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.Report(Status{Path: "Movie.en.srt", Done: true, OK: false, Text: "FAIL cannot compute linear regression"})

	if !strings.Contains(buf.String(), "FAIL") {
		t.Errorf("expected FAIL marker in output, got %q", buf.String())
	}
}

func TestModelUpdateAccumulatesResultsAndQuitsWhenDone(t *testing.T) {
	m := New(2)
	next, _ := m.Update(Status{Path: "a.srt", Done: true, OK: true, Text: "dev 0s"})
	model := next.(Model)
	if len(model.results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(model.results))
	}

	next2, cmd := model.Update(Status{Path: "b.srt", Done: true, OK: true, Text: "dev 0s"})
	model2 := next2.(Model)
	if len(model2.results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(model2.results))
	}
	if cmd == nil {
		t.Errorf("expected a quit command once total results reached")
	}
}
