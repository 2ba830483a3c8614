package observ

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestOpenJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := Open(&buf, "debug", "json")
	if err != nil {
		t.Fatal(err)
	}
	l.WithTarget("x86-64-linux").LogCache(context.Background(), "get", "abc", true, nil)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %q", buf.String())
	}
	if rec["target"] != "x86-64-linux" || rec["key"] != "abc" || rec["hit"] != true {
		t.Fatalf("record = %v", rec)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := Open(&buf, "warn", "text")
	if err != nil {
		t.Fatal(err)
	}
	l.LogCompose(context.Background(), "x86-64", 12, false, nil)
	if buf.Len() != 0 {
		t.Fatalf("info record passed warn level: %q", buf.String())
	}
	l.LogCache(context.Background(), "put", "k", false, errors.New("bucket gone"))
	if !strings.Contains(buf.String(), "bucket gone") {
		t.Fatalf("warning dropped: %q", buf.String())
	}
}

func TestOpenRejects(t *testing.T) {
	if _, err := Open(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Fatal("bad level accepted")
	}
	if _, err := Open(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatal("bad format accepted")
	}
}

func TestTimer(t *testing.T) {
	tm := NewTimer()
	stop := tm.Start("resolve")
	stop("host")
	stop("ignored")
	tm.Start("compose")("linux-x86-64")
	tm.Start("compose")("android-arm-32")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Phases[0].Name != "resolve" || rep.Phases[0].Count != 1 || rep.Phases[0].Note != "host" {
		t.Fatalf("resolve row = %+v", rep.Phases[0])
	}
	if rep.Phases[1].Count != 2 || rep.Phases[1].Note != "android-arm-32" {
		t.Fatalf("compose row = %+v", rep.Phases[1])
	}
	if !strings.Contains(tm.Summary(), "compose x2") {
		t.Fatalf("summary = %q", tm.Summary())
	}

	var nilTimer *Timer
	nilTimer.Start("x")("")
	if len(nilTimer.Report().Phases) != 0 {
		t.Fatal("nil timer recorded a phase")
	}
}
