package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"kernc/internal/diag"
)

func TestTableAligns(t *testing.T) {
	tbl := Table{
		Header: []string{"NAME", "KIND"},
		Rows: [][]string{
			{"linux_clock", "bits"},
			{"x86", "arch"},
		},
	}
	want := "NAME         KIND\n" +
		"linux_clock  bits\n" +
		"x86          arch\n"
	if got := tbl.String(); got != want {
		t.Fatalf("table:\n%s\nwant:\n%s", got, want)
	}
}

func TestTableWideRunes(t *testing.T) {
	tbl := Table{Rows: [][]string{{"日本", "x"}, {"ab", "y"}}}
	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	if lines[0] != "日本  x" || lines[1] != "ab    y" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestTableStylesAfterPadding(t *testing.T) {
	var buf bytes.Buffer
	st := NewStyles(&buf, diag.ColorOn)
	tbl := Table{
		Rows:  [][]string{{"a", "b"}},
		Style: func(row, col int) lipgloss.Style { return st.Selected },
	}
	out := tbl.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected escape codes in %q", out)
	}
}

func TestStylesOffArePlain(t *testing.T) {
	var buf bytes.Buffer
	st := NewStyles(&buf, diag.ColorOff)
	if got := st.Title.Render("kernc"); got != "kernc" {
		t.Fatalf("Render = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"posix_thread_pool_64", 0, "posix_thread_pool_64"},
		{"posix_thread_pool_64", 30, "posix_thread_pool_64"},
		{"posix_thread_pool_64", 10, "posix_t..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
