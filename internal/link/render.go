package link

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Render returns the unit as LLVM-IR text. The output parses back into an
// equivalent unit with Parse.
func (u *Unit) Render() []byte {
	var buf bytes.Buffer
	_, _ = u.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo writes the rendered unit to w.
func (u *Unit) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", u.name)
	if len(u.modules) > 0 {
		fmt.Fprintf(&sb, "; linked: %s\n", strings.Join(u.modules, ", "))
	}
	if u.layout != "" {
		fmt.Fprintf(&sb, "target datalayout = %s\n", strconv.Quote(u.layout))
	}
	if u.triple != "" {
		fmt.Fprintf(&sb, "target triple = %s\n", strconv.Quote(u.triple))
	}

	section := func(lines []string, sep string) {
		if len(lines) == 0 {
			return
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Join(lines, sep))
		sb.WriteString("\n")
	}

	var globals, funcs []string
	for _, s := range u.defs {
		if s.Kind == Global {
			globals = append(globals, s.Text)
		} else {
			funcs = append(funcs, s.Text)
		}
	}
	var decls []string
	for _, d := range u.decls {
		if !u.Defines(d.Name) {
			decls = append(decls, d.Text)
		}
	}

	section(globals, "\n")
	section(decls, "\n")
	section(funcs, "\n\n")

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
