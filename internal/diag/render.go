package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode selects when diagnostics are colored.
type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// ParseColorMode accepts auto, on and off.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "on", "always":
		return ColorOn, nil
	case "off", "never":
		return ColorOff, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (expected: auto|on|off)", s)
	}
}

// ExitFatal is the process status after a fatal diagnostic.
const ExitFatal = 2

var (
	hooksMu   sync.Mutex
	exitFunc  = os.Exit
	fatalOut  io.Writer = os.Stderr
	colorMode = ColorAuto
)

// SetColorMode sets the coloring policy for Fatal and Print.
func SetColorMode(m ColorMode) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	colorMode = m
}

// SetFatalHooks replaces the writer and exit function used by Fatal and
// returns a function restoring the previous ones. Intended for tests.
func SetFatalHooks(w io.Writer, exit func(int)) (restore func()) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	prevOut, prevExit := fatalOut, exitFunc
	fatalOut, exitFunc = w, exit
	return func() {
		hooksMu.Lock()
		defer hooksMu.Unlock()
		fatalOut, exitFunc = prevOut, prevExit
	}
}

// Fatal reports err as an error diagnostic and terminates the process with
// ExitFatal. With a replaced exit hook Fatal returns after calling it.
func Fatal(err error) {
	hooksMu.Lock()
	w, exit, mode := fatalOut, exitFunc, colorMode
	hooksMu.Unlock()

	Render(w, FromError(err), useColor(w, mode))
	exit(ExitFatal)
}

// Print renders d to w with the current color policy.
func Print(w io.Writer, d Diagnostic) {
	hooksMu.Lock()
	mode := colorMode
	hooksMu.Unlock()
	Render(w, d, useColor(w, mode))
}

// Render writes d as
//
//	error[E2001]: message
//	  note: ...
func Render(w io.Writer, d Diagnostic, colored bool) {
	head := color.New(color.Bold)
	switch d.Severity {
	case SevError:
		head.Add(color.FgRed)
	case SevWarning:
		head.Add(color.FgYellow)
	default:
		head.Add(color.FgCyan)
	}
	noteLabel := color.New(color.FgBlue, color.Bold)
	if colored {
		head.EnableColor()
		noteLabel.EnableColor()
	} else {
		head.DisableColor()
		noteLabel.DisableColor()
	}

	fmt.Fprintf(w, "%s: %s\n", head.Sprintf("%s[%s]", d.Severity, d.Code.ID()), d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(w, "  %s %s\n", noteLabel.Sprint("note:"), n)
	}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorOn:
		return true
	case ColorOff:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
