package diag

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"kernc/internal/compose"
	"kernc/internal/config"
	"kernc/internal/cpu"
	"kernc/internal/link"
	"kernc/internal/rtmod"
	"kernc/internal/target"
)

func TestFromErrorCodes(t *testing.T) {
	_, parseErr := target.ResolveOverride("bogus", target.Target{Bits: 64})
	tests := []struct {
		err  error
		code Code
	}{
		{fmt.Errorf("probe host CPU: %w", cpu.ErrNoSSE2), HwNoSSE2},
		{parseErr, TgtBadOverride},
		{&target.InvariantError{Field: "bits", Value: 16}, InvInvalidTarget},
		{&compose.InvariantError{Detail: "x"}, InvModuleTable},
		{compose.ErrNoDeviceModule, TgtNoDevice},
		{&link.Error{Kind: link.ErrDuplicateSymbol, Module: "b", Other: "a", Symbol: "f"}, LnkMergeFailed},
		{&link.Error{Kind: link.ErrSyntax, Module: "a", Line: 3, Detail: "x"}, LnkBadPayload},
		{&rtmod.MissingPayloadError{Module: "cuda_32", File: "cuda_32.ll"}, PayMissingModule},
		{&config.Error{Key: "cache.codec", Msg: "bad"}, CfgInvalid},
		{fmt.Errorf("write out.ll: %w", WithCode(IOOutput, errors.New("disk full"))), IOOutput},
		{fmt.Errorf("something else"), UnknownCode},
	}
	for _, tt := range tests {
		if got := FromError(tt.err).Code; got != tt.code {
			t.Errorf("FromError(%v) = %s, want %s", tt.err, got.ID(), tt.code.ID())
		}
	}
}

func TestGrammarBecomesNote(t *testing.T) {
	_, err := target.ResolveOverride("bogus", target.Target{Bits: 64})
	d := FromError(err)
	if strings.Contains(d.Message, "\n") || !strings.Contains(d.Message, "bogus") {
		t.Fatalf("message = %q", d.Message)
	}
	if len(d.Notes) != 1 || d.Notes[0] != target.Grammar {
		t.Fatalf("notes = %q", d.Notes)
	}
}

func TestFatalUsesHooks(t *testing.T) {
	var out bytes.Buffer
	var code int
	restore := SetFatalHooks(&out, func(c int) { code = c })
	defer restore()
	SetColorMode(ColorOff)
	defer SetColorMode(ColorAuto)

	Fatal(&link.Error{Kind: link.ErrLayoutMismatch, Module: "io_32", Other: "clock_64", Want: "a", Got: "b"})

	if code != ExitFatal {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(out.String(), "error[E3001]: cannot link module \"io_32\"") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRenderColor(t *testing.T) {
	var plain, colored bytes.Buffer
	d := Diagnostic{Severity: SevWarning, Code: IOCache, Message: "cache offline", Notes: []string{"continuing"}}
	Render(&plain, d, false)
	Render(&colored, d, true)
	if plain.String() != "warning[E6001]: cache offline\n  note: continuing\n" {
		t.Fatalf("plain = %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escape codes: %q", colored.String())
	}
}

func TestBagSort(t *testing.T) {
	b := NewBag(2)
	b.Add(Diagnostic{Severity: SevWarning, Code: IOCache, Message: "offline"})
	if b.Add(Diagnostic{Severity: SevWarning, Code: IOCache, Message: "offline"}) {
		t.Fatal("duplicate diagnostic kept")
	}
	b.Add(Diagnostic{Severity: SevError, Code: LnkMergeFailed})
	if b.Add(Diagnostic{}) {
		t.Fatal("bag exceeded its limit")
	}
	b.Sort()
	if b.Items()[0].Severity != SevError || !b.HasErrors() {
		t.Fatalf("items = %+v", b.Items())
	}
}
