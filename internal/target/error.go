package target

import "fmt"

// Grammar describes the accepted override string format.
const Grammar = "Expected format is arch-bits-os-feature1-feature2-... " +
	"where arch is x86 or arm, bits is 32 or 64 (e.g. x86-32, x86-64, arm-32, arm-64), " +
	"and os is linux, windows, osx, nacl, ios or android. " +
	"Features include sse41, avx, avx2, cuda (or ptx), opencl and gpu_debug. " +
	"Each of arch, bits and os may be given at most once."

// ParseErrorKind enumerates override string failures.
type ParseErrorKind uint8

const (
	// ErrUnknownToken is a segment that matches no entry of the token table.
	ErrUnknownToken ParseErrorKind = iota + 1
	ErrDuplicateArch
	ErrDuplicateOS
	ErrDuplicateBits
)

// ParseError reports a malformed override string.
type ParseError struct {
	Kind  ParseErrorKind
	Input string // the full override string
	Token string // the offending segment
	Index int    // segment index within Input
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnknownToken:
		return fmt.Sprintf("did not understand target %q: unknown token %q\n%s", e.Input, e.Token, Grammar)
	case ErrDuplicateArch:
		return fmt.Sprintf("target string %q specifies architecture twice (second: %q)\n%s", e.Input, e.Token, Grammar)
	case ErrDuplicateOS:
		return fmt.Sprintf("target string %q specifies OS twice (second: %q)\n%s", e.Input, e.Token, Grammar)
	case ErrDuplicateBits:
		return fmt.Sprintf("target string %q specifies bits twice (second: %q)\n%s", e.Input, e.Token, Grammar)
	default:
		return fmt.Sprintf("target string %q: parse error kind=%d at %q", e.Input, e.Kind, e.Token)
	}
}

// InvariantError reports a Target that violates its model invariants. It is
// a defect upstream of the caller, not an operator mistake.
type InvariantError struct {
	Field string
	Value int
}

func (e *InvariantError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("invalid target: %s = %d (must be 32 or 64)", e.Field, e.Value)
}
