package link

import "fmt"

// ErrorKind enumerates merge and parse failures.
type ErrorKind uint8

const (
	// ErrDuplicateSymbol is a strong definition of a name that is already
	// strongly defined.
	ErrDuplicateSymbol ErrorKind = iota + 1
	ErrLayoutMismatch
	ErrDuplicateModule
	ErrConsumedSource
	ErrFinished
	ErrSyntax
)

// Error reports a failure to parse a module or to link it into a unit.
type Error struct {
	Kind   ErrorKind
	Module string // the module being parsed or linked in
	Other  string // the module already in the unit it conflicts with; unset for ErrDuplicateModule
	Symbol string // for ErrDuplicateSymbol
	Want   string // for ErrLayoutMismatch: layout already in the unit
	Got    string // for ErrLayoutMismatch: layout of Module
	Line   int    // for ErrSyntax, 1-based
	Detail string // for ErrSyntax
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrDuplicateSymbol:
		return fmt.Sprintf("cannot link module %q: symbol @%s is already defined by module %q", e.Module, e.Symbol, e.Other)
	case ErrLayoutMismatch:
		return fmt.Sprintf("cannot link module %q: data layout %q is incompatible with %q from module %q", e.Module, e.Got, e.Want, e.Other)
	case ErrDuplicateModule:
		return fmt.Sprintf("cannot link module %q: it is already part of the unit", e.Module)
	case ErrConsumedSource:
		return fmt.Sprintf("cannot link module %q: it was already moved into another unit", e.Module)
	case ErrFinished:
		return fmt.Sprintf("cannot link module %q: the builder is finished", e.Module)
	case ErrSyntax:
		return fmt.Sprintf("%s:%d: %s", e.Module, e.Line, e.Detail)
	default:
		return fmt.Sprintf("link error kind=%d module %q", e.Kind, e.Module)
	}
}
