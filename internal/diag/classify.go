package diag

import (
	"errors"
	"strings"

	"kernc/internal/compose"
	"kernc/internal/config"
	"kernc/internal/cpu"
	"kernc/internal/link"
	"kernc/internal/rtmod"
	"kernc/internal/target"
)

// FromError classifies err into an error diagnostic.
func FromError(err error) Diagnostic {
	d := Diagnostic{Severity: SevError, Code: UnknownCode, Err: err}
	if err == nil {
		return d
	}
	d.Message, d.Notes = splitNotes(err.Error())

	var (
		coded *codedError
		pe    *target.ParseError
		ie    *target.InvariantError
		ci    *compose.InvariantError
		mp    *rtmod.MissingPayloadError
		le    *link.Error
		ce    *config.Error
	)
	switch {
	case errors.As(err, &coded):
		d.Code = coded.code
	case errors.Is(err, cpu.ErrNoSSE2):
		d.Code = HwNoSSE2
	case errors.As(err, &pe):
		d.Code = TgtBadOverride
	case errors.Is(err, compose.ErrNoDeviceModule):
		d.Code = TgtNoDevice
	case errors.As(err, &ie):
		d.Code = InvInvalidTarget
	case errors.As(err, &ci):
		d.Code = InvModuleTable
	case errors.As(err, &mp):
		d.Code = PayMissingModule
	case errors.As(err, &le):
		d.Code = LnkMergeFailed
		if le.Kind == link.ErrSyntax {
			d.Code = LnkBadPayload
		}
	case errors.As(err, &ce):
		d.Code = CfgInvalid
	}
	return d
}

type codedError struct {
	code Code
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// WithCode tags err so FromError classifies it as code.
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// Warning builds a warning diagnostic from err with an explicit code.
func Warning(code Code, err error) Diagnostic {
	msg, notes := splitNotes(err.Error())
	return Diagnostic{Severity: SevWarning, Code: code, Message: msg, Notes: notes, Err: err}
}

// splitNotes keeps the first line as the message and turns the rest into
// notes.
func splitNotes(msg string) (string, []string) {
	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")
	var notes []string
	for _, l := range lines[1:] {
		if l = strings.TrimSpace(l); l != "" {
			notes = append(notes, l)
		}
	}
	return lines[0], notes
}
