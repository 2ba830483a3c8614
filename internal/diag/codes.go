package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// host hardware preconditions
	HwNoSSE2 Code = 1001

	// operator input
	TgtBadOverride Code = 2001
	TgtNoDevice    Code = 2002
	CfgInvalid     Code = 2101

	// module composition
	LnkMergeFailed Code = 3001
	LnkBadPayload  Code = 3002

	// internal invariants
	InvInvalidTarget Code = 4001
	InvModuleTable   Code = 4002

	// build contents
	PayMissingModule Code = 5001

	// cache and output I/O
	IOCache  Code = 6001
	IOOutput Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:      "unclassified failure",
	HwNoSSE2:         "host CPU lacks a required instruction set",
	TgtBadOverride:   "malformed target string",
	TgtNoDevice:      "target has no device runtime library",
	CfgInvalid:       "invalid configuration",
	LnkMergeFailed:   "runtime modules cannot be merged",
	LnkBadPayload:    "runtime module payload is malformed",
	InvInvalidTarget: "target violates its invariants",
	InvModuleTable:   "runtime module table is inconsistent",
	PayMissingModule: "runtime module not built into this binary",
	IOCache:          "runtime cache unavailable",
	IOOutput:         "cannot write output",
}

// ID is the stable identifier printed in diagnostics, e.g. E2001.
func (c Code) ID() string {
	return fmt.Sprintf("E%04d", int(c))
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
