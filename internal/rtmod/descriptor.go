// Package rtmod catalogues the precompiled runtime modules and locates their
// payloads.
package rtmod

import (
	"fmt"
	"strconv"

	"kernc/internal/target"
)

// Kind says how a module's payload is keyed.
type Kind uint8

const (
	// KindBits modules ship one payload per pointer width.
	KindBits Kind = iota + 1
	// KindArch modules ship a single architecture-level payload.
	KindArch
)

func (k Kind) String() string {
	switch k {
	case KindBits:
		return "bits"
	case KindArch:
		return "arch"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Group is the composition step a module belongs to.
type Group uint8

const (
	GroupOS Group = iota + 1
	GroupCommon
	GroupArch
	GroupAccelerator
	// GroupDevice modules are compiled into device code, never into the host
	// runtime.
	GroupDevice
)

func (g Group) String() string {
	switch g {
	case GroupOS:
		return "os"
	case GroupCommon:
		return "common"
	case GroupArch:
		return "arch"
	case GroupAccelerator:
		return "accelerator"
	case GroupDevice:
		return "device"
	default:
		return fmt.Sprintf("group(%d)", uint8(g))
	}
}

// Descriptor names one runtime module and when it applies.
type Descriptor struct {
	Name    string
	Kind    Kind
	Group   Group
	Applies func(target.Target) bool
}

// Stem is the module identity for a bit width: linux_clock_64, x86_ll.
func (d Descriptor) Stem(bits int) string {
	if d.Kind == KindArch {
		return d.Name + "_ll"
	}
	return d.Name + "_" + strconv.Itoa(bits)
}

// FileName is the payload file for a bit width.
func (d Descriptor) FileName(bits int) string {
	return d.Stem(bits) + ".ll"
}

// Key identifies a descriptor within a registry.
func (d Descriptor) Key() string {
	return d.Name + "/" + d.Kind.String()
}

// MissingPayloadError reports a module whose payload was not built into the
// binary.
type MissingPayloadError struct {
	Module string
	File   string
	Err    error
}

func (e *MissingPayloadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("kernc was built without support for runtime module %s (%s)", e.Module, e.File)
}

func (e *MissingPayloadError) Unwrap() error { return e.Err }
