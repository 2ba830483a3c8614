// Package target describes the machine a kernel is compiled for and resolves
// that description from the host processor or from an operator override.
package target

import (
	"fmt"
	"strings"
)

// OS is the operating system a Target runs on.
type OS uint8

const (
	OSUnknown OS = iota
	Linux
	Windows
	OSX
	Android
	IOS
	NaCl
)

// String returns the override token for the OS ("unknown" has none).
func (o OS) String() string {
	switch o {
	case Linux:
		return "linux"
	case Windows:
		return "windows"
	case OSX:
		return "osx"
	case Android:
		return "android"
	case IOS:
		return "ios"
	case NaCl:
		return "nacl"
	default:
		return "unknown"
	}
}

// Arch is the instruction set family of a Target.
type Arch uint8

const (
	X86 Arch = iota
	ARM
)

func (a Arch) String() string {
	switch a {
	case X86:
		return "x86"
	case ARM:
		return "arm"
	default:
		return fmt.Sprintf("arch(%d)", uint8(a))
	}
}

// FeatureSet is a set of independent capability flags. The SIMD flags only
// mean something for X86 targets; ARM targets have a fixed profile.
type FeatureSet uint64

const (
	SSE41 FeatureSet = 1 << iota
	AVX
	AVX2
	CUDA
	OpenCL
	GPUDebug
)

// featureOrder is the canonical rendering order.
var featureOrder = []struct {
	flag FeatureSet
	name string
}{
	{SSE41, "sse41"},
	{AVX, "avx"},
	{AVX2, "avx2"},
	{CUDA, "cuda"},
	{OpenCL, "opencl"},
	{GPUDebug, "gpu_debug"},
}

// Has reports whether every flag in f is present.
func (s FeatureSet) Has(f FeatureSet) bool { return s&f == f }

// With returns s plus f.
func (s FeatureSet) With(f FeatureSet) FeatureSet { return s | f }

// Without returns s minus f.
func (s FeatureSet) Without(f FeatureSet) FeatureSet { return s &^ f }

// Names returns the override tokens of the flags in s, in canonical order.
func (s FeatureSet) Names() []string {
	names := make([]string, 0, len(featureOrder))
	for _, f := range featureOrder {
		if s.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return names
}

func (s FeatureSet) String() string {
	if s == 0 {
		return "none"
	}
	return strings.Join(s.Names(), ",")
}

// Accelerator is the GPU backend selected for a Target.
type Accelerator uint8

const (
	AccelNone Accelerator = iota
	AccelCUDA
	AccelOpenCL
)

func (a Accelerator) String() string {
	switch a {
	case AccelCUDA:
		return "cuda"
	case AccelOpenCL:
		return "opencl"
	default:
		return "none"
	}
}

// Target is the (OS, architecture, bit width, feature set) tuple a kernel is
// compiled for. It is resolved once per session and then passed by value.
type Target struct {
	OS       OS
	Arch     Arch
	Bits     int
	Features FeatureSet
}

// New builds a Target from its fields.
func New(os OS, arch Arch, bits int, features FeatureSet) Target {
	return Target{OS: os, Arch: arch, Bits: bits, Features: features}
}

// Validate checks the Target invariants.
func (t Target) Validate() error {
	if t.Bits != 32 && t.Bits != 64 {
		return &InvariantError{Field: "bits", Value: t.Bits}
	}
	return nil
}

// Has reports whether every flag in f is set on t.
func (t Target) Has(f FeatureSet) bool { return t.Features.Has(f) }

// Accelerator returns the single GPU backend used for t. CUDA wins when both
// CUDA and OpenCL are set.
func (t Target) Accelerator() Accelerator {
	switch {
	case t.Has(CUDA):
		return AccelCUDA
	case t.Has(OpenCL):
		return AccelOpenCL
	default:
		return AccelNone
	}
}

// GPUDebug reports whether the selected accelerator uses its debug variant.
func (t Target) GPUDebug() bool {
	return t.Accelerator() != AccelNone && t.Has(GPUDebug)
}

// String renders t as an override string. For feature sets produced by the
// override parser the result parses back to t; OSUnknown has no token and is
// omitted.
func (t Target) String() string {
	parts := []string{t.Arch.String(), fmt.Sprintf("%d", t.Bits)}
	if t.OS != OSUnknown {
		parts = append(parts, t.OS.String())
	}
	parts = append(parts, t.Features.Names()...)
	return strings.Join(parts, "-")
}

// Triple returns the LLVM target triple for t.
func (t Target) Triple() string {
	var arch string
	switch {
	case t.Arch == ARM && t.Bits == 64:
		arch = "aarch64"
	case t.Arch == ARM:
		arch = "armv7"
	case t.Bits == 64:
		arch = "x86_64"
	default:
		arch = "i386"
	}

	switch t.OS {
	case Linux:
		if t.Arch == ARM && t.Bits == 32 {
			return arch + "-unknown-linux-gnueabihf"
		}
		return arch + "-unknown-linux-gnu"
	case Windows:
		return arch + "-pc-windows-msvc"
	case OSX:
		return arch + "-apple-macosx"
	case IOS:
		return arch + "-apple-ios"
	case Android:
		if t.Arch == ARM && t.Bits == 32 {
			return arch + "-linux-androideabi"
		}
		return arch + "-linux-android"
	case NaCl:
		return arch + "-unknown-nacl"
	default:
		return arch + "-unknown-unknown"
	}
}

// DataLayout returns the pointer-width data layout shared by t and the
// runtime payloads compiled for its bit width.
func (t Target) DataLayout() string { return DataLayoutFor(t.Bits) }

// DataLayoutFor returns the data layout for a bit width, or "" for an
// unsupported width.
func DataLayoutFor(bits int) string {
	switch bits {
	case 64:
		return "e-p:64:64-i64:64-n8:16:32:64-S128"
	case 32:
		return "e-p:32:32-i64:64-n8:16:32-S128"
	default:
		return ""
	}
}
