//go:build (386 || amd64) && gc

package cpu

import (
	"math/bits"
	"runtime"
)

// cpuid is implemented in cpuid_x86.s.
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

func probeNative() (Features, error) {
	f, err := probeX86(func(leaf, subleaf uint32) regs {
		a, b, c, d := cpuid(leaf, subleaf)
		return regs{eax: a, ebx: b, ecx: c, edx: d}
	}, bits.UintSize)
	f.Arch = runtime.GOARCH
	return f, err
}
