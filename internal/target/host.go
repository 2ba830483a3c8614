package target

import (
	"fmt"
	"runtime"
	"unsafe"

	"kernc/internal/cpu"
)

// ptrBytes is the native pointer width of the compiler binary.
const ptrBytes = unsafe.Sizeof(uintptr(0))

// ResolveHost describes the machine the compiler binary itself was built
// for. The OS and architecture come from the build, the bit width from the
// native pointer size, and on X86 the SIMD flags come from p. ARM hosts
// never consult p.
func ResolveHost(p cpu.Prober) (Target, error) {
	return resolveHost(runtime.GOOS, runtime.GOARCH, int(ptrBytes)*8, p)
}

func resolveHost(goos, goarch string, bits int, p cpu.Prober) (Target, error) {
	t := Target{
		OS:   osFromGOOS(goos),
		Arch: archFromGOARCH(goarch),
		Bits: bits,
	}
	if t.Arch != X86 {
		return t, nil
	}
	if p == nil {
		p = cpu.Cached
	}

	f, err := p.Probe()
	if err != nil {
		return t, fmt.Errorf("probe host CPU: %w", err)
	}
	if f.SSE41 {
		t.Features |= SSE41
	}
	if f.AVX {
		t.Features |= AVX
	}
	if f.AVX2 {
		t.Features |= AVX2
	}
	return t, nil
}

func osFromGOOS(goos string) OS {
	switch goos {
	case "linux":
		return Linux
	case "windows":
		return Windows
	case "darwin":
		return OSX
	case "android":
		return Android
	case "ios":
		return IOS
	default:
		return OSUnknown
	}
}

// archFromGOARCH maps every non-ARM build to X86, the only other supported
// family.
func archFromGOARCH(goarch string) Arch {
	switch goarch {
	case "arm", "arm64":
		return ARM
	default:
		return X86
	}
}
