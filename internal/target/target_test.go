package target

import (
	"errors"
	"testing"

	"kernc/internal/cpu"
)

func TestValidate(t *testing.T) {
	for _, bits := range []int{32, 64} {
		if err := New(Linux, X86, bits, 0).Validate(); err != nil {
			t.Fatalf("bits=%d: %v", bits, err)
		}
	}
	for _, bits := range []int{0, 16, 48, 128} {
		err := New(Linux, X86, bits, 0).Validate()
		var ie *InvariantError
		if !errors.As(err, &ie) || ie.Value != bits {
			t.Fatalf("bits=%d: err = %v, want InvariantError", bits, err)
		}
	}
}

func TestAccelerator(t *testing.T) {
	cases := []struct {
		features FeatureSet
		want     Accelerator
		debug    bool
	}{
		{0, AccelNone, false},
		{GPUDebug, AccelNone, false},
		{CUDA, AccelCUDA, false},
		{CUDA | GPUDebug, AccelCUDA, true},
		{OpenCL, AccelOpenCL, false},
		{OpenCL | GPUDebug, AccelOpenCL, true},
		{CUDA | OpenCL, AccelCUDA, false},
	}
	for _, tc := range cases {
		tg := New(Linux, X86, 64, tc.features)
		if got := tg.Accelerator(); got != tc.want {
			t.Fatalf("%s: Accelerator = %s, want %s", tc.features, got, tc.want)
		}
		if tg.GPUDebug() != tc.debug {
			t.Fatalf("%s: GPUDebug = %v, want %v", tc.features, tg.GPUDebug(), tc.debug)
		}
	}
}

func TestTriple(t *testing.T) {
	cases := []struct {
		t    Target
		want string
	}{
		{New(Linux, X86, 64, 0), "x86_64-unknown-linux-gnu"},
		{New(Linux, X86, 32, 0), "i386-unknown-linux-gnu"},
		{New(Android, ARM, 32, 0), "armv7-linux-androideabi"},
		{New(IOS, ARM, 64, 0), "aarch64-apple-ios"},
		{New(OSX, X86, 64, 0), "x86_64-apple-macosx"},
		{New(Windows, X86, 64, 0), "x86_64-pc-windows-msvc"},
		{New(NaCl, X86, 32, 0), "i386-unknown-nacl"},
		{New(OSUnknown, ARM, 32, 0), "armv7-unknown-unknown"},
	}
	for _, tc := range cases {
		if got := tc.t.Triple(); got != tc.want {
			t.Fatalf("%s: Triple = %q, want %q", tc.t, got, tc.want)
		}
	}
	if DataLayoutFor(48) != "" {
		t.Fatalf("unsupported width has a data layout")
	}
	if New(Linux, X86, 64, 0).DataLayout() == New(Linux, X86, 32, 0).DataLayout() {
		t.Fatalf("32- and 64-bit layouts must differ")
	}
}

func TestResolveHostX86(t *testing.T) {
	p := cpu.ProberFunc(func() (cpu.Features, error) {
		return cpu.Features{SSE2: true, SSE41: true, AVX: true, AVX2: true, F16C: true, RDRAND: true}, nil
	})
	got, err := resolveHost("linux", "amd64", 64, p)
	if err != nil {
		t.Fatalf("resolveHost: %v", err)
	}
	want := Target{OS: Linux, Arch: X86, Bits: 64, Features: SSE41 | AVX | AVX2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	p = cpu.ProberFunc(func() (cpu.Features, error) {
		return cpu.Features{SSE2: true}, nil
	})
	got, err = resolveHost("windows", "386", 32, p)
	if err != nil {
		t.Fatalf("resolveHost: %v", err)
	}
	if got != (Target{OS: Windows, Arch: X86, Bits: 32}) {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveHostARMSkipsDetection(t *testing.T) {
	called := false
	p := cpu.ProberFunc(func() (cpu.Features, error) {
		called = true
		return cpu.Features{SSE41: true}, nil
	})
	got, err := resolveHost("darwin", "arm64", 64, p)
	if err != nil {
		t.Fatalf("resolveHost: %v", err)
	}
	if called {
		t.Fatalf("ARM host consulted the prober")
	}
	if got != (Target{OS: OSX, Arch: ARM, Bits: 64}) {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveHostDetectionFailure(t *testing.T) {
	p := cpu.ProberFunc(func() (cpu.Features, error) {
		return cpu.Features{}, cpu.ErrNoSSE2
	})
	_, err := resolveHost("linux", "amd64", 64, p)
	if !errors.Is(err, cpu.ErrNoSSE2) {
		t.Fatalf("err = %v, want ErrNoSSE2", err)
	}
}

func TestHostOSMapping(t *testing.T) {
	cases := map[string]OS{
		"linux": Linux, "windows": Windows, "darwin": OSX, "android": Android,
		"ios": IOS, "freebsd": OSUnknown, "plan9": OSUnknown,
	}
	for goos, want := range cases {
		if got := osFromGOOS(goos); got != want {
			t.Fatalf("osFromGOOS(%q) = %s, want %s", goos, got, want)
		}
	}
	if archFromGOARCH("riscv64") != X86 || archFromGOARCH("arm") != ARM {
		t.Fatalf("unexpected arch mapping")
	}
}
