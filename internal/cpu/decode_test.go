package cpu

import (
	"errors"
	"testing"
)

type fakeCPU struct {
	leaves  map[uint32]regs
	queried []uint32
}

func (c *fakeCPU) query(leaf, subleaf uint32) regs {
	c.queried = append(c.queried, leaf)
	if subleaf != 0 {
		return regs{}
	}
	return c.leaves[leaf]
}

const (
	allLeaf1ECX = leaf1ECXSSE41 | leaf1ECXAVX | leaf1ECXF16C | leaf1ECXRDRAND
)

func TestDecodeX86DecodesLeaf1(t *testing.T) {
	cpu := &fakeCPU{leaves: map[uint32]regs{
		1: {ecx: leaf1ECXSSE41, edx: leaf1EDXSSE2},
	}}
	f, err := probeX86(cpu.query, 64)
	if err != nil {
		t.Fatalf("probeX86: %v", err)
	}
	if !f.SSE2 || !f.SSE41 {
		t.Fatalf("want SSE2 and SSE4.1, got %+v", f)
	}
	if f.AVX || f.AVX2 || f.F16C || f.RDRAND {
		t.Fatalf("unexpected extensions: %+v", f)
	}
	if len(cpu.queried) != 1 {
		t.Fatalf("leaf 7 queried without AVX/F16C/RDRAND: %v", cpu.queried)
	}
}

func TestDecodeX86SecondQuery(t *testing.T) {
	cases := []struct {
		name     string
		ptrBits  int
		leaf1ECX uint32
		leaf7    regs
		wantAVX2 bool
		wantLeaf bool
	}{
		{"all prerequisites", 64, allLeaf1ECX, regs{ebx: leaf7EBXAVX2}, true, true},
		{"leaf 7 without avx2", 64, allLeaf1ECX, regs{}, false, true},
		{"32-bit pointers", 32, allLeaf1ECX, regs{ebx: leaf7EBXAVX2}, false, false},
		{"no rdrand", 64, allLeaf1ECX &^ leaf1ECXRDRAND, regs{ebx: leaf7EBXAVX2}, false, false},
		{"no f16c", 64, allLeaf1ECX &^ leaf1ECXF16C, regs{ebx: leaf7EBXAVX2}, false, false},
		{"no avx", 64, allLeaf1ECX &^ leaf1ECXAVX, regs{ebx: leaf7EBXAVX2}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cpu := &fakeCPU{leaves: map[uint32]regs{
				1: {ecx: tc.leaf1ECX, edx: leaf1EDXSSE2},
				7: tc.leaf7,
			}}
			f, err := probeX86(cpu.query, tc.ptrBits)
			if err != nil {
				t.Fatalf("probeX86: %v", err)
			}
			if f.AVX2 != tc.wantAVX2 {
				t.Fatalf("AVX2 = %v, want %v", f.AVX2, tc.wantAVX2)
			}
			queried7 := len(cpu.queried) == 2 && cpu.queried[1] == 7
			if queried7 != tc.wantLeaf {
				t.Fatalf("leaf 7 queried = %v, want %v (%v)", queried7, tc.wantLeaf, cpu.queried)
			}
		})
	}
}

func TestDecodeX86ReadsAVX2FromSecondQuery(t *testing.T) {
	// Bit 5 set in leaf 1 ECX/EBX must not leak into AVX2.
	cpu := &fakeCPU{leaves: map[uint32]regs{
		1: {ebx: 1 << 5, ecx: allLeaf1ECX | 1<<5, edx: leaf1EDXSSE2},
		7: {ecx: 1 << 5},
	}}
	f, err := probeX86(cpu.query, 64)
	if err != nil {
		t.Fatalf("probeX86: %v", err)
	}
	if f.AVX2 {
		t.Fatalf("AVX2 decoded from the wrong query or register")
	}
}

func TestDecodeX86RequiresSSE2(t *testing.T) {
	cpu := &fakeCPU{leaves: map[uint32]regs{1: {ecx: allLeaf1ECX}}}
	_, err := probeX86(cpu.query, 64)
	if !errors.Is(err, ErrNoSSE2) {
		t.Fatalf("err = %v, want ErrNoSSE2", err)
	}
	if len(cpu.queried) != 1 {
		t.Fatalf("probing continued after SSE2 failure: %v", cpu.queried)
	}
}

func TestHostCachesAndForces(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	first, err1 := Host()
	second, err2 := Host()
	if first != second || !errors.Is(err2, err1) {
		t.Fatalf("Host not stable: %+v/%v vs %+v/%v", first, err1, second, err2)
	}

	forcedFeatures := Features{SSE2: true, SSE41: true, AVX: true, Arch: "amd64"}
	SetForced(forcedFeatures)
	got, err := Cached.Probe()
	if err != nil {
		t.Fatalf("Cached.Probe: %v", err)
	}
	if got != forcedFeatures {
		t.Fatalf("forced features = %+v, want %+v", got, forcedFeatures)
	}

	Reset()
	again, _ := Host()
	if again != first {
		t.Fatalf("Reset did not restore detection: %+v vs %+v", again, first)
	}
}
