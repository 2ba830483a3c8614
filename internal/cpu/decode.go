package cpu

// Bit positions in the CPUID result registers.
const (
	leaf1ECXSSE41  = 1 << 19
	leaf1ECXAVX    = 1 << 28
	leaf1ECXF16C   = 1 << 29
	leaf1ECXRDRAND = 1 << 30
	leaf1EDXSSE2   = 1 << 26

	leaf7EBXAVX2 = 1 << 5
)

// regs is the raw output of one identification query.
type regs struct {
	eax, ebx, ecx, edx uint32
}

// queryFunc issues CPUID with the given leaf and sub-leaf.
type queryFunc func(leaf, subleaf uint32) regs

func decodeLeaf1(r regs) Features {
	return Features{
		SSE41:  r.ecx&leaf1ECXSSE41 != 0,
		SSE2:   r.edx&leaf1EDXSSE2 != 0,
		AVX:    r.ecx&leaf1ECXAVX != 0,
		F16C:   r.ecx&leaf1ECXF16C != 0,
		RDRAND: r.ecx&leaf1ECXRDRAND != 0,
	}
}

func decodeLeaf7(r regs) bool {
	return r.ebx&leaf7EBXAVX2 != 0
}

// probeX86 runs the two-step x86 identification sequence. Leaf 7 is only
// queried when the pointer width is 64 and leaf 1 reported AVX, F16C and
// RDRAND; AVX2 is read from the leaf 7 result, never from leaf 1.
func probeX86(query queryFunc, ptrBits int) (Features, error) {
	f := decodeLeaf1(query(1, 0))
	if !f.SSE2 {
		return f, ErrNoSSE2
	}
	if ptrBits == 64 && f.AVX && f.F16C && f.RDRAND {
		f.AVX2 = decodeLeaf7(query(7, 0))
	}
	return f, nil
}
