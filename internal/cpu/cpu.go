// Package cpu reports which optional instruction set extensions the running
// processor supports.
//
// Probing runs lazily on the first call to Host and the result is cached for
// the rest of the process. Hardware capabilities are immutable for the process
// lifetime, so once the first probe has completed every caller shares the
// cached Features read-only.
//
// Only x86 hosts are actually probed. Other architectures have a fixed
// feature profile that target resolution never consults, so they report an
// empty Features value.
package cpu

import (
	"errors"
	"sync"
)

// ErrNoSSE2 is returned when an x86 host does not report SSE2. The x86
// backend has no code path without it.
var ErrNoSSE2 = errors.New("the x86 backend assumes at least SSE2 support, but the host CPU does not report it")

// Features describes the optional extensions detected on the host.
type Features struct {
	// x86 leaf 1
	SSE2   bool
	SSE41  bool
	AVX    bool
	F16C   bool
	RDRAND bool
	// x86 leaf 7, only queried on 64-bit hosts with AVX, F16C and RDRAND
	AVX2 bool

	// NEON is informational; ARM targets are not feature-gated.
	NEON bool

	// Arch is runtime.GOARCH of the probing binary.
	Arch string
}

// Prober issues the architecture-specific capability queries.
type Prober interface {
	Probe() (Features, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func() (Features, error)

// Probe calls f.
func (f ProberFunc) Probe() (Features, error) { return f() }

// Native queries the processor directly on every call.
var Native Prober = ProberFunc(probeNative)

// Cached returns Host() through the Prober interface.
var Cached Prober = ProberFunc(Host)

var (
	detectOnce sync.Once
	detected   Features
	detectErr  error

	forcedMu sync.RWMutex
	forced   *Features
)

// Host returns the capabilities of the running processor, probing it on the
// first call only.
func Host() (Features, error) {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()
	if f != nil {
		return *f, nil
	}

	detectOnce.Do(func() {
		detected, detectErr = probeNative()
	})
	return detected, detectErr
}

// SetForced overrides hardware detection. Intended for tests.
func SetForced(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()
	forcedCopy := f
	forced = &forcedCopy
}

// Reset clears forced features and the detection cache. Intended for tests;
// it must not race with Host.
func Reset() {
	forcedMu.Lock()
	forced = nil
	forcedMu.Unlock()

	detectOnce = sync.Once{}
	detected = Features{}
	detectErr = nil
}
