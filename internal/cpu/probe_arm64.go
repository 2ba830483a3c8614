//go:build arm64

package cpu

import (
	"runtime"

	syscpu "golang.org/x/sys/cpu"
)

// probeNative on arm64 issues no identification queries of its own; NEON is
// mandatory on ARMv8 and reported for display only.
func probeNative() (Features, error) {
	return Features{
		NEON: syscpu.ARM64.HasASIMD,
		Arch: runtime.GOARCH,
	}, nil
}
