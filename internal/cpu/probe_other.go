//go:build !((386 || amd64) && gc) && !arm64

package cpu

import "runtime"

func probeNative() (Features, error) {
	return Features{Arch: runtime.GOARCH}, nil
}
