// Package runtimeembed provides the precompiled runtime modules linked into
// every composed kernel runtime.
//
// Each module is LLVM-IR text produced by the runtime build step. Modules
// whose code depends on pointer width ship as a pair, <name>_32.ll and
// <name>_64.ll; architecture-level modules ship once as <name>_ll.ll.
package runtimeembed

import (
	"embed"
	"io/fs"
)

// InitModDir is the directory of the payloads inside InitModFS.
const InitModDir = "initmod"

//go:embed initmod/*.ll
var initModFS embed.FS

// InitModFS exposes the embedded runtime module payloads.
func InitModFS() fs.FS {
	return initModFS
}
