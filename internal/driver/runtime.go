package driver

import (
	"context"
	"sync"

	"kernc/internal/diag"
	"kernc/internal/link"
	"kernc/internal/target"
)

var (
	defaultOnce    sync.Once
	defaultSession *Session
)

// Default is the session used by ResolveEffectiveTarget and ComposeRuntime:
// native host probing, the embedded payloads, KERNC_TARGET, no cache.
func Default() *Session {
	defaultOnce.Do(func() {
		defaultSession = NewSession(Options{})
	})
	return defaultSession
}

// ResolveEffectiveTarget returns the target kernels should be compiled for.
// Any failure is fatal.
func ResolveEffectiveTarget(ctx context.Context) target.Target {
	return Default().ResolveEffectiveTarget(ctx)
}

// ComposeRuntime returns a freshly composed runtime for t, owned by the
// caller. Any failure is fatal.
func ComposeRuntime(ctx context.Context, t target.Target) *link.Unit {
	return Default().ComposeRuntime(ctx, t)
}

// ResolveEffectiveTarget is EffectiveTarget with failures reported through
// diag.Fatal.
func (s *Session) ResolveEffectiveTarget(ctx context.Context) target.Target {
	t, _, err := s.EffectiveTarget(ctx)
	if err != nil {
		diag.Fatal(err)
		return target.Target{}
	}
	return t
}

// ComposeRuntime is Compose with failures reported through diag.Fatal.
func (s *Session) ComposeRuntime(ctx context.Context, t target.Target) *link.Unit {
	u, _, err := s.Compose(ctx, t)
	if err != nil {
		diag.Fatal(err)
		return nil
	}
	return u
}
