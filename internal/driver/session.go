// Package driver resolves the effective target and composes runtimes for it.
// It is the only layer that turns errors into fatal diagnostics.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"kernc/internal/cache"
	"kernc/internal/compose"
	"kernc/internal/cpu"
	"kernc/internal/diag"
	"kernc/internal/link"
	"kernc/internal/observ"
	"kernc/internal/rtmod"
	"kernc/internal/target"
	"kernc/internal/trace"
)

// Source tells where the effective target came from.
type Source string

const (
	SourceHost   Source = "host"
	SourceEnv    Source = "env"
	SourceFlag   Source = "flag"
	SourceConfig Source = "config"
)

// Options configures a Session. Zero values pick the process defaults.
type Options struct {
	// Override is the --target flag value; it beats every other source.
	Override string
	// ConfigOverride is [target].override, used when neither the flag nor
	// the environment variable is set.
	ConfigOverride string
	// EnvVar names the environment variable (default KERNC_TARGET).
	EnvVar string
	Lookup target.LookupFunc
	Prober cpu.Prober

	Registry *rtmod.Registry
	// Cache is consulted before composing. Nil disables caching.
	Cache *cache.Cache

	Logger   *observ.Logger
	Reporter diag.Reporter
	Timer    *observ.Timer
}

// Session carries the resolved options. It is safe for concurrent use.
type Session struct {
	opts Options
}

// NewSession fills in defaults for unset options.
func NewSession(opts Options) *Session {
	if opts.EnvVar == "" {
		opts.EnvVar = target.EnvVar
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.Prober == nil {
		opts.Prober = cpu.Cached
	}
	if opts.Registry == nil {
		opts.Registry = rtmod.Default()
	}
	if opts.Logger == nil {
		opts.Logger = observ.NoopLogger()
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	return &Session{opts: opts}
}

// Registry returns the payload registry the session composes from.
func (s *Session) Registry() *rtmod.Registry { return s.opts.Registry }

// Host resolves the compiler's own machine.
func (s *Session) Host() (target.Target, error) {
	return target.ResolveHost(s.opts.Prober)
}

// EffectiveTarget applies the highest-precedence override (flag, then
// environment, then config) to the host target.
func (s *Session) EffectiveTarget(ctx context.Context) (target.Target, Source, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "resolve-target", trace.Parent(ctx))
	stop := s.opts.Timer.Start("resolve")
	t, src, err := s.effectiveTarget()
	stop(string(src))
	s.opts.Logger.LogResolve(ctx, t.String(), string(src), err)
	if err != nil {
		span.End("error")
		return target.Target{}, src, err
	}
	span.WithExtra("source", string(src)).WithExtra("target", t.String()).End("")
	return t, src, nil
}

func (s *Session) effectiveTarget() (target.Target, Source, error) {
	host, err := s.Host()
	if err != nil {
		return target.Target{}, SourceHost, err
	}

	if s.opts.Override != "" {
		t, err := target.ResolveOverride(s.opts.Override, host)
		if err != nil {
			return target.Target{}, SourceFlag, fmt.Errorf("--target: %w", err)
		}
		return t, SourceFlag, nil
	}

	t, applied, err := target.FromEnvironment(s.opts.Lookup, s.opts.EnvVar, host)
	if err != nil {
		return target.Target{}, SourceEnv, fmt.Errorf("%s: %w", s.opts.EnvVar, err)
	}
	if applied {
		return t, SourceEnv, nil
	}

	if s.opts.ConfigOverride != "" {
		t, err := target.ResolveOverride(s.opts.ConfigOverride, host)
		if err != nil {
			return target.Target{}, SourceConfig, fmt.Errorf("[target].override: %w", err)
		}
		return t, SourceConfig, nil
	}
	return host, SourceHost, nil
}

// Compose returns the runtime for t, from the cache when an entry exists.
// cached reports whether the cache served it.
func (s *Session) Compose(ctx context.Context, t target.Target) (unit *link.Unit, cached bool, err error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "runtime", trace.Parent(ctx))
	ctx = trace.WithParent(ctx, span)
	log := s.opts.Logger.WithTarget(t.String())

	defer func() {
		n := 0
		if unit != nil {
			n = len(unit.Modules())
		}
		log.LogCompose(ctx, t.String(), n, cached, err)
		switch {
		case err != nil:
			span.End("error")
		case cached:
			span.End("cached")
		default:
			span.End("")
		}
	}()

	if err := t.Validate(); err != nil {
		return nil, false, err
	}

	key, useCache := s.cacheKey(t)
	if useCache {
		stop := s.opts.Timer.Start("cache-get")
		entry, hit := s.opts.Cache.Get(ctx, key)
		if hit {
			u, err := entry.Unit()
			if err == nil {
				stop("hit")
				return u, true, nil
			}
			log.LogCache(ctx, "decode", key.String(), false, err)
			s.opts.Reporter.Report(diag.Warning(diag.IOCache, err))
		}
		stop("miss")
	}

	stop := s.opts.Timer.Start("compose")
	unit, err = compose.Compose(ctx, t, s.opts.Registry)
	stop(t.String())
	if err != nil {
		return nil, false, err
	}

	if useCache {
		s.store(ctx, key, t, unit)
	}
	return unit, false, nil
}

// ComposeDevice returns the device library for t. It is never cached.
func (s *Session) ComposeDevice(ctx context.Context, t target.Target) (*link.Unit, error) {
	defer s.opts.Timer.Start("compose-device")(t.String())
	return compose.ComposeDevice(ctx, t, s.opts.Registry)
}

func (s *Session) cacheKey(t target.Target) (cache.Key, bool) {
	if s.opts.Cache == nil {
		return cache.Key{}, false
	}
	digest, err := s.opts.Registry.Digest()
	if err != nil {
		s.opts.Reporter.Report(diag.Warning(diag.IOCache, fmt.Errorf("runtime cache disabled: %w", err)))
		return cache.Key{}, false
	}
	return cache.KeyFor(t, digest), true
}

func (s *Session) store(ctx context.Context, key cache.Key, t target.Target, u *link.Unit) {
	defer s.opts.Timer.Start("cache-put")("")

	entry, err := cache.EntryFor(t, u)
	if err == nil {
		err = s.opts.Cache.Put(ctx, key, entry)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.opts.Reporter.Report(diag.Warning(diag.IOCache, fmt.Errorf("could not store runtime in cache: %w", err)))
	}
}
