// Package cache stores composed runtimes keyed by target and payload set.
//
// The cache is advisory. A read that fails for any reason is a miss, and
// callers fall back to composing.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"kernc/internal/blobstore"
	"kernc/internal/observ"
	"kernc/internal/target"
	"kernc/internal/trace"
)

// Dir is the blob name prefix for cache entries.
const Dir = "runtime/"

const blobExt = ".bin"

// Key identifies a composition.
type Key [32]byte

// KeyFor derives the key from the canonical target string and the registry
// digest.
func KeyFor(t target.Target, registryDigest [32]byte) Key {
	h := sha256.New()
	h.Write([]byte(t.String()))
	h.Write([]byte{0})
	h.Write(registryDigest[:])
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

func (k Key) blobName() string { return Dir + k.String() + blobExt }

// Cache reads and writes entries on a blob store.
type Cache struct {
	store blobstore.Store
	codec Codec
	log   *observ.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithCodec sets the compression for new entries. Reads accept every codec.
func WithCodec(c Codec) Option { return func(cc *Cache) { cc.codec = c } }

// WithLogger sets the logger for cache failures.
func WithLogger(l *observ.Logger) Option { return func(cc *Cache) { cc.log = l } }

// New creates a cache over store, compressing with zstd by default.
func New(store blobstore.Store, opts ...Option) *Cache {
	c := &Cache{store: store, codec: CodecZstd, log: observ.NoopLogger()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Codec returns the codec used for writes.
func (c *Cache) Codec() Codec { return c.codec }

// Get returns the entry for key. ok is false on a miss, including entries
// that cannot be read or decoded.
func (c *Cache) Get(ctx context.Context, key Key) (*Entry, bool) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "cache-get", trace.Parent(ctx))
	e, err := c.load(ctx, key)
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		c.log.LogCache(ctx, "get", key.String(), false, nil)
		span.End("miss")
		return nil, false
	case err != nil:
		c.log.LogCache(ctx, "get", key.String(), false, err)
		span.End("error")
		return nil, false
	}
	c.log.LogCache(ctx, "get", key.String(), true, nil)
	span.End("hit")
	return e, true
}

func (c *Cache) load(ctx context.Context, key Key) (*Entry, error) {
	frame, err := c.store.Get(ctx, key.blobName())
	if err != nil {
		return nil, err
	}
	raw, err := decodeFrame(frame)
	if err != nil {
		return nil, &CorruptError{Reason: err.Error()}
	}
	var e Entry
	if err := msgpack.NewDecoder(bytes.NewReader(raw)).Decode(&e); err != nil {
		return nil, &CorruptError{Reason: err.Error()}
	}
	if err := e.verify(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Put stores e under key.
func (c *Cache) Put(ctx context.Context, key Key, e *Entry) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "cache-put", trace.Parent(ctx))
	err := c.put(ctx, key, e)
	c.log.LogCache(ctx, "put", key.String(), false, err)
	if err != nil {
		span.End("error")
		return err
	}
	span.End("")
	return nil
}

func (c *Cache) put(ctx context.Context, key Key, e *Entry) error {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(e); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	frame, err := encodeFrame(c.codec, buf.Bytes())
	if err != nil {
		return err
	}
	return c.store.Put(ctx, key.blobName(), frame)
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	names, err := c.store.List(ctx, Dir)
	if err != nil {
		return 0, fmt.Errorf("list cache entries: %w", err)
	}
	removed := 0
	for _, name := range names {
		if !strings.HasSuffix(name, blobExt) {
			continue
		}
		if err := c.store.Delete(ctx, name); err != nil {
			return removed, fmt.Errorf("remove cache entry %s: %w", name, err)
		}
		removed++
	}
	c.log.LogCache(ctx, "clear", Dir, false, nil)
	return removed, nil
}
