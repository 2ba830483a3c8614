package rtmod

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	runtimeembed "kernc/runtime"
)

// Registry resolves descriptors to payload bytes. It is immutable after New
// and safe for concurrent use.
type Registry struct {
	fsys    fs.FS
	dir     string
	entries []Descriptor
	index   map[string]int

	digestOnce sync.Once
	digest     [32]byte
	digestErr  error
}

// New builds a registry over the payloads in dir of fsys.
func New(fsys fs.FS, dir string, entries []Descriptor) (*Registry, error) {
	r := &Registry{
		fsys:    fsys,
		dir:     dir,
		entries: make([]Descriptor, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	copy(r.entries, entries)
	for i, d := range r.entries {
		if d.Name == "" || d.Applies == nil {
			return nil, fmt.Errorf("runtime module #%d: name and predicate are required", i)
		}
		if d.Kind != KindBits && d.Kind != KindArch {
			return nil, fmt.Errorf("runtime module %s: invalid kind %d", d.Name, d.Kind)
		}
		if _, dup := r.index[d.Key()]; dup {
			return nil, fmt.Errorf("runtime module %s registered twice", d.Key())
		}
		r.index[d.Key()] = i
	}
	return r, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry of the built-in table over the payloads
// embedded in the binary.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := New(runtimeembed.InitModFS(), runtimeembed.InitModDir, builtin)
		if err != nil {
			panic(fmt.Sprintf("rtmod: built-in table: %v", err))
		}
		defaultReg = reg
	})
	return defaultReg
}

// Descriptors returns the registered descriptors in table order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup finds a descriptor by name and kind.
func (r *Registry) Lookup(name string, kind Kind) (Descriptor, bool) {
	i, ok := r.index[Descriptor{Name: name, Kind: kind}.Key()]
	if !ok {
		return Descriptor{}, false
	}
	return r.entries[i], true
}

// Payload returns the payload of d for a bit width. The returned slice must
// not be modified.
func (r *Registry) Payload(d Descriptor, bits int) ([]byte, error) {
	file := d.FileName(bits)
	data, err := fs.ReadFile(r.fsys, path.Join(r.dir, file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingPayloadError{Module: d.Stem(bits), File: file, Err: err}
		}
		return nil, fmt.Errorf("read runtime module %s: %w", file, err)
	}
	return data, nil
}

// Has reports whether the payload of d for a bit width is present.
func (r *Registry) Has(d Descriptor, bits int) bool {
	_, err := fs.Stat(r.fsys, path.Join(r.dir, d.FileName(bits)))
	return err == nil
}

// Digest hashes every payload file name and content in the registry's
// directory. It identifies the payload set a composition was built from.
func (r *Registry) Digest() ([32]byte, error) {
	r.digestOnce.Do(func() {
		r.digest, r.digestErr = r.computeDigest()
	})
	return r.digest, r.digestErr
}

func (r *Registry) computeDigest() ([32]byte, error) {
	files, err := fs.Glob(r.fsys, path.Join(r.dir, "*.ll"))
	if err != nil {
		return [32]byte{}, err
	}
	sort.Strings(files)
	h := sha256.New()
	for _, f := range files {
		data, err := fs.ReadFile(r.fsys, f)
		if err != nil {
			return [32]byte{}, fmt.Errorf("digest runtime module %s: %w", f, err)
		}
		h.Write([]byte(path.Base(f)))
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{0})
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
