// Package link merges runtime module payloads into a single code unit.
//
// Payloads are LLVM-IR text restricted to the top-level entities a runtime
// module needs: a module header, target data layout and triple, function
// declarations, global variables and function definitions. Bodies are kept
// verbatim; only names and linkage take part in merging.
package link

import (
	"crypto/sha256"

	"fortio.org/safecast"
)

// Linkage classifies how a definition participates in merging.
type Linkage uint8

const (
	// External definitions are strong: two of them with one name collide.
	External Linkage = iota
	// Weak covers weak, weak_odr, linkonce, linkonce_odr and common. The first
	// definition wins and a strong definition replaces it.
	Weak
	// Local covers private and internal. Such names are not renamed on merge,
	// so they collide like strong ones.
	Local
)

func (l Linkage) String() string {
	switch l {
	case Weak:
		return "weak"
	case Local:
		return "local"
	default:
		return "external"
	}
}

// SymbolKind distinguishes functions from global variables. Both share one
// namespace.
type SymbolKind uint8

const (
	Function SymbolKind = iota
	Global
)

// Symbol is one top-level entity of a unit.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Linkage Linkage
	// Module is the module the symbol came from.
	Module string
	// Text is the entity's source, including the body for definitions.
	Text string
}

func (s *Symbol) strong() bool { return s.Linkage != Weak }

// Unit is a parsed module or the product of linking several of them. The
// caller that receives a Unit owns it; linking a Unit into a Builder moves
// its contents out.
type Unit struct {
	name       string
	layout     string
	layoutFrom string
	triple     string
	modules    []string

	defs     []*Symbol
	defIndex map[string]int

	decls     []*Symbol
	declIndex map[string]int

	consumed bool
}

func newUnit(name string) *Unit {
	return &Unit{
		name:      name,
		defIndex:  make(map[string]int, 32),
		declIndex: make(map[string]int, 32),
	}
}

// Name is the unit's module identifier.
func (u *Unit) Name() string { return u.name }

// DataLayout returns the unit's data layout, or "" when no module set one.
func (u *Unit) DataLayout() string { return u.layout }

// Triple returns the unit's target triple.
func (u *Unit) Triple() string { return u.triple }

// SetTriple sets the unit's target triple.
func (u *Unit) SetTriple(triple string) { u.triple = triple }

// Modules returns the names of the modules merged into u, in link order.
func (u *Unit) Modules() []string {
	out := make([]string, len(u.modules))
	copy(out, u.modules)
	return out
}

// Consumed reports whether u was moved into a Builder.
func (u *Unit) Consumed() bool { return u.consumed }

// Lookup returns the definition of name.
func (u *Unit) Lookup(name string) (Symbol, bool) {
	i, ok := u.defIndex[name]
	if !ok {
		return Symbol{}, false
	}
	return *u.defs[i], true
}

// Defines reports whether u has a definition of name.
func (u *Unit) Defines(name string) bool {
	_, ok := u.defIndex[name]
	return ok
}

// Symbols returns every definition in u, in order of first appearance.
func (u *Unit) Symbols() []Symbol {
	out := make([]Symbol, 0, len(u.defs))
	for _, s := range u.defs {
		out = append(out, *s)
	}
	return out
}

// Unresolved returns the declared names with no definition in u.
func (u *Unit) Unresolved() []string {
	var out []string
	for _, d := range u.decls {
		if !u.Defines(d.Name) {
			out = append(out, d.Name)
		}
	}
	return out
}

// Stats summarises the size of a unit.
type Stats struct {
	Modules    uint32
	Symbols    uint32
	Unresolved uint32
}

// Stats counts modules, definitions and unresolved declarations.
func (u *Unit) Stats() (Stats, error) {
	var st Stats
	var err error
	if st.Modules, err = safecast.Conv[uint32](len(u.modules)); err != nil {
		return Stats{}, err
	}
	if st.Symbols, err = safecast.Conv[uint32](len(u.defs)); err != nil {
		return Stats{}, err
	}
	if st.Unresolved, err = safecast.Conv[uint32](len(u.Unresolved())); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Digest is the SHA-256 of the rendered unit.
func (u *Unit) Digest() [32]byte {
	return sha256.Sum256(u.Render())
}

// define adds a definition, applying the merge rules. A conflict returns the
// symbol already present.
func (u *Unit) define(s *Symbol) (conflict *Symbol) {
	i, ok := u.defIndex[s.Name]
	if !ok {
		u.defIndex[s.Name] = len(u.defs)
		u.defs = append(u.defs, s)
		return nil
	}
	existing := u.defs[i]
	switch {
	case existing.strong() && s.strong():
		return existing
	case !existing.strong() && s.strong():
		u.defs[i] = s
	}
	return nil
}

// conflictWith reports the definition s would collide with, without
// modifying u.
func (u *Unit) conflictWith(s *Symbol) *Symbol {
	i, ok := u.defIndex[s.Name]
	if !ok {
		return nil
	}
	if existing := u.defs[i]; existing.strong() && s.strong() {
		return existing
	}
	return nil
}

func (u *Unit) declare(s *Symbol) {
	if _, ok := u.declIndex[s.Name]; ok {
		return
	}
	u.declIndex[s.Name] = len(u.decls)
	u.decls = append(u.decls, s)
}

func (u *Unit) release() {
	u.consumed = true
	u.layout, u.layoutFrom, u.triple = "", "", ""
	u.modules = nil
	u.defs, u.decls = nil, nil
	u.defIndex = map[string]int{}
	u.declIndex = map[string]int{}
}
