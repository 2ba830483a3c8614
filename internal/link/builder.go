package link

// Builder accumulates modules into one unit. A Builder is not safe for
// concurrent use; independent compositions use independent builders.
type Builder struct {
	acc      *Unit
	finished bool
}

// NewBuilder starts an empty unit with the given module identifier.
func NewBuilder(name string) *Builder {
	return &Builder{acc: newUnit(name)}
}

// Link moves src into the accumulated unit. On success src is left empty and
// marked consumed. On failure neither the accumulated unit nor src changes.
func (b *Builder) Link(src *Unit) error {
	if src == nil {
		return &Error{Kind: ErrConsumedSource, Module: "<nil>"}
	}
	if b.finished {
		return &Error{Kind: ErrFinished, Module: src.name}
	}
	if src.consumed {
		return &Error{Kind: ErrConsumedSource, Module: src.name}
	}
	if err := b.check(src); err != nil {
		return err
	}

	acc := b.acc
	if acc.layout == "" && src.layout != "" {
		acc.layout, acc.layoutFrom = src.layout, src.layoutFrom
	}
	if acc.triple == "" {
		acc.triple = src.triple
	}
	acc.modules = append(acc.modules, src.modules...)
	for _, s := range src.defs {
		acc.define(s)
	}
	for _, d := range src.decls {
		acc.declare(d)
	}
	src.release()
	return nil
}

func (b *Builder) check(src *Unit) error {
	acc := b.acc
	seen := make(map[string]struct{}, len(acc.modules))
	for _, m := range acc.modules {
		seen[m] = struct{}{}
	}
	for _, m := range src.modules {
		if _, dup := seen[m]; dup {
			return &Error{Kind: ErrDuplicateModule, Module: m}
		}
	}

	if acc.layout != "" && src.layout != "" && acc.layout != src.layout {
		return &Error{
			Kind:   ErrLayoutMismatch,
			Module: src.name,
			Other:  acc.layoutFrom,
			Want:   acc.layout,
			Got:    src.layout,
		}
	}

	for _, s := range src.defs {
		if prev := acc.conflictWith(s); prev != nil {
			return &Error{Kind: ErrDuplicateSymbol, Module: s.Module, Other: prev.Module, Symbol: s.Name}
		}
	}
	return nil
}

// Len reports how many modules have been linked so far.
func (b *Builder) Len() int { return len(b.acc.modules) }

// Finish returns the accumulated unit. The builder accepts no further modules.
func (b *Builder) Finish() *Unit {
	b.finished = true
	return b.acc
}
