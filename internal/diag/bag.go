package diag

import (
	"cmp"
	"slices"
)

// Bag collects up to a fixed number of diagnostics. A diagnostic identical
// in severity, code and message to one already held is dropped, so parallel
// compositions hitting the same cache failure report it once.
type Bag struct {
	items []Diagnostic
	limit int
	seen  map[string]struct{}
}

func NewBag(limit int) *Bag {
	return &Bag{limit: limit, seen: make(map[string]struct{})}
}

// Add keeps d and reports true, or reports false when d is a duplicate or
// the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		return false
	}
	key := d.Severity.String() + d.Code.ID() + d.Message
	if _, dup := b.seen[key]; dup {
		return false
	}
	b.seen[key] = struct{}{}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the held diagnostics. Callers must not modify the slice.
func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

// Sort puts errors first, then orders by code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		if c := cmp.Compare(y.Severity, x.Severity); c != 0 {
			return c
		}
		return cmp.Compare(x.Code, y.Code)
	})
}
