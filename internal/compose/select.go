// Package compose selects the runtime modules a target needs and links them
// into one unit.
package compose

import (
	"fmt"

	"kernc/internal/rtmod"
	"kernc/internal/target"
)

// Selection is one module chosen for a target.
type Selection struct {
	Descriptor rtmod.Descriptor
	Bits       int
}

// Module is the identity of the selected payload, e.g. linux_clock_64.
func (s Selection) Module() string { return s.Descriptor.Stem(s.Bits) }

// InvariantError reports a descriptor table that violates a composition
// invariant for some target.
type InvariantError struct {
	Target target.Target
	Detail string
}

func (e *InvariantError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("runtime module table is inconsistent for %s: %s", e.Target, e.Detail)
}

// Select returns the built-in modules for t, in link order.
func Select(t target.Target) ([]Selection, error) {
	return SelectFrom(t, rtmod.Builtin())
}

// SelectFrom walks a descriptor table once and returns the host modules that
// apply to t. Exactly one accelerator module must apply.
func SelectFrom(t target.Target, table []rtmod.Descriptor) ([]Selection, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	out := make([]Selection, 0, 16)
	seen := make(map[string]struct{}, 16)
	var accel []string
	for _, d := range table {
		if d.Group == rtmod.GroupDevice || !d.Applies(t) {
			continue
		}
		sel := Selection{Descriptor: d, Bits: t.Bits}
		if _, dup := seen[sel.Module()]; dup {
			return nil, &InvariantError{Target: t, Detail: "module " + sel.Module() + " selected twice"}
		}
		seen[sel.Module()] = struct{}{}
		if d.Group == rtmod.GroupAccelerator {
			accel = append(accel, d.Name)
		}
		out = append(out, sel)
	}
	if len(accel) != 1 {
		return nil, &InvariantError{Target: t, Detail: fmt.Sprintf("want one accelerator module, got %v", accel)}
	}
	return out, nil
}
