package compose

import (
	"context"
	"errors"
	"strconv"

	"kernc/internal/link"
	"kernc/internal/rtmod"
	"kernc/internal/target"
	"kernc/internal/trace"
)

// UnitName is the module identifier of a composed host runtime.
const UnitName = "kernc_runtime"

// DeviceUnitName is the module identifier of a composed device library.
const DeviceUnitName = "kernc_device"

// ErrNoDeviceModule is returned by ComposeDevice for targets without a
// device code path.
var ErrNoDeviceModule = errors.New("target has no device runtime library (requires cuda)")

// Compose links every module selected for t into a new unit owned by the
// caller. Any failure aborts the whole composition.
func Compose(ctx context.Context, t target.Target, reg *rtmod.Registry) (*link.Unit, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "compose", trace.Parent(ctx))

	sels, err := SelectFrom(t, reg.Descriptors())
	if err != nil {
		span.End("select failed")
		return nil, err
	}

	unit, err := linkAll(tr, span.ID(), UnitName, sels, reg)
	if err != nil {
		span.End("link failed")
		return nil, err
	}
	unit.SetTriple(t.Triple())

	span.WithExtra("target", t.String()).
		WithExtra("modules", strconv.Itoa(len(sels))).
		End("")
	return unit, nil
}

// ComposeDevice links the device-side library for t's GPU code.
func ComposeDevice(ctx context.Context, t target.Target, reg *rtmod.Registry) (*link.Unit, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !t.Has(target.CUDA) {
		return nil, ErrNoDeviceModule
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "compose-device", trace.Parent(ctx))

	var sels []Selection
	for _, d := range reg.Descriptors() {
		if d.Group == rtmod.GroupDevice && d.Applies(t) {
			sels = append(sels, Selection{Descriptor: d, Bits: t.Bits})
		}
	}
	if len(sels) == 0 {
		span.End("none")
		return nil, ErrNoDeviceModule
	}

	unit, err := linkAll(tr, span.ID(), DeviceUnitName, sels, reg)
	if err != nil {
		span.End("link failed")
		return nil, err
	}
	if t.Bits == 64 {
		unit.SetTriple("nvptx64-nvidia-cuda")
	} else {
		unit.SetTriple("nvptx-nvidia-cuda")
	}
	span.End("")
	return unit, nil
}

func linkAll(tr trace.Tracer, parent uint64, name string, sels []Selection, reg *rtmod.Registry) (*link.Unit, error) {
	b := link.NewBuilder(name)
	for _, s := range sels {
		ms := trace.Begin(tr, trace.ScopeModule, "module:"+s.Module(), parent)
		data, err := reg.Payload(s.Descriptor, s.Bits)
		if err != nil {
			ms.End("missing")
			return nil, err
		}
		u, err := link.Parse(s.Module(), data)
		if err != nil {
			ms.End("parse failed")
			return nil, err
		}
		defined := len(u.Symbols())
		if err := b.Link(u); err != nil {
			ms.End("conflict")
			return nil, err
		}
		ms.WithExtra("symbols", strconv.Itoa(defined)).End("")
	}
	return b.Finish(), nil
}
