// Copyright Lightstep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diag // import "github.com/lightstep/otel-bridge-go/diag"

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// maxLayers is bounded by the width of Span.seen.
const maxLayers = 64

// Dispatcher fans span and event notifications out to its layers.  It
// allocates span IDs and caches each layer's interest per callsite.
type Dispatcher struct {
	layers []Layer
	nextID atomic.Uint64

	// interest maps *Callsite to []Interest, one per layer.
	interest sync.Map
}

// NewDispatcher returns a dispatcher for the given layers.  The set of
// layers is fixed for the dispatcher's lifetime.
func NewDispatcher(layers ...Layer) *Dispatcher {
	if len(layers) > maxLayers {
		panic(fmt.Sprintf("diag: at most %d layers are supported, got %d", maxLayers, len(layers)))
	}
	return &Dispatcher{
		layers: append([]Layer(nil), layers...),
	}
}

var global atomic.Pointer[Dispatcher]

// SetDefault installs d as the process-wide dispatcher.
func SetDefault(d *Dispatcher) {
	global.Store(d)
}

// Default returns the process-wide dispatcher.  Until SetDefault is
// called it has no layers.
func Default() *Dispatcher {
	if d := global.Load(); d != nil {
		return d
	}
	d := NewDispatcher()
	if global.CompareAndSwap(nil, d) {
		return d
	}
	return global.Load()
}

func (d *Dispatcher) interests(cs *Callsite) []Interest {
	if v, ok := d.interest.Load(cs); ok {
		return v.([]Interest)
	}
	meta := cs.Metadata()
	in := make([]Interest, len(d.layers))
	for i, l := range d.layers {
		in[i] = l.RegisterCallsite(meta)
	}
	// A racing registration computes the same answer; keep the first.
	v, _ := d.interest.LoadOrStore(cs, in)
	return v.([]Interest)
}

// enabled returns the mask of layers that want this call.
func (d *Dispatcher) enabled(ctx context.Context, cs *Callsite) uint64 {
	var mask uint64
	for i, in := range d.interests(cs) {
		switch in {
		case InterestAlways:
			mask |= 1 << uint(i)
		case InterestSometimes:
			if d.layers[i].Enabled(ctx, cs.Metadata()) {
				mask |= 1 << uint(i)
			}
		}
	}
	return mask
}

// Span creates a span whose parent is the current span of ctx.
func (d *Dispatcher) Span(ctx context.Context, cs *Callsite, fields ...Field) *Span {
	return d.newSpan(ctx, SpanFromContext(ctx), parent{kind: parentContextual}, cs, fields)
}

// ChildSpan creates a span with an explicit parent.  A nil parent
// creates a root span.
func (d *Dispatcher) ChildSpan(ctx context.Context, p *Span, cs *Callsite, fields ...Field) *Span {
	if p == nil {
		return d.RootSpan(ctx, cs, fields...)
	}
	return d.newSpan(ctx, p, parent{kind: parentExplicit, id: p.id}, cs, fields)
}

// RootSpan creates a span with no parent, ignoring the current span
// of ctx.
func (d *Dispatcher) RootSpan(ctx context.Context, cs *Callsite, fields ...Field) *Span {
	return d.newSpan(ctx, nil, parent{kind: parentRoot}, cs, fields)
}

func (d *Dispatcher) newSpan(ctx context.Context, p *Span, decl parent, cs *Callsite, fields Fields) *Span {
	if !cs.Metadata().IsSpan() {
		panic(fmt.Sprintf("diag: callsite %q is not a span callsite", cs.Metadata().Name))
	}
	s := &Span{
		id:     ID(d.nextID.Add(1)),
		parent: p,
		meta:   cs.Metadata(),
		disp:   d,
		seen:   d.enabled(ctx, cs),
	}
	if s.seen == 0 {
		return s
	}
	attrs := &Attributes{parent: decl, meta: s.meta, fields: fields}
	for i, l := range d.layers {
		if s.sawBy(i) {
			l.OnNewSpan(ctx, attrs, s.id)
		}
	}
	return s
}

// Event emits an event inside the current span of ctx.
func (d *Dispatcher) Event(ctx context.Context, cs *Callsite, fields ...Field) {
	d.event(ctx, parent{kind: parentContextual}, cs, fields)
}

// EventIn emits an event inside an explicit span.  A nil span emits a
// root event.
func (d *Dispatcher) EventIn(ctx context.Context, p *Span, cs *Callsite, fields ...Field) {
	if p == nil {
		d.event(ctx, parent{kind: parentRoot}, cs, fields)
		return
	}
	d.event(ctx, parent{kind: parentExplicit, id: p.id}, cs, fields)
}

func (d *Dispatcher) event(ctx context.Context, decl parent, cs *Callsite, fields Fields) {
	if !cs.Metadata().IsEvent() {
		panic(fmt.Sprintf("diag: callsite %q is not an event callsite", cs.Metadata().Name))
	}
	mask := d.enabled(ctx, cs)
	if mask == 0 {
		return
	}
	ev := &Event{parent: decl, meta: cs.Metadata(), fields: fields}
	for i, l := range d.layers {
		if mask&(1<<uint(i)) != 0 {
			l.OnEvent(ctx, ev)
		}
	}
}
