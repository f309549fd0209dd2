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

import "context"

// ID identifies a span between its creation and its close.  IDs are
// never zero and never reused by a Dispatcher.
type ID uint64

type parentKind uint8

const (
	parentContextual parentKind = iota
	parentExplicit
	parentRoot
)

// parent is the parent declaration shared by Attributes and Event.
type parent struct {
	kind parentKind
	id   ID
}

// Parent returns the explicitly declared parent, if any.
func (p parent) Parent() (ID, bool) {
	return p.id, p.kind == parentExplicit
}

// IsContextual reports whether the parent is the current span of the
// calling context.
func (p parent) IsContextual() bool { return p.kind == parentContextual }

// IsRoot reports whether the caller asked for no parent at all.
func (p parent) IsRoot() bool { return p.kind == parentRoot }

// Attributes are the creation-time data of a new span.
type Attributes struct {
	parent
	meta   *Metadata
	fields Fields
}

func (a *Attributes) Metadata() *Metadata { return a.meta }
func (a *Attributes) Fields() Fields      { return a.fields }

// Record visits the creation-time fields.
func (a *Attributes) Record(vis Visitor) { a.fields.Record(vis) }

// Event is a single occurrence, optionally inside a span.
type Event struct {
	parent
	meta   *Metadata
	fields Fields
}

func (e *Event) Metadata() *Metadata { return e.meta }
func (e *Event) Fields() Fields      { return e.fields }

// Record visits the event fields.
func (e *Event) Record(vis Visitor) { e.fields.Record(vis) }

//go:generate mockgen -source=layer.go -destination=mock_layer_test.go -package=diag

// Layer observes the lifecycle of spans and events.  Callbacks run
// synchronously on the goroutine that triggered them.  A layer only
// receives span callbacks for spans whose creation it accepted.
type Layer interface {
	// RegisterCallsite is called once per callsite.
	RegisterCallsite(meta *Metadata) Interest
	// Enabled is consulted per call for InterestSometimes callsites.
	Enabled(ctx context.Context, meta *Metadata) bool

	OnNewSpan(ctx context.Context, attrs *Attributes, id ID)
	OnRecord(id ID, values Fields)
	OnFollowsFrom(id, follows ID)
	OnEnter(id ID)
	OnExit(id ID)
	OnEvent(ctx context.Context, event *Event)
	OnClose(id ID)
}

// ContextLayer is implemented by layers that attach their own state to
// the context returned by Span.Enter.
type ContextLayer interface {
	ContextForSpan(ctx context.Context, id ID) context.Context
}

// NopLayer implements Layer with no behavior and InterestAlways.
// Embed it to implement a subset of the callbacks.
type NopLayer struct{}

var _ Layer = NopLayer{}

func (NopLayer) RegisterCallsite(*Metadata) Interest { return InterestAlways }
func (NopLayer) Enabled(context.Context, *Metadata) bool { return true }
func (NopLayer) OnNewSpan(context.Context, *Attributes, ID) {}
func (NopLayer) OnRecord(ID, Fields) {}
func (NopLayer) OnFollowsFrom(ID, ID) {}
func (NopLayer) OnEnter(ID) {}
func (NopLayer) OnExit(ID) {}
func (NopLayer) OnEvent(context.Context, *Event) {}
func (NopLayer) OnClose(ID) {}

// WithMaxLevel filters a layer by level.  Callsites more verbose than
// maxLevel are never shown to the wrapped layer.
func WithMaxLevel(layer Layer, maxLevel Level) Layer {
	lf := levelFiltered{Layer: layer, maxLevel: maxLevel}
	if cl, ok := layer.(ContextLayer); ok {
		return levelFilteredContext{levelFiltered: lf, ctx: cl}
	}
	return lf
}

type levelFiltered struct {
	Layer
	maxLevel Level
}

func (l levelFiltered) RegisterCallsite(meta *Metadata) Interest {
	if meta.Level < l.maxLevel {
		return InterestNever
	}
	return l.Layer.RegisterCallsite(meta)
}

type levelFilteredContext struct {
	levelFiltered
	ctx ContextLayer
}

func (l levelFilteredContext) ContextForSpan(ctx context.Context, id ID) context.Context {
	return l.ctx.ContextForSpan(ctx, id)
}
