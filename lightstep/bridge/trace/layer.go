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

package trace // import "github.com/lightstep/otel-bridge-go/lightstep/bridge/trace"

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lightstep/otel-bridge-go/diag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	levelKey  = attribute.Key("level")
	targetKey = attribute.Key("target")
)

// spanData is the layer's record of one diag span.
//
// Until the span starts, builder holds its description and ctx is the
// parent context.  Once started, builder is nil, span is the live
// span and ctx carries it.
type spanData struct {
	mu sync.Mutex

	builder *spanBuilder
	ctx     context.Context
	span    oteltrace.Span

	// statusSet is true once a status was set by a field or the
	// extension API.
	statusSet bool
	endTime   time.Time
	timings   *timings
}

func (d *spanData) startLocked(tracer oteltrace.Tracer) {
	if d.builder == nil {
		return
	}
	d.ctx, d.span = d.builder.startSpan(d.ctx, tracer)
	d.builder = nil
}

func (d *spanData) updateLocked(u *builderUpdates) {
	if u.status != nil {
		d.statusSet = true
	}
	if d.builder != nil {
		u.apply(d.builder)
		return
	}
	u.applySpan(d.span)
}

func (d *spanData) setStatusLocked(code codes.Code, description string) {
	if d.builder != nil {
		d.builder.status = &status{code: code, description: description}
		return
	}
	d.span.SetStatus(code, description)
}

func (d *spanData) addEventLocked(ev eventData) {
	if d.builder != nil {
		d.builder.events = append(d.builder.events, ev)
		return
	}
	d.span.AddEvent(ev.name, oteltrace.WithTimestamp(ev.time), oteltrace.WithAttributes(ev.attrs...))
}

func (d *spanData) addLinkLocked(link oteltrace.Link) {
	if d.builder != nil {
		d.builder.links = append(d.builder.links, link)
		return
	}
	d.span.AddLink(link)
}

// Layer is a diag.Layer that exports diag spans and events as
// OpenTelemetry spans and span events.
//
// A span is described by a builder until it must start.  It starts
// when it closes, or earlier when a child span, a follows-from link,
// an activated context or Context needs its identity.  Once started,
// further fields apply to the live span.
type Layer struct {
	cfg config

	lock  sync.RWMutex
	spans map[diag.ID]*spanData
}

var (
	_ diag.Layer        = (*Layer)(nil)
	_ diag.ContextLayer = (*Layer)(nil)
)

// NewLayer returns a Layer configured by opts.
func NewLayer(opts ...Option) *Layer {
	return &Layer{
		cfg:   newConfig(opts),
		spans: map[diag.ID]*spanData{},
	}
}

func (l *Layer) lookup(id diag.ID) *spanData {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.spans[id]
}

func (l *Layer) mustLookup(id diag.ID) *spanData {
	d := l.lookup(id)
	if d == nil {
		panic(fmt.Sprintf("trace: span %d not found, this is a bug", id))
	}
	return d
}

// nearest finds the closest span in s's ancestry, s included, that
// this layer has a record for.
func (l *Layer) nearest(s *diag.Span) *spanData {
	for ; s != nil; s = s.Parent() {
		if d := l.lookup(s.ID()); d != nil {
			return d
		}
	}
	return nil
}

// startedContext starts d if needed and returns a context carrying it.
func (l *Layer) startedContext(d *spanData) context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startLocked(l.cfg.tracer)
	return d.ctx
}

func (l *Layer) RegisterCallsite(*diag.Metadata) diag.Interest {
	return diag.InterestAlways
}

func (l *Layer) Enabled(context.Context, *diag.Metadata) bool {
	return true
}

func (l *Layer) extraAttrs() int {
	n := 0
	if l.cfg.location {
		n += 3
	}
	if l.cfg.threads {
		n += 2
	}
	if l.cfg.level {
		n++
	}
	return n
}

func appendLocation(kvs []attribute.KeyValue, meta *diag.Metadata) []attribute.KeyValue {
	if meta.File != "" {
		kvs = append(kvs, semconv.CodeFilepathKey.String(meta.File))
	}
	if meta.Module != "" {
		kvs = append(kvs, semconv.CodeNamespaceKey.String(meta.Module))
	}
	if meta.Line > 0 {
		kvs = append(kvs, semconv.CodeLineNumberKey.Int(meta.Line))
	}
	return kvs
}

func (l *Layer) OnNewSpan(ctx context.Context, attrs *diag.Attributes, id diag.ID) {
	now := l.cfg.clock.Now()
	meta := attrs.Metadata()

	d := &spanData{
		ctx: l.parentContext(ctx, attrs),
	}
	if l.cfg.trackedInactivity {
		d.timings = newTimings(now)
	}

	b := &spanBuilder{
		name:  meta.Name,
		start: now,
		attrs: make([]attribute.KeyValue, 0, len(attrs.Fields())+l.extraAttrs()),
	}
	if l.cfg.location {
		b.attrs = appendLocation(b.attrs, meta)
	}
	if l.cfg.threads {
		if t, ok := diag.ThreadFromContext(ctx); ok {
			b.attrs = append(b.attrs, semconv.ThreadIDKey.Int64(int64(t.ID)))
			if t.Name != "" {
				b.attrs = append(b.attrs, semconv.ThreadNameKey.String(t.Name))
			}
		}
	}
	if l.cfg.level {
		b.attrs = append(b.attrs, levelKey.String(meta.Level.String()))
	}

	var u builderUpdates
	attrs.Record(&spanAttributeVisitor{updates: &u, errors: l.cfg.errors})
	u.apply(b)
	d.statusSet = u.status != nil
	d.builder = b

	l.lock.Lock()
	defer l.lock.Unlock()
	if _, ok := l.spans[id]; ok {
		panic(fmt.Sprintf("trace: span %d created twice, this is a bug", id))
	}
	l.spans[id] = d
}

func (l *Layer) OnRecord(id diag.ID, values diag.Fields) {
	d := l.mustLookup(id)

	var u builderUpdates
	values.Record(&spanAttributeVisitor{updates: &u, errors: l.cfg.errors})
	if u.empty() {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.updateLocked(&u)
}

func (l *Layer) OnFollowsFrom(id, follows diag.ID) {
	d := l.mustLookup(id)

	f := l.lookup(follows)
	if f == nil {
		l.cfg.logger.Debug("follows-from target not found, dropping link",
			zap.Uint64("span", uint64(id)),
			zap.Uint64("follows", uint64(follows)),
		)
		return
	}
	// The follower's lock is not held while the target starts.
	link := oteltrace.LinkFromContext(l.startedContext(f))

	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLinkLocked(link)
}

func (l *Layer) OnEnter(id diag.ID) {
	if !l.cfg.trackedInactivity {
		return
	}
	d := l.mustLookup(id)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.timings.enter(l.cfg.clock.Now())
}

func (l *Layer) OnExit(id diag.ID) {
	d := l.mustLookup(id)
	now := l.cfg.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.endTime = now
	if d.timings != nil {
		d.timings.exit(now)
	}
}

// eventOwner returns the span an event belongs to, or nil when it is
// outside any span this layer saw.
func (l *Layer) eventOwner(ctx context.Context, ev *diag.Event) *spanData {
	if id, ok := ev.Parent(); ok {
		return l.lookup(id)
	}
	if ev.IsContextual() {
		return l.nearest(diag.SpanFromContext(ctx))
	}
	return nil
}

func (l *Layer) OnEvent(ctx context.Context, ev *diag.Event) {
	d := l.eventOwner(ctx, ev)
	if d == nil {
		return
	}
	meta := ev.Metadata()

	e := eventData{
		time: l.cfg.clock.Now(),
		attrs: []attribute.KeyValue{
			levelKey.String(meta.Level.String()),
			targetKey.String(meta.Target),
		},
	}
	var u builderUpdates
	ev.Record(&eventVisitor{event: &e, spanUpdates: &u, errors: l.cfg.errors})

	if e.name == "" {
		e.name = meta.Name
	}
	if l.cfg.location {
		e.attrs = appendLocation(e.attrs, meta)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if meta.Level == diag.LevelError && !d.statusSet {
		d.setStatusLocked(codes.Error, "")
	}
	if !u.empty() {
		d.updateLocked(&u)
	}
	d.addEventLocked(e)
}

func (l *Layer) OnClose(id diag.ID) {
	l.lock.Lock()
	d, ok := l.spans[id]
	delete(l.spans, id)
	l.lock.Unlock()

	if !ok {
		panic(fmt.Sprintf("trace: span %d not found, this is a bug", id))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.startLocked(l.cfg.tracer)

	if d.timings != nil {
		d.span.SetAttributes(d.timings.attributes()...)
	}
	end := d.endTime
	if end.IsZero() {
		end = l.cfg.clock.Now()
	}
	d.span.End(oteltrace.WithTimestamp(end))
}

// ContextForSpan returns ctx carrying the started span for id when
// WithActivateContext is set, and ctx unchanged otherwise.
func (l *Layer) ContextForSpan(ctx context.Context, id diag.ID) context.Context {
	if !l.cfg.activateContext {
		return ctx
	}
	d := l.lookup(id)
	if d == nil {
		return ctx
	}
	return oteltrace.ContextWithSpan(ctx, oteltrace.SpanFromContext(l.startedContext(d)))
}
