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
	"time"

	"github.com/lightstep/otel-bridge-go/diag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// The methods below act on the OpenTelemetry side of a diag span.
// Spans this layer never saw, or that have closed, are ignored.

// SetParent replaces the parent of span with the span carried by
// parent, typically a remote context extracted by a propagator.  It
// must be called before the span starts; the sampler sees the new
// parent when it does.  Later calls are ignored.
func (l *Layer) SetParent(span *diag.Span, parent context.Context) {
	d := l.lookup(span.ID())
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.builder == nil {
		l.cfg.logger.Debug("span already started, parent not changed",
			zap.Uint64("span", uint64(span.ID())),
		)
		return
	}
	d.ctx = oteltrace.ContextWithSpan(context.Background(), oteltrace.SpanFromContext(parent))
}

// AddLink links span to another span context.  Invalid span contexts
// are ignored.
func (l *Layer) AddLink(span *diag.Span, sc oteltrace.SpanContext, attrs ...attribute.KeyValue) {
	if !sc.IsValid() {
		return
	}
	d := l.lookup(span.ID())
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLinkLocked(oteltrace.Link{SpanContext: sc, Attributes: attrs})
}

// Context returns a context carrying the OpenTelemetry span of span,
// starting it if needed.  It returns context.Background() for spans
// this layer does not know.
func (l *Layer) Context(span *diag.Span) context.Context {
	d := l.lookup(span.ID())
	if d == nil {
		return context.Background()
	}
	return l.startedContext(d)
}

// SetAttributes adds attributes to span.
func (l *Layer) SetAttributes(span *diag.Span, kvs ...attribute.KeyValue) {
	d := l.lookup(span.ID())
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u := builderUpdates{attrs: kvs}
	d.updateLocked(&u)
}

// SetStatus sets the status of span.
func (l *Layer) SetStatus(span *diag.Span, code codes.Code, description string) {
	d := l.lookup(span.ID())
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusSet = true
	d.setStatusLocked(code, description)
}

// AddEvent adds an event to span, timestamped now.
func (l *Layer) AddEvent(span *diag.Span, name string, attrs ...attribute.KeyValue) {
	l.AddEventWithTimestamp(span, name, l.cfg.clock.Now(), attrs...)
}

// AddEventWithTimestamp adds an event to span at ts.
func (l *Layer) AddEventWithTimestamp(span *diag.Span, name string, ts time.Time, attrs ...attribute.KeyValue) {
	d := l.lookup(span.ID())
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addEventLocked(eventData{name: name, time: ts, attrs: attrs})
}
