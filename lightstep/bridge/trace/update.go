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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type status struct {
	code        codes.Code
	description string
}

// eventData is an event held by a builder until its span starts.
type eventData struct {
	name  string
	time  time.Time
	attrs []attribute.KeyValue
}

// spanBuilder describes a span that has not been started.  Starting
// it hands the description to the tracer, which assigns identity and
// decides sampling.
type spanBuilder struct {
	name   string
	kind   oteltrace.SpanKind
	status *status
	attrs  []attribute.KeyValue
	events []eventData
	links  []oteltrace.Link
	start  time.Time
}

func (b *spanBuilder) startSpan(ctx context.Context, tracer oteltrace.Tracer) (context.Context, oteltrace.Span) {
	opts := []oteltrace.SpanStartOption{
		oteltrace.WithTimestamp(b.start),
		oteltrace.WithAttributes(b.attrs...),
	}
	if b.kind != oteltrace.SpanKindUnspecified {
		opts = append(opts, oteltrace.WithSpanKind(b.kind))
	}
	if len(b.links) != 0 {
		opts = append(opts, oteltrace.WithLinks(b.links...))
	}
	ctx, span := tracer.Start(ctx, b.name, opts...)

	for _, ev := range b.events {
		span.AddEvent(ev.name, oteltrace.WithTimestamp(ev.time), oteltrace.WithAttributes(ev.attrs...))
	}
	if b.status != nil {
		span.SetStatus(b.status.code, b.status.description)
	}
	return ctx, span
}

// builderUpdates is the outcome of one visit over a set of fields.
// It applies to a pending builder or, once the span has started, to
// the live span.
type builderUpdates struct {
	name   *string
	kind   *oteltrace.SpanKind
	status *status
	attrs  []attribute.KeyValue
}

func (u *builderUpdates) empty() bool {
	return u.name == nil && u.kind == nil && u.status == nil && len(u.attrs) == 0
}

func (u *builderUpdates) setStatus(code codes.Code, description string) {
	u.status = &status{code: code, description: description}
}

func (u *builderUpdates) addAttrs(kvs ...attribute.KeyValue) {
	u.attrs = append(u.attrs, kvs...)
}

func (u *builderUpdates) apply(b *spanBuilder) {
	if u.name != nil {
		b.name = *u.name
	}
	if u.kind != nil {
		b.kind = *u.kind
	}
	if u.status != nil {
		st := *u.status
		b.status = &st
	}
	b.attrs = append(b.attrs, u.attrs...)
}

// applySpan updates a live span.  The kind of a started span cannot
// change and is dropped.
func (u *builderUpdates) applySpan(span oteltrace.Span) {
	if u.name != nil {
		span.SetName(*u.name)
	}
	if u.status != nil {
		span.SetStatus(u.status.code, u.status.description)
	}
	if len(u.attrs) != 0 {
		span.SetAttributes(u.attrs...)
	}
}
