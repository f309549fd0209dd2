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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lightstep/otel-bridge-go/diag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Fields with these keys change the span rather than becoming
// attributes.
const (
	SpanNameField              = "otel.name"
	SpanKindField              = "otel.kind"
	SpanStatusCodeField        = "otel.status_code"
	SpanStatusDescriptionField = "otel.status_description"

	// spanStatusMessageField is the older spelling of
	// SpanStatusDescriptionField.
	spanStatusMessageField = "otel.status_message"

	errorField = "error"
)

func parseSpanKind(s string) (oteltrace.SpanKind, bool) {
	switch {
	case strings.EqualFold(s, "server"):
		return oteltrace.SpanKindServer, true
	case strings.EqualFold(s, "client"):
		return oteltrace.SpanKindClient, true
	case strings.EqualFold(s, "producer"):
		return oteltrace.SpanKindProducer, true
	case strings.EqualFold(s, "consumer"):
		return oteltrace.SpanKindConsumer, true
	case strings.EqualFold(s, "internal"):
		return oteltrace.SpanKindInternal, true
	}
	return oteltrace.SpanKindUnspecified, false
}

func parseStatusCode(s string) codes.Code {
	switch {
	case strings.EqualFold(s, "ok"):
		return codes.Ok
	case strings.EqualFold(s, "error"):
		return codes.Error
	}
	return codes.Unset
}

// uint64Attr keeps values that fit as integers and falls back to the
// decimal string otherwise.
func uint64Attr(key string, v uint64) attribute.KeyValue {
	if v <= math.MaxInt64 {
		return attribute.Int64(key, int64(v))
	}
	return attribute.String(key, strconv.FormatUint(v, 10))
}

// errorChain lists the messages of every error wrapped by err, in
// traversal order.  err itself is not included.  Errors joining
// several causes are walked depth first.
func errorChain(err error) []string {
	var chain []string
	var walk func(error)
	walk = func(e error) {
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			if next := u.Unwrap(); next != nil {
				chain = append(chain, next.Error())
				walk(next)
			}
		case interface{ Unwrap() []error }:
			for _, next := range u.Unwrap() {
				if next == nil {
					continue
				}
				chain = append(chain, next.Error())
				walk(next)
			}
		}
	}
	walk(err)
	return chain
}

func exceptionAttrs(msg string, chain []string) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.ExceptionMessageKey.String(msg),
		// The chain of causes stands in for a stack trace.
		semconv.ExceptionStacktraceKey.StringSlice(chain),
	}
}

func chainAttrs(key, msg string, chain []string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(key, msg),
		attribute.StringSlice(key+".chain", chain),
	}
}

// spanAttributeVisitor turns span fields into builder updates.
type spanAttributeVisitor struct {
	updates *builderUpdates
	errors  errorConfig

	// described is set once a status description was visited; a
	// status code in the same pass does not override it.
	described bool
}

var _ diag.Visitor = (*spanAttributeVisitor)(nil)

func (v *spanAttributeVisitor) VisitBool(key string, value bool) {
	v.updates.addAttrs(attribute.Bool(key, value))
}

func (v *spanAttributeVisitor) VisitInt64(key string, value int64) {
	v.updates.addAttrs(attribute.Int64(key, value))
}

func (v *spanAttributeVisitor) VisitUint64(key string, value uint64) {
	v.updates.addAttrs(uint64Attr(key, value))
}

func (v *spanAttributeVisitor) VisitFloat64(key string, value float64) {
	v.updates.addAttrs(attribute.Float64(key, value))
}

func (v *spanAttributeVisitor) VisitString(key string, value string) {
	if !v.special(key, value) {
		v.updates.addAttrs(attribute.String(key, value))
	}
}

func (v *spanAttributeVisitor) VisitDebug(key string, value any) {
	s := fmt.Sprintf("%v", value)
	if !v.special(key, s) {
		v.updates.addAttrs(attribute.String(key, s))
	}
}

func (v *spanAttributeVisitor) VisitError(key string, err error) {
	msg := err.Error()
	chain := errorChain(err)

	if v.errors.fieldsToExceptions {
		v.updates.addAttrs(exceptionAttrs(msg, chain)...)
	}
	if v.errors.fieldChain {
		v.updates.addAttrs(chainAttrs(key, msg, chain)...)
	}
}

func (v *spanAttributeVisitor) special(key, value string) bool {
	switch key {
	case SpanNameField:
		v.updates.name = &value
	case SpanKindField:
		if kind, ok := parseSpanKind(value); ok {
			v.updates.kind = &kind
		}
	case SpanStatusCodeField:
		if !v.described {
			v.updates.setStatus(parseStatusCode(value), "")
		}
	case SpanStatusDescriptionField, spanStatusMessageField:
		v.described = true
		v.updates.setStatus(codes.Error, value)
	default:
		return false
	}
	return true
}

// eventVisitor turns event fields into a trace event.  Effects on the
// owning span accumulate in spanUpdates.
type eventVisitor struct {
	event       *eventData
	spanUpdates *builderUpdates
	errors      errorConfig
}

var _ diag.Visitor = (*eventVisitor)(nil)

func (v *eventVisitor) add(kvs ...attribute.KeyValue) {
	v.event.attrs = append(v.event.attrs, kvs...)
}

func (v *eventVisitor) VisitBool(key string, value bool) {
	if key == diag.MessageKey {
		v.event.name = strconv.FormatBool(value)
		return
	}
	v.add(attribute.Bool(key, value))
}

func (v *eventVisitor) VisitInt64(key string, value int64) {
	if key == diag.MessageKey {
		v.event.name = strconv.FormatInt(value, 10)
		return
	}
	v.add(attribute.Int64(key, value))
}

func (v *eventVisitor) VisitUint64(key string, value uint64) {
	if key == diag.MessageKey {
		v.event.name = strconv.FormatUint(value, 10)
		return
	}
	v.add(uint64Attr(key, value))
}

func (v *eventVisitor) VisitFloat64(key string, value float64) {
	if key == diag.MessageKey {
		v.event.name = strconv.FormatFloat(value, 'g', -1, 64)
		return
	}
	v.add(attribute.Float64(key, value))
}

func (v *eventVisitor) VisitString(key string, value string) {
	v.visitText(key, value)
}

func (v *eventVisitor) VisitDebug(key string, value any) {
	v.visitText(key, fmt.Sprintf("%v", value))
}

func (v *eventVisitor) visitText(key, value string) {
	switch {
	case key == diag.MessageKey:
		v.event.name = value
	case key == errorField && v.event.name == "":
		// An error reported as text, typically an unnamed event
		// emitted when an instrumented call fails.
		if v.errors.eventsToStatus {
			v.spanUpdates.setStatus(codes.Error, value)
		}
		if v.errors.eventsToExceptions {
			v.event.name = semconv.ExceptionEventName
			v.add(semconv.ExceptionMessageKey.String(value))
		} else {
			v.add(attribute.String(errorField, value))
		}
	default:
		v.add(attribute.String(key, value))
	}
}

func (v *eventVisitor) VisitError(key string, err error) {
	msg := err.Error()
	if key == diag.MessageKey {
		v.event.name = msg
		return
	}
	chain := errorChain(err)

	if v.errors.fieldsToExceptions {
		v.add(exceptionAttrs(msg, chain)...)
	}
	if v.errors.recordsToExceptions {
		v.spanUpdates.addAttrs(exceptionAttrs(msg, chain)...)
	}
	if v.errors.fieldChain {
		v.add(chainAttrs(key, msg, chain)...)
	}
}
