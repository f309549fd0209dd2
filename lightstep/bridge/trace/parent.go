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

	"github.com/lightstep/otel-bridge-go/diag"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// parentContext resolves the context a new span inherits.  Parents
// are started here so that the child's parent identity is final; the
// parent's record keeps the started context for later children.
//
// An explicit parent this layer never saw, because it was filtered or
// has closed, makes the new span a root.
func (l *Layer) parentContext(ctx context.Context, attrs *diag.Attributes) context.Context {
	if id, ok := attrs.Parent(); ok {
		if d := l.lookup(id); d != nil {
			return l.startedContext(d)
		}
		return context.Background()
	}
	if !attrs.IsContextual() {
		return context.Background()
	}

	ambient := oteltrace.SpanFromContext(ctx)
	if l.cfg.activateContext && ambient.SpanContext().IsValid() {
		// The active OpenTelemetry span may be nested below the
		// current diag span.
		return oteltrace.ContextWithSpan(context.Background(), ambient)
	}
	if d := l.nearest(diag.SpanFromContext(ctx)); d != nil {
		return l.startedContext(d)
	}
	if ambient.SpanContext().IsValid() {
		return oteltrace.ContextWithSpan(context.Background(), ambient)
	}
	return context.Background()
}
