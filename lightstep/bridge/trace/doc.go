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

// Package trace exports diag spans and events as OpenTelemetry spans.
//
// Install a Layer on a diag.Dispatcher:
//
//	layer := trace.NewLayer(trace.WithTracerProvider(provider))
//	disp := diag.NewDispatcher(layer)
//
// Span fields become span attributes, with these exceptions:
//
//   - otel.name renames the span.
//   - otel.kind sets the span kind: server, client, producer,
//     consumer or internal.
//   - otel.status_code sets the status: ok or error.
//   - otel.status_description sets an Error status with a description.
//
// Events inside a span become span events.  The "message" field names
// the event.  An "error" field on an unnamed event becomes an
// exception event and sets the span status to Error.  Error-valued
// fields carry their chain of wrapped errors.
//
// Each span also records busy_ns and idle_ns, the time spent entered
// and not entered.
package trace // import "github.com/lightstep/otel-bridge-go/lightstep/bridge/trace"
