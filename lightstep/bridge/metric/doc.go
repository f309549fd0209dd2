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

/*
Package metric routes numeric event fields to OpenTelemetry
instruments.

A field whose name begins with one of the recognized prefixes is a
metric update for the instrument named by the rest of the field name:

	monotonic_counter.<name>  counter (values must be non-negative)
	counter.<name>            up-down counter
	histogram.<name>          histogram (values must be non-negative)
	gauge.<name>              gauge

Unsigned and signed integers record to int64 instruments and floats
record to float64 instruments.  Every other field of the event
becomes an attribute of each update:

	var requests = diag.NewEventCallsite(diag.LevelInfo,
		"monotonic_counter.http.requests", "route")

	dispatcher.Event(ctx, requests,
		diag.Uint64("monotonic_counter.http.requests", 1),
		diag.String("route", "/index"),
	)

Only events whose callsite declares a prefixed field reach the Layer,
and that decision is made once per callsite.  Instruments are created
on first use and cached for the life of the Layer.
*/
package metric // import "github.com/lightstep/otel-bridge-go/lightstep/bridge/metric"
