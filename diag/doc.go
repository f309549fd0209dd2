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

// Package diag is a small structured-diagnostics framework.  Code
// declares span and event callsites, a Dispatcher creates spans and
// events at those callsites, and Layers observe the resulting
// lifecycle: new span, record, enter, exit, follows-from, event, close.
//
// The bridges under lightstep/bridge are Layers that translate these
// notifications into OpenTelemetry spans and metric updates.
package diag // import "github.com/lightstep/otel-bridge-go/diag"
