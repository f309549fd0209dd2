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

// Package bridge holds what the diag-to-OpenTelemetry bridges share.
// The bridges themselves live in the trace and metric subpackages.
package bridge // import "github.com/lightstep/otel-bridge-go/lightstep/bridge"

// ScopeName is the instrumentation scope of spans and instruments
// created by the bridges.
const ScopeName = "github.com/lightstep/otel-bridge-go"

// Version is the current release version of the bridges.
func Version() string {
	return "0.1.0"
}
