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
	"time"

	"go.opentelemetry.io/otel/attribute"
)

const (
	busyKey = attribute.Key("busy_ns")
	idleKey = attribute.Key("idle_ns")
)

// timings accumulates the time a span spent entered (busy) and not
// entered (idle).  Nested enters of the same span count once.
type timings struct {
	idle    time.Duration
	busy    time.Duration
	last    time.Time
	entered int
}

func newTimings(now time.Time) *timings {
	return &timings{last: now}
}

func (t *timings) enter(now time.Time) {
	if t.entered == 0 {
		t.idle += now.Sub(t.last)
		t.last = now
	}
	t.entered++
}

func (t *timings) exit(now time.Time) {
	if t.entered == 0 {
		// Unmatched exit.
		return
	}
	t.entered--
	if t.entered == 0 {
		t.busy += now.Sub(t.last)
		t.last = now
	}
}

func (t *timings) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		busyKey.Int64(t.busy.Nanoseconds()),
		idleKey.Int64(t.idle.Nanoseconds()),
	}
}
