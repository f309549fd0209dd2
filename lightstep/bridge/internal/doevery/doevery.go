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

// Package doevery provides primitives for per-key rate-limiting.
package doevery // import "github.com/lightstep/otel-bridge-go/lightstep/bridge/internal/doevery"

import (
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Limiter runs a function at most once per period for each key.
// This is useful for diagnostics that would otherwise repeat on every
// event, e.g. a warning about a bad value for a given metric name.
//
// Limiter is safe for concurrent use.
type Limiter struct {
	period time.Duration
	clock  clockz.Clock

	// mu protects below.
	mu sync.Mutex

	// mostRecent maintains the last time each key was invoked.
	mostRecent map[string]time.Time
}

// New returns a Limiter for period.  A zero period never limits.
func New(period time.Duration, clock clockz.Clock) *Limiter {
	if period < 0 {
		panic(fmt.Sprintf("negative duration unsupported: %v", period))
	}
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Limiter{
		period:     period,
		clock:      clock,
		mostRecent: map[string]time.Time{},
	}
}

// Do invokes f unless f was invoked for key within the period.
func (l *Limiter) Do(key string, f func()) {
	shouldInvoke := func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()

		now := l.clock.Now()
		prev, ok := l.mostRecent[key]

		invoking := !ok || now.Sub(prev) >= l.period
		if invoking {
			l.mostRecent[key] = now
		}
		return invoking
	}()

	if !shouldInvoke {
		return
	}
	f()
}
