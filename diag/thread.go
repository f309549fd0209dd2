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

package diag // import "github.com/lightstep/otel-bridge-go/diag"

import (
	"context"
	"sync/atomic"
)

// Thread identifies a logical worker.  Go has no goroutine identity,
// so a worker installs its Thread once in its root context.
type Thread struct {
	ID   uint64
	Name string
}

var threadIDs atomic.Uint64

type threadKey struct{}

// WithThread allocates a new thread identity and stores it in ctx.
func WithThread(ctx context.Context, name string) context.Context {
	t := &Thread{
		ID:   threadIDs.Add(1),
		Name: name,
	}
	return context.WithValue(ctx, threadKey{}, t)
}

// ThreadFromContext returns the thread installed by WithThread.
func ThreadFromContext(ctx context.Context) (Thread, bool) {
	if ctx == nil {
		return Thread{}, false
	}
	t, ok := ctx.Value(threadKey{}).(*Thread)
	if !ok {
		return Thread{}, false
	}
	return *t, true
}
