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
	"sync"
)

// Span is a handle to a span created by a Dispatcher.  All methods
// are safe on a nil *Span, which is what disabled code paths use.
// After Close, Enter, Exit, Record and FollowsFrom do nothing.
// Close waits for callbacks already in flight, so layers never see a
// callback for a span after its OnClose.
type Span struct {
	id     ID
	parent *Span
	meta   *Metadata
	disp   *Dispatcher

	// seen has bit i set when layer i accepted the span.
	seen uint64

	// mu is held shared by callbacks and exclusively by Close.
	mu     sync.RWMutex
	closed bool
}

func (s *Span) ID() ID {
	if s == nil {
		return 0
	}
	return s.id
}

// Parent returns the span this one was created under, or nil for a
// root.  Layers walk this chain to find the nearest span they saw.
func (s *Span) Parent() *Span {
	if s == nil {
		return nil
	}
	return s.parent
}

func (s *Span) Metadata() *Metadata {
	if s == nil {
		return nil
	}
	return s.meta
}

// acquire takes the span's shared lock and reports whether the span
// is still open.  The caller must call s.mu.RUnlock when it returns
// true.
func (s *Span) acquire() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return false
	}
	return true
}

func (s *Span) sawBy(i int) bool {
	return s.seen&(1<<uint(i)) != 0
}

// Enter marks the span as running and returns a context in which it is
// the current span.  Layers implementing ContextLayer may add their own
// state to the returned context.
func (s *Span) Enter(ctx context.Context) context.Context {
	if !s.acquire() {
		return ctx
	}
	defer s.mu.RUnlock()
	ctx = ContextWithSpan(ctx, s)
	for i, l := range s.disp.layers {
		if !s.sawBy(i) {
			continue
		}
		l.OnEnter(s.id)
		if cl, ok := l.(ContextLayer); ok {
			ctx = cl.ContextForSpan(ctx, s.id)
		}
	}
	return ctx
}

// Exit matches one earlier call to Enter.
func (s *Span) Exit() {
	if !s.acquire() {
		return
	}
	defer s.mu.RUnlock()
	for i, l := range s.disp.layers {
		if s.sawBy(i) {
			l.OnExit(s.id)
		}
	}
}

// Record adds fields to the span after creation.
func (s *Span) Record(fields ...Field) {
	if len(fields) == 0 || !s.acquire() {
		return
	}
	defer s.mu.RUnlock()
	for i, l := range s.disp.layers {
		if s.sawBy(i) {
			l.OnRecord(s.id, fields)
		}
	}
}

// FollowsFrom records a causal link from other to s.
func (s *Span) FollowsFrom(other *Span) {
	if other == nil || !s.acquire() {
		return
	}
	defer s.mu.RUnlock()
	for i, l := range s.disp.layers {
		if s.sawBy(i) {
			l.OnFollowsFrom(s.id, other.id)
		}
	}
}

// Close ends the span.  Only the first call has an effect.
func (s *Span) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for i, l := range s.disp.layers {
		if s.sawBy(i) {
			l.OnClose(s.id)
		}
	}
}

type spanKey struct{}

// ContextWithSpan returns a copy of ctx in which s is current.
func ContextWithSpan(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, s)
}

// SpanFromContext returns the current span of ctx, or nil.
func SpanFromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}
