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
	"fmt"
	"path"
	"runtime"
	"strings"
)

// CallsiteKind distinguishes span callsites from event callsites.
type CallsiteKind uint8

const (
	KindSpan CallsiteKind = iota + 1
	KindEvent
)

// Metadata describes a callsite.  It is immutable once the callsite
// is constructed and is shared by every span or event created there.
type Metadata struct {
	Name   string
	Target string
	Level  Level
	Kind   CallsiteKind

	// Location, empty/zero when unknown.
	File   string
	Line   int
	Module string

	// Fields lists the keys the callsite may record.  Layers use
	// them to decide interest once per callsite.
	Fields []string
}

func (m *Metadata) IsSpan() bool  { return m.Kind == KindSpan }
func (m *Metadata) IsEvent() bool { return m.Kind == KindEvent }

// Callsite is a registration point for spans or events.  Callsites are
// normally package-level variables so their interest is computed once.
type Callsite struct {
	meta Metadata
}

func (c *Callsite) Metadata() *Metadata { return &c.meta }

// NewSpanCallsite declares a span callsite at the caller's location.
func NewSpanCallsite(name string, level Level, fields ...string) *Callsite {
	return newCallsite(name, KindSpan, level, fields)
}

// NewEventCallsite declares an event callsite at the caller's
// location.  The event name is derived from the location.
func NewEventCallsite(level Level, fields ...string) *Callsite {
	cs := newCallsite("", KindEvent, level, fields)
	cs.meta.Name = fmt.Sprintf("event %s:%d", cs.meta.File, cs.meta.Line)
	return cs
}

// NewCallsite declares a callsite from explicit metadata, for hosts
// that know their own location data.
func NewCallsite(meta Metadata) *Callsite {
	meta.Fields = append([]string(nil), meta.Fields...)
	return &Callsite{meta: meta}
}

func newCallsite(name string, kind CallsiteKind, level Level, fields []string) *Callsite {
	meta := Metadata{
		Name:   name,
		Level:  level,
		Kind:   kind,
		Fields: append([]string(nil), fields...),
	}
	// Skip 0 is us, 1 is the New*Callsite wrapper, 2 is its caller.
	if pc, file, line, ok := runtime.Caller(2); ok {
		meta.File = file
		meta.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			meta.Module = funcPackage(fn.Name())
		}
	}
	meta.Target = meta.Module
	return &Callsite{meta: meta}
}

// WithTarget overrides the target, which defaults to the declaring
// package path.
func (c *Callsite) WithTarget(target string) *Callsite {
	c.meta.Target = target
	return c
}

// funcPackage strips the function and receiver from a qualified
// function name such as "github.com/a/b.(*T).M".
func funcPackage(qualified string) string {
	dir, last := path.Split(qualified)
	if idx := strings.IndexByte(last, '.'); idx >= 0 {
		last = last[:idx]
	}
	return dir + last
}

// Interest is a layer's standing decision about a callsite.
type Interest uint8

const (
	// InterestNever skips the layer for every span or event of
	// the callsite.
	InterestNever Interest = iota
	// InterestSometimes asks Layer.Enabled on every call.
	InterestSometimes
	// InterestAlways delivers every span or event of the callsite.
	InterestAlways
)
