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
	"math"
)

// MessageKey is the conventional key holding an event's human-readable
// message.
const MessageKey = "message"

// Kind identifies the primitive carried by a Value.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt64
	KindUint64
	KindFloat64
	KindString
	KindDebug
	KindError
)

// Visitor receives the typed value of each field of a span or
// event, in field order.
type Visitor interface {
	VisitBool(key string, value bool)
	VisitInt64(key string, value int64)
	VisitUint64(key string, value uint64)
	VisitFloat64(key string, value float64)
	VisitString(key string, value string)
	// VisitDebug receives values without a more specific
	// primitive.  Implementations render them with %v.
	VisitDebug(key string, value any)
	VisitError(key string, err error)
}

// Value is a tagged union of the primitives a field may hold.
type Value struct {
	kind Kind
	num  uint64
	str  string
	any  any
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() bool       { return v.num != 0 }
func (v Value) AsInt64() int64     { return int64(v.num) }
func (v Value) AsUint64() uint64   { return v.num }
func (v Value) AsFloat64() float64 { return math.Float64frombits(v.num) }
func (v Value) AsString() string   { return v.str }
func (v Value) AsAny() any         { return v.any }

func (v Value) AsError() error {
	err, _ := v.any.(error)
	return err
}

// Accept passes the value to the matching Visitor method.
func (v Value) Accept(key string, vis Visitor) {
	switch v.kind {
	case KindBool:
		vis.VisitBool(key, v.AsBool())
	case KindInt64:
		vis.VisitInt64(key, v.AsInt64())
	case KindUint64:
		vis.VisitUint64(key, v.AsUint64())
	case KindFloat64:
		vis.VisitFloat64(key, v.AsFloat64())
	case KindString:
		vis.VisitString(key, v.str)
	case KindError:
		vis.VisitError(key, v.AsError())
	default:
		vis.VisitDebug(key, v.any)
	}
}

// String renders the value the way a plain-text formatter would.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprint(v.AsBool())
	case KindInt64:
		return fmt.Sprint(v.AsInt64())
	case KindUint64:
		return fmt.Sprint(v.AsUint64())
	case KindFloat64:
		return fmt.Sprint(v.AsFloat64())
	case KindString:
		return v.str
	}
	return fmt.Sprintf("%v", v.any)
}

// Field is one key/value pair of a span or event.
type Field struct {
	Key   string
	Value Value
}

// Fields is an ordered list of fields.
type Fields []Field

// Record visits every field in order.
func (fs Fields) Record(vis Visitor) {
	for _, f := range fs {
		f.Value.Accept(f.Key, vis)
	}
}

// Keys lists the field keys in order.
func (fs Fields) Keys() []string {
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return keys
}

func Bool(key string, v bool) Field {
	var n uint64
	if v {
		n = 1
	}
	return Field{Key: key, Value: Value{kind: KindBool, num: n}}
}

func Int(key string, v int) Field {
	return Int64(key, int64(v))
}

func Int64(key string, v int64) Field {
	return Field{Key: key, Value: Value{kind: KindInt64, num: uint64(v)}}
}

func Uint64(key string, v uint64) Field {
	return Field{Key: key, Value: Value{kind: KindUint64, num: v}}
}

func Float64(key string, v float64) Field {
	return Field{Key: key, Value: Value{kind: KindFloat64, num: math.Float64bits(v)}}
}

func String(key, v string) Field {
	return Field{Key: key, Value: Value{kind: KindString, str: v}}
}

// Stringer records the result of v.String() as a string field.
func Stringer(key string, v fmt.Stringer) Field {
	return String(key, v.String())
}

// Any records v without a specific primitive; visitors receive it
// through VisitDebug.
func Any(key string, v any) Field {
	return Field{Key: key, Value: Value{kind: KindDebug, any: v}}
}

// Err records an error value, preserving its wrapped chain for
// visitors.  A nil error is recorded as a debug value.
func Err(key string, err error) Field {
	if err == nil {
		return Any(key, nil)
	}
	return Field{Key: key, Value: Value{kind: KindError, any: err}}
}

// Message is shorthand for String(MessageKey, msg).
func Message(msg string) Field {
	return String(MessageKey, msg)
}

// Messagef formats a message field.
func Messagef(format string, args ...any) Field {
	return String(MessageKey, fmt.Sprintf(format, args...))
}
