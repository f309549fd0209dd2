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

package metric // import "github.com/lightstep/otel-bridge-go/lightstep/bridge/metric"

import (
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
)

type update struct {
	kind  instrumentKind
	name  string
	float bool
	i64   int64
	f64   float64
}

// rejection is a metric value that could not be recorded.
type rejection struct {
	kind   instrumentKind
	name   string
	value  any
	reason string
}

// metricVisitor splits the fields of one event into metric updates
// and the attributes shared by all of them.
type metricVisitor struct {
	updates  []update
	attrs    []attribute.KeyValue
	rejected []rejection
}

func (v *metricVisitor) reject(kind instrumentKind, name string, value any, reason string) {
	v.rejected = append(v.rejected, rejection{kind: kind, name: name, value: value, reason: reason})
}

func (v *metricVisitor) VisitBool(key string, value bool) {
	v.attrs = append(v.attrs, attribute.Bool(key, value))
}

func (v *metricVisitor) VisitInt64(key string, value int64) {
	kind, name := classify(key)
	switch {
	case kind == notAMetric:
		v.attrs = append(v.attrs, attribute.Int64(key, value))
	case value < 0 && kind.nonNegative():
		v.reject(kind, name, value, "negative value")
	default:
		v.updates = append(v.updates, update{kind: kind, name: name, i64: value})
	}
}

func (v *metricVisitor) VisitUint64(key string, value uint64) {
	kind, name := classify(key)
	switch {
	case value > math.MaxInt64:
		if kind != notAMetric {
			v.reject(kind, name, value, "value exceeds int64 range")
		}
	case kind == notAMetric:
		v.attrs = append(v.attrs, attribute.Int64(key, int64(value)))
	default:
		v.updates = append(v.updates, update{kind: kind, name: name, i64: int64(value)})
	}
}

func (v *metricVisitor) VisitFloat64(key string, value float64) {
	kind, name := classify(key)
	switch {
	case kind == notAMetric:
		v.attrs = append(v.attrs, attribute.Float64(key, value))
	case value < 0 && kind.nonNegative():
		v.reject(kind, name, value, "negative value")
	default:
		v.updates = append(v.updates, update{kind: kind, name: name, float: true, f64: value})
	}
}

func (v *metricVisitor) VisitString(key string, value string) {
	v.attrs = append(v.attrs, attribute.String(key, value))
}

func (v *metricVisitor) VisitDebug(key string, value any) {
	v.attrs = append(v.attrs, attribute.String(key, fmt.Sprintf("%v", value)))
}

func (v *metricVisitor) VisitError(key string, err error) {
	v.attrs = append(v.attrs, attribute.String(key, err.Error()))
}
