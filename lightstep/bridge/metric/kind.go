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

import "strings"

// Field name prefixes recognized as metric updates.
const (
	MonotonicCounterPrefix = "monotonic_counter."
	CounterPrefix          = "counter."
	HistogramPrefix        = "histogram."
	GaugePrefix            = "gauge."
)

type instrumentKind uint8

const (
	notAMetric instrumentKind = iota
	monotonicCounterKind
	counterKind
	histogramKind
	gaugeKind
)

func (k instrumentKind) String() string {
	switch k {
	case monotonicCounterKind:
		return "monotonic_counter"
	case counterKind:
		return "counter"
	case histogramKind:
		return "histogram"
	case gaugeKind:
		return "gauge"
	}
	return "none"
}

// nonNegative reports whether the instrument rejects negative values.
func (k instrumentKind) nonNegative() bool {
	return k == monotonicCounterKind || k == histogramKind
}

// Gauges are checked first.
var prefixes = []struct {
	prefix string
	kind   instrumentKind
}{
	{GaugePrefix, gaugeKind},
	{MonotonicCounterPrefix, monotonicCounterKind},
	{CounterPrefix, counterKind},
	{HistogramPrefix, histogramKind},
}

// classify splits a field name into its instrument kind and metric
// name.  Names without a recognized prefix, or with nothing after it,
// are not metrics.
func classify(key string) (instrumentKind, string) {
	for _, p := range prefixes {
		if name, ok := strings.CutPrefix(key, p.prefix); ok && name != "" {
			return p.kind, name
		}
	}
	return notAMetric, ""
}

// hasMetricField reports whether any declared field is a metric.
func hasMetricField(fields []string) bool {
	for _, f := range fields {
		if kind, _ := classify(f); kind != notAMetric {
			return true
		}
	}
	return false
}
