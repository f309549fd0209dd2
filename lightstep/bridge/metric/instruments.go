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
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// instrumentMap caches instruments of one type by name.  Entries are
// never removed.
type instrumentMap[T any] struct {
	create func(name string) (T, error)

	lock   sync.RWMutex
	byName map[string]T
}

func newInstrumentMap[T, O any](create func(string, ...O) (T, error)) *instrumentMap[T] {
	return &instrumentMap[T]{
		create: func(name string) (T, error) {
			return create(name)
		},
	}
}

// updateOrInsert calls update with the instrument for name, creating
// it on first use.  The read lock covers the common case; on a miss
// the write lock is taken and the map re-checked so that concurrent
// callers converge on one instrument.
func (im *instrumentMap[T]) updateOrInsert(name string, update func(T)) {
	im.lock.RLock()
	inst, ok := im.byName[name]
	im.lock.RUnlock()

	if !ok {
		inst, ok = im.insert(name)
		if !ok {
			return
		}
	}
	update(inst)
}

func (im *instrumentMap[T]) insert(name string) (T, bool) {
	im.lock.Lock()
	defer im.lock.Unlock()

	if inst, ok := im.byName[name]; ok {
		return inst, true
	}
	inst, err := im.create(name)
	if err != nil {
		// The API returns a usable no-op instrument alongside most
		// errors.
		otel.Handle(err)
	}
	if any(inst) == nil {
		return inst, false
	}
	if im.byName == nil {
		im.byName = map[string]T{}
	}
	im.byName[name] = inst
	return inst, true
}

func (im *instrumentMap[T]) len() int {
	im.lock.RLock()
	defer im.lock.RUnlock()
	return len(im.byName)
}

// instruments holds one cache per number type and instrument kind.
type instruments struct {
	i64Counters       *instrumentMap[otelmetric.Int64Counter]
	i64UpDownCounters *instrumentMap[otelmetric.Int64UpDownCounter]
	i64Histograms     *instrumentMap[otelmetric.Int64Histogram]
	i64Gauges         *instrumentMap[otelmetric.Int64Gauge]

	f64Counters       *instrumentMap[otelmetric.Float64Counter]
	f64UpDownCounters *instrumentMap[otelmetric.Float64UpDownCounter]
	f64Histograms     *instrumentMap[otelmetric.Float64Histogram]
	f64Gauges         *instrumentMap[otelmetric.Float64Gauge]
}

func newInstruments(meter otelmetric.Meter) instruments {
	return instruments{
		i64Counters:       newInstrumentMap(meter.Int64Counter),
		i64UpDownCounters: newInstrumentMap(meter.Int64UpDownCounter),
		i64Histograms:     newInstrumentMap(meter.Int64Histogram),
		i64Gauges:         newInstrumentMap(meter.Int64Gauge),

		f64Counters:       newInstrumentMap(meter.Float64Counter),
		f64UpDownCounters: newInstrumentMap(meter.Float64UpDownCounter),
		f64Histograms:     newInstrumentMap(meter.Float64Histogram),
		f64Gauges:         newInstrumentMap(meter.Float64Gauge),
	}
}

// recordInt64 updates the int64 instrument of kind.  Sign checks have
// already been applied.
func (ins instruments) recordInt64(ctx context.Context, kind instrumentKind, name string, value int64, opt otelmetric.MeasurementOption) {
	switch kind {
	case monotonicCounterKind:
		ins.i64Counters.updateOrInsert(name, func(c otelmetric.Int64Counter) {
			c.Add(ctx, value, opt)
		})
	case counterKind:
		ins.i64UpDownCounters.updateOrInsert(name, func(c otelmetric.Int64UpDownCounter) {
			c.Add(ctx, value, opt)
		})
	case histogramKind:
		ins.i64Histograms.updateOrInsert(name, func(h otelmetric.Int64Histogram) {
			h.Record(ctx, value, opt)
		})
	case gaugeKind:
		ins.i64Gauges.updateOrInsert(name, func(g otelmetric.Int64Gauge) {
			g.Record(ctx, value, opt)
		})
	}
}

func (ins instruments) recordFloat64(ctx context.Context, kind instrumentKind, name string, value float64, opt otelmetric.MeasurementOption) {
	switch kind {
	case monotonicCounterKind:
		ins.f64Counters.updateOrInsert(name, func(c otelmetric.Float64Counter) {
			c.Add(ctx, value, opt)
		})
	case counterKind:
		ins.f64UpDownCounters.updateOrInsert(name, func(c otelmetric.Float64UpDownCounter) {
			c.Add(ctx, value, opt)
		})
	case histogramKind:
		ins.f64Histograms.updateOrInsert(name, func(h otelmetric.Float64Histogram) {
			h.Record(ctx, value, opt)
		})
	case gaugeKind:
		ins.f64Gauges.updateOrInsert(name, func(g otelmetric.Float64Gauge) {
			g.Record(ctx, value, opt)
		})
	}
}
