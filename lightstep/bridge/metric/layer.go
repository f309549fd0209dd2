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

	"github.com/lightstep/otel-bridge-go/diag"
	"github.com/lightstep/otel-bridge-go/lightstep/bridge/internal/attrlimit"
	"github.com/lightstep/otel-bridge-go/lightstep/bridge/internal/doevery"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Layer is a diag.Layer that records metric fields of events.  Spans
// are ignored.
type Layer struct {
	diag.NopLayer

	cfg         config
	instruments instruments
	warnings    *doevery.Limiter
}

var _ diag.Layer = (*Layer)(nil)

// NewLayer returns a metrics layer.
func NewLayer(opts ...Option) *Layer {
	cfg := newConfig(opts)
	return &Layer{
		cfg:         cfg,
		instruments: newInstruments(cfg.meter()),
		warnings:    doevery.New(cfg.diagnosticPeriod, cfg.clock),
	}
}

// RegisterCallsite is interested only in event callsites that declare
// at least one metric field.
func (l *Layer) RegisterCallsite(meta *diag.Metadata) diag.Interest {
	if l.wants(meta) {
		return diag.InterestAlways
	}
	return diag.InterestNever
}

func (l *Layer) Enabled(_ context.Context, meta *diag.Metadata) bool {
	return l.wants(meta)
}

func (l *Layer) wants(meta *diag.Metadata) bool {
	return meta.IsEvent() && hasMetricField(meta.Fields)
}

func (l *Layer) OnEvent(ctx context.Context, ev *diag.Event) {
	var v metricVisitor
	ev.Record(&v)

	for _, r := range v.rejected {
		l.warnings.Do(r.kind.String()+"."+r.name, func() {
			l.cfg.logger.Warn("metric value dropped",
				zap.String("metric", r.name),
				zap.Stringer("kind", r.kind),
				zap.Any("value", r.value),
				zap.String("reason", r.reason),
			)
		})
	}
	if len(v.updates) == 0 {
		return
	}

	attrs := attrlimit.Truncate(l.cfg.attributeSizeLimit, v.attrs)
	opt := otelmetric.WithAttributeSet(attribute.NewSet(attrs...))

	for _, u := range v.updates {
		if u.float {
			l.instruments.recordFloat64(ctx, u.kind, u.name, u.f64, opt)
		} else {
			l.instruments.recordInt64(ctx, u.kind, u.name, u.i64, opt)
		}
	}
}
