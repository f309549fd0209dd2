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

package pipelines

import (
	"context"
	"fmt"
	"strings"
	"time"

	hostMetrics "go.opentelemetry.io/contrib/instrumentation/host"
	runtimeMetrics "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"google.golang.org/grpc/encoding/gzip"
)

// NewMetricsPipeline installs a global meter provider that exports
// OTLP every reporting period.  The returned function
// performs a final export and stops it.
func NewMetricsPipeline(c PipelineConfig) (func() error, error) {
	var err error

	period := 30 * time.Second

	if c.ReportingPeriod != "" {
		period, err = time.ParseDuration(c.ReportingPeriod)
		if err != nil {
			return nil, fmt.Errorf("invalid metric reporting period: %w", err)
		}
		if period <= 0 {
			return nil, fmt.Errorf("invalid metric reporting period: %v", c.ReportingPeriod)
		}
	}

	selector, err := temporalitySelector(c.TemporalityPreference)
	if err != nil {
		return nil, fmt.Errorf("invalid metric view configuration: %w", err)
	}

	metricExporter, err := c.newMetricsExporter(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(c.Resource),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(period)),
		),
	)

	if err = startBuiltins(provider, c.MetricsBuiltinLibraries); err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}

	otel.SetMeterProvider(provider)
	return func() error {
		return provider.Shutdown(context.Background())
	}, nil
}

func (c PipelineConfig) newMetricsExporter(selector sdkmetric.TemporalitySelector) (sdkmetric.Exporter, error) {
	protocol, err := c.protocol()
	if err != nil {
		return nil, err
	}
	if protocol == ProtocolHTTPProtobuf {
		return otlpmetrichttp.New(
			context.Background(),
			append(c.httpMetricOptions(), otlpmetrichttp.WithTemporalitySelector(selector))...,
		)
	}
	return otlpmetricgrpc.New(
		context.Background(),
		c.secureMetricOption(),
		otlpmetricgrpc.WithEndpoint(c.Endpoint),
		otlpmetricgrpc.WithHeaders(c.Headers),
		otlpmetricgrpc.WithCompressor(gzip.Name),
		otlpmetricgrpc.WithTemporalitySelector(selector),
	)
}

func temporalitySelector(pref string) (sdkmetric.TemporalitySelector, error) {
	syncPref := metricdata.CumulativeTemporality
	asyncPref := metricdata.CumulativeTemporality

	switch lower := strings.ToLower(pref); lower {
	case "delta":
		// Delta means exercising the cumulative-to-delta
		// export path.  This is an unusual setting for
		// Lightstep users to choose.
		syncPref = metricdata.DeltaTemporality
		asyncPref = metricdata.DeltaTemporality
	case "stateless":
		// asyncPref set above.
		syncPref = metricdata.DeltaTemporality
	case "", "cumulative":
		// syncPref, asyncPref set above.
	default:
		return nil, fmt.Errorf("invalid temporality preference: %v", pref)
	}
	return func(k sdkmetric.InstrumentKind) metricdata.Temporality {
		switch k {
		case sdkmetric.InstrumentKindUpDownCounter, sdkmetric.InstrumentKindObservableUpDownCounter:
			return metricdata.CumulativeTemporality
		case sdkmetric.InstrumentKindCounter, sdkmetric.InstrumentKindHistogram:
			return syncPref
		default:
			return asyncPref
		}
	}, nil
}

func startBuiltins(provider otelmetric.MeterProvider, libraries []string) error {
	for _, lib := range libraries {
		switch strings.ToLower(strings.TrimSpace(lib)) {
		case "runtime":
			if err := runtimeMetrics.Start(runtimeMetrics.WithMeterProvider(provider)); err != nil {
				return fmt.Errorf("failed to start runtime metrics: %w", err)
			}
		case "host":
			if err := hostMetrics.Start(hostMetrics.WithMeterProvider(provider)); err != nil {
				return fmt.Errorf("failed to start host metrics: %w", err)
			}
		default:
			return fmt.Errorf("unsupported builtin metrics library: %q", lib)
		}
	}
	return nil
}
