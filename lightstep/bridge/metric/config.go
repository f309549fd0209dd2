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
	"time"

	"github.com/lightstep/otel-bridge-go/lightstep/bridge"
	"github.com/lightstep/otel-bridge-go/lightstep/bridge/internal/attrlimit"
	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DefaultDiagnosticPeriod is the minimum interval between repeated
// warnings about the same metric.
const DefaultDiagnosticPeriod = 10 * time.Second

// Option configures a Layer.
type Option func(*config)

type config struct {
	provider           otelmetric.MeterProvider
	attributeSizeLimit int
	diagnosticPeriod   time.Duration
	clock              clockz.Clock
	logger             *zap.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		attributeSizeLimit: attrlimit.DefaultSizeLimit,
		diagnosticPeriod:   DefaultDiagnosticPeriod,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetMeterProvider()
	}
	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	if cfg.logger == nil {
		cfg.logger = zap.L()
	}
	cfg.logger = cfg.logger.Named("metric-bridge")
	return cfg
}

func (cfg config) meter() otelmetric.Meter {
	return cfg.provider.Meter(
		bridge.ScopeName,
		otelmetric.WithInstrumentationVersion(bridge.Version()),
	)
}

// WithMeterProvider sets the provider that creates instruments.  The
// default is the global provider.
func WithMeterProvider(provider otelmetric.MeterProvider) Option {
	return func(c *config) {
		c.provider = provider
	}
}

// WithAttributeSizeLimit bounds the length of attribute keys and
// string values.  Zero disables truncation.
func WithAttributeSizeLimit(limit int) Option {
	return func(c *config) {
		c.attributeSizeLimit = limit
	}
}

// WithDiagnosticPeriod sets the minimum interval between warnings
// about the same metric.
func WithDiagnosticPeriod(period time.Duration) Option {
	return func(c *config) {
		c.diagnosticPeriod = period
	}
}

// WithClock sets the clock used to rate-limit diagnostics.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger for dropped-value warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
