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

package trace // import "github.com/lightstep/otel-bridge-go/lightstep/bridge/trace"

import (
	"github.com/lightstep/otel-bridge-go/lightstep/bridge"
	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Option configures a Layer.
type Option func(*config)

type config struct {
	tracer oteltrace.Tracer
	clock  clockz.Clock
	logger *zap.Logger

	location          bool
	trackedInactivity bool
	threads           bool
	level             bool
	activateContext   bool

	errors errorConfig
}

// errorConfig controls how error values are mapped to OpenTelemetry
// exception conventions.
type errorConfig struct {
	fieldsToExceptions  bool
	recordsToExceptions bool
	fieldChain          bool
	eventsToStatus      bool
	eventsToExceptions  bool
}

func newConfig(opts []Option) config {
	cfg := config{
		location:          true,
		trackedInactivity: true,
		threads:           true,
		errors: errorConfig{
			fieldsToExceptions:  true,
			recordsToExceptions: true,
			fieldChain:          true,
			eventsToStatus:      true,
			eventsToExceptions:  true,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.GetTracerProvider().Tracer(
			bridge.ScopeName,
			oteltrace.WithInstrumentationVersion(bridge.Version()),
		)
	}
	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	if cfg.logger == nil {
		cfg.logger = zap.L()
	}
	cfg.logger = cfg.logger.Named("trace-bridge")
	return cfg
}

// WithTracer sets the tracer that starts spans.  The default is a
// tracer from the global provider.
func WithTracer(tracer oteltrace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithTracerProvider takes the tracer from a provider.
func WithTracerProvider(provider oteltrace.TracerProvider) Option {
	return func(c *config) {
		c.tracer = provider.Tracer(
			bridge.ScopeName,
			oteltrace.WithInstrumentationVersion(bridge.Version()),
		)
	}
}

// WithLocation adds code.filepath, code.namespace and code.lineno to
// spans and events.  Default true.
func WithLocation(enabled bool) Option {
	return func(c *config) {
		c.location = enabled
	}
}

// WithTrackedInactivity records busy_ns and idle_ns on every span.
// Default true.
func WithTrackedInactivity(enabled bool) Option {
	return func(c *config) {
		c.trackedInactivity = enabled
	}
}

// WithThreads adds thread.id and thread.name to spans created in a
// context carrying a diag.Thread.  Default true.
func WithThreads(enabled bool) Option {
	return func(c *config) {
		c.threads = enabled
	}
}

// WithLevel adds the callsite level to spans.  Default false.
func WithLevel(enabled bool) Option {
	return func(c *config) {
		c.level = enabled
	}
}

// WithErrorFieldsToExceptions adds exception.message and
// exception.stacktrace next to every error field.  Default true.
func WithErrorFieldsToExceptions(enabled bool) Option {
	return func(c *config) {
		c.errors.fieldsToExceptions = enabled
	}
}

// WithErrorRecordsToExceptions copies the exception attributes of an
// error field on an event onto the owning span.  Default true.
func WithErrorRecordsToExceptions(enabled bool) Option {
	return func(c *config) {
		c.errors.recordsToExceptions = enabled
	}
}

// WithErrorFieldChain records the error field itself and its
// <field>.chain of wrapped messages.  Default true.
func WithErrorFieldChain(enabled bool) Option {
	return func(c *config) {
		c.errors.fieldChain = enabled
	}
}

// WithErrorEventsToStatus sets the owning span's status to Error for
// events carrying an "error" field.  Default true.
func WithErrorEventsToStatus(enabled bool) Option {
	return func(c *config) {
		c.errors.eventsToStatus = enabled
	}
}

// WithErrorEventsToExceptions renames events carrying an "error" field
// to "exception".  Default true.
func WithErrorEventsToExceptions(enabled bool) Option {
	return func(c *config) {
		c.errors.eventsToExceptions = enabled
	}
}

// WithActivateContext makes diag.Span.Enter return a context carrying
// the started OpenTelemetry span, so code instrumented directly with
// OpenTelemetry nests under it.  Default false.
func WithActivateContext(enabled bool) Option {
	return func(c *config) {
		c.activateContext = enabled
	}
}

// WithClock sets the clock used for timestamps and busy/idle timing.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger for protocol diagnostics.  The default is
// zap's global logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
