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

package launcher

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lightstep/otel-bridge-go/diag"
	"github.com/lightstep/otel-bridge-go/lightstep/bridge"
	bridgetrace "github.com/lightstep/otel-bridge-go/lightstep/bridge/trace"
	"github.com/lightstep/otel-bridge-go/pipelines/test"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/prototext"
)

var (
	launcherSpan  = diag.NewSpanCallsite("launcher-span", diag.LevelInfo)
	verboseSpan   = diag.NewSpanCallsite("verbose-span", diag.LevelDebug)
	launcherEvent = diag.NewEventCallsite(diag.LevelInfo, "message")
)

const (
	expectedAccessTokenLengthError  = "invalid configuration: access token length incorrect. Ensure token is set correctly"
	expectedAccessTokenMissingError = "invalid configuration: access token missing, must be set when reporting to ingest.lightstep.com"
	expectedTracingDisabledMessage  = "tracing is disabled by configuration: no endpoint set"
	expectedMetricsDisabledMessage  = "metrics are disabled by configuration: no endpoint set"
)

type testSuite struct {
	suite.Suite

	*test.Server

	testLogger
	testErrorHandler
}

func (suite *testSuite) SetupSuite() {
	suite.Server = test.NewServer(suite.T())
}

func (suite *testSuite) SetupTest() {
	suite.testLogger.reset()
	suite.Server.Reset()
}

func (suite *testSuite) bothInsecureEndpointOptions() []Option {
	return []Option{
		WithMetricExporterEndpoint(fmt.Sprintf(":%d", suite.Server.InsecureMetricsPort)),
		WithSpanExporterEndpoint(fmt.Sprintf(":%d", suite.Server.InsecureTracePort)),
		WithSpanExporterInsecure(true),
		WithMetricExporterInsecure(true),
	}
}

func (suite *testSuite) insecureTraceEndpointOptions() []Option {
	return []Option{
		WithSpanExporterEndpoint(fmt.Sprintf(":%d", suite.Server.InsecureTracePort)),
		WithSpanExporterInsecure(true),
	}
}

func (suite *testSuite) TearDownTest() {
	unsetEnvironment()
	suite.testLogger.reset()
}

func (suite *testSuite) TearDownSuite() {
	suite.Server.Stop()
}

func TestLauncherSuite(t *testing.T) {
	suite.Run(t, new(testSuite))
}

type testLogger struct {
	lock   sync.Mutex
	output []string
}

func (logger *testLogger) addOutput(output string) {
	logger.lock.Lock()
	defer logger.lock.Unlock()
	logger.output = append(logger.output, output)
}

func (logger *testLogger) Fatalf(format string, v ...interface{}) {
	logger.addOutput(fmt.Sprintf(format, v...))
}

func (logger *testLogger) Debugf(format string, v ...interface{}) {
	logger.addOutput(fmt.Sprintf(format, v...))
}

func (suite *testSuite) getOutput() []string {
	suite.testLogger.lock.Lock()
	defer suite.testLogger.lock.Unlock()
	return suite.testLogger.output
}

func (suite *testSuite) requireLogContains(expected string) {
	suite.T().Helper()

	for _, output := range suite.getOutput() {
		if strings.Contains(output, expected) {
			return
		}
	}

	suite.T().Errorf("\nString unexpectedly not found: %v\nIn: %v", expected, suite.getOutput())
}

func (suite *testSuite) requireLogNotContains(expected string) {
	suite.T().Helper()

	for _, output := range suite.getOutput() {
		if strings.Contains(output, expected) {
			suite.T().Errorf("\nString unexpectedly found: %v\nIn: %v", expected, suite.getOutput())
			return
		}
	}
}

func (logger *testLogger) reset() {
	logger.lock.Lock()
	defer logger.lock.Unlock()
	logger.output = nil
}

type testErrorHandler struct {
	lock sync.Mutex
	errs []error
}

func (t *testErrorHandler) Handle(err error) {
	fmt.Printf("test error handler handled error: %v\n", err)

	t.lock.Lock()
	defer t.lock.Unlock()
	t.errs = append(t.errs, err)
}

func fakeAccessToken() string {
	return strings.Repeat("1", 32)
}

func (suite *testSuite) TestInvalidServiceName() {
	lsOtel := ConfigureOpentelemetry(WithLogger(&suite.testLogger))
	defer lsOtel.Shutdown()

	suite.requireLogContains("invalid configuration: service name missing")
}

func (suite *testSuite) TestAccessTokenValidation() {
	for _, tc := range []struct {
		name     string
		opts     []Option
		expected string
	}{
		{
			name:     "missing for default trace endpoint",
			opts:     []Option{WithMetricExporterEndpoint(""), WithSpanExporterEndpoint(DefaultSpanExporterEndpoint)},
			expected: expectedAccessTokenMissingError,
		},
		{
			name:     "missing for default metric endpoint",
			opts:     []Option{WithSpanExporterEndpoint(""), WithMetricExporterEndpoint(DefaultMetricExporterEndpoint)},
			expected: expectedAccessTokenMissingError,
		},
		{
			name:     "wrong length",
			opts:     append(suite.bothInsecureEndpointOptions(), WithAccessToken("1234")),
			expected: expectedAccessTokenLengthError,
		},
	} {
		suite.Run(tc.name, func() {
			suite.testLogger.reset()
			lsOtel := ConfigureOpentelemetry(
				append(tc.opts,
					WithLogger(&suite.testLogger),
					WithServiceName("test-service"),
				)...,
			)
			defer lsOtel.Shutdown()

			suite.requireLogContains(tc.expected)
		})
	}
}

func (suite *testSuite) TestEndpointsDisabled() {
	lsOtel := ConfigureOpentelemetry(
		WithLogger(&suite.testLogger),
		WithServiceName("test-service"),
		WithSpanExporterEndpoint(""),
		WithMetricExporterEndpoint(""),
	)
	defer lsOtel.Shutdown()

	suite.requireLogNotContains(expectedAccessTokenMissingError)
	suite.requireLogContains(expectedTracingDisabledMessage)
	suite.requireLogContains(expectedMetricsDisabledMessage)
	suite.NotNil(lsOtel.Dispatcher())
}

func (suite *testSuite) TestValidConfig() {
	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
			WithAccessToken(fakeAccessToken()),
			WithErrorHandler(&suite.testErrorHandler),
		)...,
	)
	defer lsOtel.Shutdown()

	if len(suite.getOutput()) > 0 {
		suite.T().Errorf("\nExpected: no logs\ngot: %v", suite.getOutput())
	}
}

func (suite *testSuite) TestInvalidEnvironment() {
	os.Setenv("OTEL_BRIDGE_ATTRIBUTE_SIZE_LIMIT", "lots")

	lsOtel := ConfigureOpentelemetry(
		WithLogger(&suite.testLogger),
		WithServiceName("test-service"),
	)
	defer lsOtel.Shutdown()

	suite.requireLogContains("environment error")
}

func (suite *testSuite) TestInvalidMetricsPushInterval() {
	os.Setenv("OTEL_EXPORTER_OTLP_METRIC_PERIOD", "300million")

	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
		)...,
	)
	defer lsOtel.Shutdown()

	suite.requireLogContains("setup error: invalid metric reporting period")

	suite.testLogger.reset()
	lsOtel = ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
			WithMetricReportingPeriod(-time.Second),
		)...,
	)
	defer lsOtel.Shutdown()

	suite.requireLogContains("setup error: invalid metric reporting period")
}

func (suite *testSuite) TestDebugEnabled() {
	lsOtel := ConfigureOpentelemetry(
		WithLogger(&suite.testLogger),
		WithServiceName("test-service"),
		WithSpanExporterEndpoint(""),
		WithMetricExporterEndpoint(""),
		WithLogLevel("debug"),
		WithBridgeMaxLevel("info"),
	)
	defer lsOtel.Shutdown()

	output := strings.Join(suite.getOutput(), ",")
	assert := suite.Assert()
	assert.Contains(output, "debug logging enabled")
	assert.Contains(output, "test-service")
	assert.Contains(output, `"BridgeMaxLevel": "info"`)
}

func (suite *testSuite) TestDefaultConfig() {
	assert := suite.Assert()
	config := newConfig(
		WithLogger(&suite.testLogger),
		WithErrorHandler(&suite.testErrorHandler),
	)

	attributes := []attribute.KeyValue{
		attribute.String("host.name", host()),
		attribute.String("service.version", "unknown"),
		attribute.String("telemetry.sdk.name", "otel-bridge"),
		attribute.String("telemetry.sdk.language", "go"),
		attribute.String("telemetry.sdk.version", bridge.Version()),
	}

	expected := Config{
		ServiceName:                    "",
		ServiceVersion:                 "unknown",
		SpanExporterEndpoint:           "ingest.lightstep.com:443",
		SpanExporterEndpointInsecure:   false,
		MetricExporterEndpoint:         "ingest.lightstep.com:443",
		MetricExporterEndpointInsecure: false,
		ExporterProtocol:               "grpc",
		MetricReportingPeriod:          "30s",
		MetricsEnabled:                 true,
		MetricsBuiltinsEnabled:         true,
		MetricTemporalityPreference:    "cumulative",
		LogLevel:                       "info",
		LogFormat:                      "zap",
		Propagators:                    []string{"b3"},
		BridgeTraceEnabled:             true,
		BridgeMetricsEnabled:           true,
		BridgeMaxLevel:                 "trace",
		BridgeLocation:                 true,
		BridgeTrackedInactivity:        true,
		BridgeThreads:                  true,
		BridgeErrorExceptions:          true,
		BridgeErrorStatus:              true,
		BridgeAttributeSizeLimit:       8192,
		Resource:                       resource.NewWithAttributes(semconv.SchemaURL, attributes...),
		logger:                         &suite.testLogger,
		errorHandler:                   &suite.testErrorHandler,
	}
	assert.Equal(expected, config)
}

func (suite *testSuite) TestEnvironmentVariables() {
	assert := suite.Assert()

	setEnvironment()

	config := newConfig(
		WithLogger(&suite.testLogger),
		WithErrorHandler(&suite.testErrorHandler),
	)

	attributes := []attribute.KeyValue{
		attribute.String("host.name", host()),
		attribute.String("service.name", "test-service-name"),
		attribute.String("service.version", "test-service-version"),
		attribute.String("telemetry.sdk.name", "otel-bridge"),
		attribute.String("telemetry.sdk.language", "go"),
		attribute.String("telemetry.sdk.version", bridge.Version()),
	}

	expected := Config{
		ServiceName:                    "test-service-name",
		ServiceVersion:                 "test-service-version",
		SpanExporterEndpoint:           "satellite-url",
		SpanExporterEndpointInsecure:   true,
		MetricExporterEndpoint:         "metrics-url",
		MetricExporterEndpointInsecure: true,
		ExporterProtocol:               "http/protobuf",
		MetricReportingPeriod:          "30s",
		MetricTemporalityPreference:    "delta",
		LogLevel:                       "debug",
		LogFormat:                      "std",
		Propagators:                    []string{"b3", "w3c"},
		BridgeTraceEnabled:             true,
		BridgeMetricsEnabled:           false,
		BridgeMaxLevel:                 "warn",
		BridgeLocation:                 false,
		BridgeTrackedInactivity:        true,
		BridgeThreads:                  true,
		BridgeLevel:                    true,
		BridgeActivateContext:          true,
		BridgeErrorExceptions:          true,
		BridgeErrorStatus:              true,
		BridgeAttributeSizeLimit:       256,
		Resource:                       resource.NewWithAttributes(semconv.SchemaURL, attributes...),
		logger:                         &suite.testLogger,
		errorHandler:                   &suite.testErrorHandler,
	}
	assert.Equal(expected, config)

}

func (suite *testSuite) TestConfigurationOverrides() {
	assert := suite.Assert()

	setEnvironment()

	config := newConfig(
		WithServiceName("override-service-name"),
		WithServiceVersion("override-service-version"),
		WithAccessToken("override-access-token"),
		WithSpanExporterEndpoint("override-satellite-url"),
		WithSpanExporterInsecure(false),
		WithMetricExporterEndpoint("override-metrics-url"),
		WithMetricExporterInsecure(false),
		WithMetricTemporalityPreference("stateless"),
		WithLogLevel("info"),
		WithLogger(&suite.testLogger),
		WithErrorHandler(&suite.testErrorHandler),
		WithPropagators([]string{"b3"}),
		WithBridgeTraceEnabled(false),
		WithBridgeMaxLevel("error"),
	)

	attributes := []attribute.KeyValue{
		attribute.String("host.name", host()),
		attribute.String("service.name", "override-service-name"),
		attribute.String("service.version", "override-service-version"),
		attribute.String("telemetry.sdk.name", "otel-bridge"),
		attribute.String("telemetry.sdk.language", "go"),
		attribute.String("telemetry.sdk.version", bridge.Version()),
	}

	expected := Config{
		ServiceName:                    "override-service-name",
		ServiceVersion:                 "override-service-version",
		SpanExporterEndpoint:           "override-satellite-url",
		SpanExporterEndpointInsecure:   false,
		MetricExporterEndpoint:         "override-metrics-url",
		MetricExporterEndpointInsecure: false,
		ExporterProtocol:               "http/protobuf",
		MetricReportingPeriod:          "30s",
		MetricTemporalityPreference:    "stateless",
		Headers:                        map[string]string{"lightstep-access-token": "override-access-token"},
		LogLevel:                       "info",
		LogFormat:                      "std",
		Propagators:                    []string{"b3"},
		BridgeTraceEnabled:             false,
		BridgeMetricsEnabled:           false,
		BridgeMaxLevel:                 "error",
		BridgeLocation:                 false,
		BridgeTrackedInactivity:        true,
		BridgeThreads:                  true,
		BridgeLevel:                    true,
		BridgeActivateContext:          true,
		BridgeErrorExceptions:          true,
		BridgeErrorStatus:              true,
		BridgeAttributeSizeLimit:       256,
		Resource:                       resource.NewWithAttributes(semconv.SchemaURL, attributes...),
		logger:                         &suite.testLogger,
		errorHandler:                   &suite.testErrorHandler,
	}
	assert.Equal(expected, config)
}

func (suite *testSuite) TestConfigurePropagators() {
	assert := suite.Assert()
	mem1, _ := baggage.NewMember("keyone", "foo1")
	mem2, _ := baggage.NewMember("keytwo", "bar1")
	bag, _ := baggage.New(mem1, mem2)

	for _, tc := range []struct {
		propagators []string
		check       func(propagation.MapCarrier)
	}{
		{
			check: func(carrier propagation.MapCarrier) {
				assert.NotEmpty(carrier.Get("x-b3-traceid"))
				assert.Empty(carrier.Get("baggage"))
				assert.Empty(carrier.Get("traceparent"))
			},
		},
		{
			propagators: []string{"ottrace", "baggage", "tracecontext"},
			check: func(carrier propagation.MapCarrier) {
				assert.NotEmpty(carrier.Get("ot-tracer-traceid"))
				assert.Contains(carrier.Get("baggage"), "keytwo=bar1")
				assert.Contains(carrier.Get("baggage"), "keyone=foo1")
				assert.NotEmpty(carrier.Get("traceparent"))
			},
		},
	} {
		opts := append(suite.insecureTraceEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
		)
		if tc.propagators != nil {
			opts = append(opts, WithPropagators(tc.propagators))
		}
		lsOtel := ConfigureOpentelemetry(opts...)

		ctx := baggage.ContextWithBaggage(context.Background(), bag)
		span := diag.Default().Span(ctx, launcherSpan)
		ctx = lsOtel.TraceLayer().Context(span)
		ctx = baggage.ContextWithBaggage(ctx, bag)

		carrier := propagation.MapCarrier{}
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		tc.check(carrier)

		span.Close()
		lsOtel.Shutdown()
	}

	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
			WithPropagators([]string{"invalid"}),
		)...,
	)
	defer lsOtel.Shutdown()

	suite.requireLogContains("setup error: invalid configuration: unsupported propagators. Supported options: b3,baggage,tracecontext,ottrace")
}

func host() string {
	host, _ := os.Hostname()
	return host
}

func (suite *testSuite) TestResourceAttributes() {
	assert := suite.Assert()
	os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "label1=value1,telemetry.sdk.name=other,host.name=")
	config := Config{
		ServiceName:    "test-service",
		ServiceVersion: "test-version",
		ResourceAttributes: map[string]string{
			"attr1":     "val1",
			"host.name": "",
		},
	}
	resource := newResource(&config)
	expected := []attribute.KeyValue{
		attribute.String("attr1", "val1"),
		attribute.String("host.name", host()),
		attribute.String("label1", "value1"),
		attribute.String("service.name", "test-service"),
		attribute.String("service.version", "test-version"),
		attribute.String("telemetry.sdk.language", "go"),
		attribute.String("telemetry.sdk.name", "otel-bridge"),
		attribute.String("telemetry.sdk.version", bridge.Version()),
	}
	assert.Equal(expected, resource.Attributes())
}

func (suite *testSuite) TestServiceNameViaResourceAttributes() {
	os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "service.name=test-service-b")
	lsOtel := ConfigureOpentelemetry(
		WithLogger(&suite.testLogger),
		WithSpanExporterEndpoint(""),
		WithMetricExporterEndpoint(""),
	)
	defer lsOtel.Shutdown()

	suite.requireLogNotContains("invalid configuration: service name missing")
}

func (suite *testSuite) TestBridgeInstalled() {
	require := suite.Require()
	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
			WithBridgeMaxLevel("info"),
			WithBridgeTraceOptions(bridgetrace.WithLogger(zap.NewNop())),
		)...,
	)

	require.NotNil(lsOtel.Dispatcher())
	require.Same(lsOtel.Dispatcher(), diag.Default())
	require.NotNil(lsOtel.TraceLayer())

	ctx := context.Background()
	span := diag.Default().Span(ctx, launcherSpan)
	inner := span.Enter(ctx)
	diag.Default().Event(inner, launcherEvent, diag.Message("launched"))
	verbose := diag.Default().Span(inner, verboseSpan)
	verbose.Close()
	span.Exit()
	span.Close()

	lsOtel.Shutdown()

	exported := suite.exportedTraces()
	require.Contains(exported, "launcher-span")
	require.Contains(exported, "launched")
	require.Contains(exported, "test-service")
	require.NotContains(exported, "verbose-span")
	suite.requireLogNotContains("failed to stop exporter")
}

func (suite *testSuite) TestBridgeDisabled() {
	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
			WithBridgeTraceEnabled(false),
			WithBridgeMetricsEnabled(false),
		)...,
	)
	defer lsOtel.Shutdown()

	suite.Nil(lsOtel.TraceLayer())
	suite.NotNil(lsOtel.Dispatcher())
}

func (suite *testSuite) TestInvalidBridgeMaxLevel() {
	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
			WithBridgeMaxLevel("loud"),
		)...,
	)
	defer lsOtel.Shutdown()

	suite.requireLogContains("configuration error: invalid configuration: bridge max level")
}

func (suite *testSuite) TestInvalidLogSettings() {
	for _, opt := range []Option{WithLogLevel("chatty"), WithLogFormat("xml")} {
		suite.testLogger.reset()
		lsOtel := ConfigureOpentelemetry(
			append(suite.bothInsecureEndpointOptions(),
				WithLogger(&suite.testLogger),
				WithServiceName("test-service"),
				opt,
			)...,
		)
		lsOtel.Shutdown()

		suite.requireLogContains("setup error: invalid log")
	}
}

func (suite *testSuite) TestShutdownCombinesErrors() {
	ls := Launcher{
		config: Config{logger: &suite.testLogger},
		shutdownFuncs: []func() error{
			func() error { return fmt.Errorf("first") },
			func() error { return nil },
			func() error { return fmt.Errorf("second") },
		},
	}
	ls.Shutdown()

	suite.requireLogContains("failed to stop exporter: second; first")
}

func (suite *testSuite) exportedTraces() string {
	suite.T().Helper()
	var all strings.Builder
	for _, req := range suite.Server.TraceRequests() {
		txt, err := prototext.Marshal(req)
		suite.Require().NoError(err)
		all.Write(txt)
	}
	return all.String()
}

func (suite *testSuite) TestBridgeEnvironment() {
	for _, tc := range []struct {
		env      map[string]string
		contains []string
		missing  []string
	}{
		{
			contains: []string{"code.filepath", "thread.id", "busy_ns", "launched"},
		},
		{
			env: map[string]string{
				"OTEL_BRIDGE_LOCATION":           "false",
				"OTEL_BRIDGE_THREADS":            "false",
				"OTEL_BRIDGE_TRACKED_INACTIVITY": "false",
			},
			contains: []string{"launched"},
			missing:  []string{"code.filepath", "thread.id", "busy_ns"},
		},
		{
			env:     map[string]string{"OTEL_BRIDGE_MAX_LEVEL": "warn"},
			missing: []string{"launcher-span", "launched"},
		},
	} {
		suite.Server.Reset()
		for k, v := range tc.env {
			os.Setenv(k, v)
		}

		lsOtel := ConfigureOpentelemetry(
			append(suite.bothInsecureEndpointOptions(),
				WithLogger(&suite.testLogger),
				WithServiceName("test-service"),
				WithMetricsBuiltinsEnabled(false),
			)...,
		)
		ctx := diag.WithThread(context.Background(), "main")
		span := diag.Default().Span(ctx, launcherSpan)
		inner := span.Enter(ctx)
		diag.Default().Event(inner, launcherEvent, diag.Message("launched"))
		span.Exit()
		span.Close()
		lsOtel.Shutdown()

		exported := suite.exportedTraces()
		for _, want := range tc.contains {
			suite.Contains(exported, want, "env %v", tc.env)
		}
		for _, unwanted := range tc.missing {
			suite.NotContains(exported, unwanted, "env %v", tc.env)
		}
		unsetEnvironment()
	}
}

func (suite *testSuite) TestBridgeTraceDisabledByEnvironment() {
	os.Setenv("OTEL_BRIDGE_TRACE_ENABLED", "false")

	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
		)...,
	)
	defer lsOtel.Shutdown()

	suite.Nil(lsOtel.TraceLayer())
}

func (suite *testSuite) TestBridgeMetricsExported() {
	counted := diag.NewEventCallsite(diag.LevelInfo, "monotonic_counter.launches", "route")

	lsOtel := ConfigureOpentelemetry(
		append(suite.bothInsecureEndpointOptions(),
			WithLogger(&suite.testLogger),
			WithServiceName("test-service"),
			WithMetricsBuiltinsEnabled(false),
		)...,
	)
	diag.Default().Event(context.Background(), counted,
		diag.Uint64("monotonic_counter.launches", 2),
		diag.String("route", "/start"),
	)
	lsOtel.Shutdown()

	require := suite.Require()
	require.NotEmpty(suite.Server.MetricsRequests())
	txt, err := prototext.Marshal(suite.Server.MetricsRequests()[0])
	require.NoError(err)
	require.Contains(string(txt), "launches")
	require.Contains(string(txt), "/start")
	require.Contains(string(txt), bridge.ScopeName)
	require.NotContains(string(txt), "go.opentelemetry.io/contrib/instrumentation/runtime")
}

func (suite *testSuite) TestMetricsBuiltins() {
	suite.Equal([]string{"runtime", "host"}, newConfig().metricsBuiltins())

	os.Setenv("LS_METRICS_BUILTINS_ENABLED", "false")
	suite.Nil(newConfig().metricsBuiltins())

	suite.Equal([]string{"runtime", "host"}, newConfig(WithMetricsBuiltinsEnabled(true)).metricsBuiltins())
}

func (suite *testSuite) TestHTTPProtocol() {
	server := test.NewHTTPServer(suite.T())
	defer server.Stop()

	os.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")

	lsOtel := ConfigureOpentelemetry(
		WithLogger(&suite.testLogger),
		WithServiceName("test-service"),
		WithSpanExporterEndpoint(server.Endpoint),
		WithMetricExporterEndpoint(server.Endpoint),
		WithSpanExporterInsecure(true),
		WithMetricExporterInsecure(true),
		WithMetricsBuiltinsEnabled(false),
	)
	span := diag.Default().Span(context.Background(), launcherSpan)
	span.Close()
	lsOtel.Shutdown()

	suite.Require().Len(server.TraceRequests(), 1)
	txt, err := prototext.Marshal(server.TraceRequests()[0])
	suite.Require().NoError(err)
	suite.Contains(string(txt), "launcher-span")
	suite.Empty(suite.Server.TraceRequests())
}

func (suite *testSuite) TestLogFormat() {
	logger := zap.NewNop()
	for format, sink := range map[string]string{
		"":    "zapr",
		"zap": "zapr",
		"std": "stdr",
	} {
		sdkLogger, err := newSDKLogger(Config{LogFormat: format, LogLevel: "info"}, logger)
		suite.Require().NoError(err)
		suite.Contains(fmt.Sprintf("%T", sdkLogger.GetSink()), sink, "format %q", format)
	}

	_, err := newSDKLogger(Config{LogFormat: "xml"}, logger)
	suite.ErrorContains(err, "invalid log format")
}

func setEnvironment() {
	os.Setenv("LS_SERVICE_NAME", "test-service-name")
	os.Setenv("LS_SERVICE_VERSION", "test-service-version")
	os.Setenv("LS_ACCESS_TOKEN", "token")
	os.Setenv("OTEL_EXPORTER_OTLP_SPAN_ENDPOINT", "satellite-url")
	os.Setenv("OTEL_EXPORTER_OTLP_SPAN_INSECURE", "true")
	os.Setenv("OTEL_EXPORTER_OTLP_METRIC_ENDPOINT", "metrics-url")
	os.Setenv("OTEL_EXPORTER_OTLP_METRIC_INSECURE", "true")
	os.Setenv("OTEL_LOG_LEVEL", "debug")
	os.Setenv("OTEL_PROPAGATORS", "b3,w3c")
	os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "service.name=test-service-name-b")
	os.Setenv("OTEL_EXPORTER_OTLP_METRIC_TEMPORALITY_PREFERENCE", "delta")
	os.Setenv("LS_METRICS_ENABLED", "false")
	os.Setenv("LS_METRICS_BUILTINS_ENABLED", "false")
	os.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
	os.Setenv("OTEL_LOG_FORMAT", "std")
	os.Setenv("OTEL_BRIDGE_METRICS_ENABLED", "false")
	os.Setenv("OTEL_BRIDGE_MAX_LEVEL", "warn")
	os.Setenv("OTEL_BRIDGE_LOCATION", "false")
	os.Setenv("OTEL_BRIDGE_LEVEL", "true")
	os.Setenv("OTEL_BRIDGE_ACTIVATE_CONTEXT", "true")
	os.Setenv("OTEL_BRIDGE_ATTRIBUTE_SIZE_LIMIT", "256")
}

func unsetEnvironment() {
	vars := []string{
		"LS_SERVICE_NAME",
		"LS_SERVICE_VERSION",
		"LS_ACCESS_TOKEN",
		"OTEL_EXPORTER_OTLP_SPAN_ENDPOINT",
		"OTEL_EXPORTER_OTLP_SPAN_INSECURE",
		"OTEL_EXPORTER_OTLP_METRIC_ENDPOINT",
		"OTEL_EXPORTER_OTLP_METRIC_INSECURE",
		"OTEL_LOG_LEVEL",
		"OTEL_PROPAGATORS",
		"OTEL_RESOURCE_ATTRIBUTES",
		"OTEL_EXPORTER_OTLP_METRIC_PERIOD",
		"OTEL_EXPORTER_OTLP_METRIC_TEMPORALITY_PREFERENCE",
		"LS_METRICS_ENABLED",
		"LS_METRICS_BUILTINS_ENABLED",
		"OTEL_EXPORTER_OTLP_PROTOCOL",
		"OTEL_LOG_FORMAT",
		"OTEL_BRIDGE_TRACE_ENABLED",
		"OTEL_BRIDGE_METRICS_ENABLED",
		"OTEL_BRIDGE_MAX_LEVEL",
		"OTEL_BRIDGE_LOCATION",
		"OTEL_BRIDGE_TRACKED_INACTIVITY",
		"OTEL_BRIDGE_THREADS",
		"OTEL_BRIDGE_LEVEL",
		"OTEL_BRIDGE_ACTIVATE_CONTEXT",
		"OTEL_BRIDGE_ATTRIBUTE_SIZE_LIMIT",
	}
	for _, envvar := range vars {
		os.Unsetenv(envvar)
	}
}

func TestMain(m *testing.M) {
	unsetEnvironment()
	os.Exit(m.Run())
}
