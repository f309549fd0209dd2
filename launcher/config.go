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
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/go-logr/zapr"
	"github.com/lightstep/otel-bridge-go/diag"
	"github.com/lightstep/otel-bridge-go/lightstep/bridge"
	bridgemetric "github.com/lightstep/otel-bridge-go/lightstep/bridge/metric"
	bridgetrace "github.com/lightstep/otel-bridge-go/lightstep/bridge/trace"
	"github.com/lightstep/otel-bridge-go/pipelines"
	"github.com/sethvargo/go-envconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const lightstepAccessTokenHeader = "lightstep-access-token"

type Option func(*Config)

// WithAccessToken configures the lightstep access token
func WithAccessToken(accessToken string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[lightstepAccessTokenHeader] = accessToken
	}
}

// WithMetricExporterEndpoint configures the endpoint for sending metrics via OTLP
func WithMetricExporterEndpoint(url string) Option {
	return func(c *Config) {
		c.MetricExporterEndpoint = url
	}
}

// WithSpanExporterEndpoint configures the endpoint for sending traces via OTLP
func WithSpanExporterEndpoint(url string) Option {
	return func(c *Config) {
		c.SpanExporterEndpoint = url
	}
}

// WithServiceName configures a "service.name" resource label
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithServiceVersion configures a "service.version" resource label
func WithServiceVersion(version string) Option {
	return func(c *Config) {
		c.ServiceVersion = version
	}
}

// WithHeaders configures OTLP/gRPC connection headers
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range headers {
			c.Headers[k] = v
		}
	}
}

// WithLogLevel configures the logging level for OpenTelemetry
func WithLogLevel(loglevel string) Option {
	return func(c *Config) {
		c.LogLevel = loglevel
	}
}

// WithLogFormat selects the backend for the OpenTelemetry SDK's
// internal logger, "zap" or "std".
func WithLogFormat(format string) Option {
	return func(c *Config) {
		c.LogFormat = format
	}
}

// WithExporterProtocol selects the OTLP transport, "grpc" or
// "http/protobuf", for both exporters
func WithExporterProtocol(protocol string) Option {
	return func(c *Config) {
		c.ExporterProtocol = protocol
	}
}

// WithSpanExporterInsecure permits connecting to the
// trace endpoint without a certificate
func WithSpanExporterInsecure(insecure bool) Option {
	return func(c *Config) {
		c.SpanExporterEndpointInsecure = insecure
	}
}

// WithMetricExporterInsecure permits connecting to the
// metric endpoint without a certificate
func WithMetricExporterInsecure(insecure bool) Option {
	return func(c *Config) {
		c.MetricExporterEndpointInsecure = insecure
	}
}

// WithResourceAttributes configures attributes on the resource
func WithResourceAttributes(attributes map[string]string) Option {
	return func(c *Config) {
		c.ResourceAttributes = attributes
	}
}

// WithPropagators configures propagators
func WithPropagators(propagators []string) Option {
	return func(c *Config) {
		c.Propagators = propagators
	}
}

// Configures a global error handler to be used throughout an OpenTelemetry instrumented project.
// See "go.opentelemetry.io/otel"
func WithErrorHandler(handler otel.ErrorHandler) Option {
	return func(c *Config) {
		c.errorHandler = handler
	}
}

// WithMetricReportingPeriod configures the metric reporting period,
// how often the controller collects and exports metric data.
func WithMetricReportingPeriod(p time.Duration) Option {
	return func(c *Config) {
		c.MetricReportingPeriod = fmt.Sprint(p)
	}
}

// WithMetricTemporalityPreference controls the temporality preference
// used for Counter and Histogram (only not for UpDownCounter, which
// ignores this preference for specified reasons).
func WithMetricTemporalityPreference(prefName string) Option {
	return func(c *Config) {
		c.MetricTemporalityPreference = prefName
	}
}

// WithMetricsEnabled configures whether metrics should be enabled
func WithMetricsEnabled(enabled bool) Option {
	return func(c *Config) {
		c.MetricsEnabled = enabled
	}
}

// WithBridgeTraceEnabled configures whether diag spans and events
// are bridged to OpenTelemetry traces.
func WithBridgeTraceEnabled(enabled bool) Option {
	return func(c *Config) {
		c.BridgeTraceEnabled = enabled
	}
}

// WithMetricsBuiltinsEnabled configures whether Go runtime and host
// metrics are exported alongside bridge metrics
func WithMetricsBuiltinsEnabled(enabled bool) Option {
	return func(c *Config) {
		c.MetricsBuiltinsEnabled = enabled
	}
}

// WithBridgeMetricsEnabled configures whether metric fields of diag
// events are bridged to OpenTelemetry instruments.
func WithBridgeMetricsEnabled(enabled bool) Option {
	return func(c *Config) {
		c.BridgeMetricsEnabled = enabled
	}
}

// WithBridgeMaxLevel sets the most verbose diag level that is
// bridged, e.g. "info" drops DEBUG and TRACE spans and events.
func WithBridgeMaxLevel(level string) Option {
	return func(c *Config) {
		c.BridgeMaxLevel = level
	}
}

// WithBridgeTraceOptions passes options through to the trace layer.
// They are applied after the environment settings.
func WithBridgeTraceOptions(opts ...bridgetrace.Option) Option {
	return func(c *Config) {
		c.traceOptions = append(c.traceOptions, opts...)
	}
}

// WithBridgeMetricOptions passes options through to the metric
// layer.  They are applied after the environment settings.
func WithBridgeMetricOptions(opts ...bridgemetric.Option) Option {
	return func(c *Config) {
		c.metricOptions = append(c.metricOptions, opts...)
	}
}

type Logger interface {
	Fatalf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// DefaultLogger writes configuration diagnostics through the global
// zap logger.
type DefaultLogger struct {
}

func (l *DefaultLogger) Fatalf(format string, v ...interface{}) {
	zap.S().Fatalf(format, v...)
}

func (l *DefaultLogger) Debugf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}

type defaultHandler struct {
	logger Logger
}

func (l *defaultHandler) Handle(err error) {
	l.logger.Debugf("error: %v\n", err)
}

const (
	// Note: these values should match the defaults used in `env` tags for Config fields.

	DefaultSpanExporterEndpoint   = "ingest.lightstep.com:443"
	DefaultMetricExporterEndpoint = "ingest.lightstep.com:443"
)

type Config struct {
	SpanExporterEndpoint           string            `env:"OTEL_EXPORTER_OTLP_SPAN_ENDPOINT,default=ingest.lightstep.com:443"`
	SpanExporterEndpointInsecure   bool              `env:"OTEL_EXPORTER_OTLP_SPAN_INSECURE,default=false"`
	ServiceName                    string            `env:"LS_SERVICE_NAME"`
	ServiceVersion                 string            `env:"LS_SERVICE_VERSION,default=unknown"`
	Headers                        map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ExporterProtocol               string            `env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=grpc"`
	MetricExporterEndpoint         string            `env:"OTEL_EXPORTER_OTLP_METRIC_ENDPOINT,default=ingest.lightstep.com:443"`
	MetricExporterEndpointInsecure bool              `env:"OTEL_EXPORTER_OTLP_METRIC_INSECURE,default=false"`
	MetricsEnabled                 bool              `env:"LS_METRICS_ENABLED,default=true"`
	MetricsBuiltinsEnabled         bool              `env:"LS_METRICS_BUILTINS_ENABLED,default=true"`
	LogLevel                       string            `env:"OTEL_LOG_LEVEL,default=info"`
	LogFormat                      string            `env:"OTEL_LOG_FORMAT,default=zap"`
	Propagators                    []string          `env:"OTEL_PROPAGATORS,default=b3"`
	MetricReportingPeriod          string            `env:"OTEL_EXPORTER_OTLP_METRIC_PERIOD,default=30s"`
	MetricTemporalityPreference    string            `env:"OTEL_EXPORTER_OTLP_METRIC_TEMPORALITY_PREFERENCE,default=cumulative"`

	BridgeTraceEnabled       bool   `env:"OTEL_BRIDGE_TRACE_ENABLED,default=true"`
	BridgeMetricsEnabled     bool   `env:"OTEL_BRIDGE_METRICS_ENABLED,default=true"`
	BridgeMaxLevel           string `env:"OTEL_BRIDGE_MAX_LEVEL,default=trace"`
	BridgeLocation           bool   `env:"OTEL_BRIDGE_LOCATION,default=true"`
	BridgeTrackedInactivity  bool   `env:"OTEL_BRIDGE_TRACKED_INACTIVITY,default=true"`
	BridgeThreads            bool   `env:"OTEL_BRIDGE_THREADS,default=true"`
	BridgeLevel              bool   `env:"OTEL_BRIDGE_LEVEL,default=false"`
	BridgeActivateContext    bool   `env:"OTEL_BRIDGE_ACTIVATE_CONTEXT,default=false"`
	BridgeErrorExceptions    bool   `env:"OTEL_BRIDGE_ERROR_EXCEPTIONS,default=true"`
	BridgeErrorStatus        bool   `env:"OTEL_BRIDGE_ERROR_STATUS,default=true"`
	BridgeAttributeSizeLimit int    `env:"OTEL_BRIDGE_ATTRIBUTE_SIZE_LIMIT,default=8192"`

	ResourceAttributes map[string]string
	Resource           *resource.Resource
	logger             Logger
	errorHandler       otel.ErrorHandler
	traceOptions       []bridgetrace.Option
	metricOptions      []bridgemetric.Option
}

func checkEndpointDefault(value, defValue string) error {
	if value == "" {
		// The endpoint is disabled.
		return nil
	}
	if value == defValue {
		return fmt.Errorf("invalid configuration: access token missing, must be set when reporting to %s. Set LS_ACCESS_TOKEN env var or configure WithAccessToken in code", value)
	}
	return nil
}

func accessToken(c Config) string {
	if c.Headers == nil {
		return ""
	}
	return c.Headers[lightstepAccessTokenHeader]
}

func validateConfiguration(c Config) error {
	if len(c.ServiceName) == 0 {
		serviceNameSet := false
		for _, kv := range c.Resource.Attributes() {
			if kv.Key == semconv.ServiceNameKey {
				if len(kv.Value.AsString()) > 0 {
					serviceNameSet = true
				}
				break
			}
		}
		if !serviceNameSet {
			return errors.New("invalid configuration: service name missing. Set LS_SERVICE_NAME env var or configure WithServiceName in code")
		}
	}

	accessTokenLen := len(accessToken(c))
	if accessTokenLen == 0 {
		if err := checkEndpointDefault(c.SpanExporterEndpoint, DefaultSpanExporterEndpoint); err != nil {
			return err
		}

		if err := checkEndpointDefault(c.MetricExporterEndpoint, DefaultMetricExporterEndpoint); err != nil {
			return err
		}
	}

	if accessTokenLen > 0 && (accessTokenLen != 32 && accessTokenLen != 84 && accessTokenLen != 104 && accessToken(c) != "developer") {
		return fmt.Errorf("invalid configuration: access token length incorrect. Ensure token is set correctly")
	}

	if _, err := diag.ParseLevel(c.BridgeMaxLevel); err != nil {
		return fmt.Errorf("invalid configuration: bridge max level: %w", err)
	}

	return nil
}

func newConfig(opts ...Option) Config {
	var c Config
	envError := envconfig.Process(context.Background(), &c)
	c.logger = &DefaultLogger{}
	c.errorHandler = &defaultHandler{logger: c.logger}
	var defaultOpts []Option

	for _, opt := range append(defaultOpts, opts...) {
		opt(&c)
	}
	c.Resource = newResource(&c)

	if envError != nil {
		c.logger.Fatalf("environment error: %v", envError)
	}

	return c
}

type Launcher struct {
	config        Config
	dispatcher    *diag.Dispatcher
	traceLayer    *bridgetrace.Layer
	metricLayer   *bridgemetric.Layer
	shutdownFuncs []func() error
}

func newResource(c *Config) *resource.Resource {
	r := resource.Environment()

	hostnameSet := false
	for iter := r.Iter(); iter.Next(); {
		if iter.Attribute().Key == semconv.HostNameKey && len(iter.Attribute().Value.Emit()) > 0 {
			hostnameSet = true
		}
	}

	attributes := []attribute.KeyValue{
		semconv.TelemetrySDKNameKey.String("otel-bridge"),
		semconv.TelemetrySDKLanguageGo,
		semconv.TelemetrySDKVersionKey.String(bridge.Version()),
	}

	if len(c.ServiceName) > 0 {
		attributes = append(attributes, semconv.ServiceNameKey.String(c.ServiceName))
	}

	if len(c.ServiceVersion) > 0 {
		attributes = append(attributes, semconv.ServiceVersionKey.String(c.ServiceVersion))
	}

	for key, value := range c.ResourceAttributes {
		if len(value) > 0 {
			if key == string(semconv.HostNameKey) {
				hostnameSet = true
			}
			attributes = append(attributes, attribute.String(key, value))
		}
	}

	if !hostnameSet {
		hostname, err := os.Hostname()
		if err != nil {
			c.logger.Debugf("unable to set host.name. Set OTEL_RESOURCE_ATTRIBUTES=\"host.name=<your_host_name>\" env var or configure WithResourceAttributes in code: %v", err)
		} else {
			attributes = append(attributes, semconv.HostNameKey.String(hostname))
		}
	}

	attributes = append(r.Attributes(), attributes...)

	// These detectors can't actually fail, ignoring the error.
	r, _ = resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(attributes...),
	)

	return r
}

// newZapLogger builds the process logger at the configured level.
func newZapLogger(c Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// newSDKLogger adapts the process logger for the OpenTelemetry SDK.
func newSDKLogger(c Config, logger *zap.Logger) (logr.Logger, error) {
	switch strings.ToLower(c.LogFormat) {
	case "", "zap":
		return zapr.NewLogger(logger.Named("otel")), nil
	case "std":
		if c.LogLevel == "debug" {
			stdr.SetVerbosity(8)
		}
		return stdr.New(log.New(os.Stderr, "otel: ", log.LstdFlags)), nil
	}
	return logr.Discard(), fmt.Errorf("invalid log format: %v", c.LogFormat)
}

func setupLogging(c Config) (func() error, error) {
	logger, err := newZapLogger(c)
	if err != nil {
		return nil, err
	}
	sdkLogger, err := newSDKLogger(c, logger)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(logger)
	otel.SetLogger(sdkLogger)

	return func() error {
		restore()
		// Sync fails on some terminals; the error is not actionable.
		_ = logger.Sync()
		return nil
	}, nil
}

func setupTracing(c Config) (func() error, error) {
	if c.SpanExporterEndpoint == "" {
		c.logger.Debugf("tracing is disabled by configuration: no endpoint set")
		return nil, nil
	}
	return pipelines.NewTracePipeline(pipelines.PipelineConfig{
		Endpoint:    c.SpanExporterEndpoint,
		Protocol:    c.ExporterProtocol,
		Insecure:    c.SpanExporterEndpointInsecure,
		Headers:     c.Headers,
		Resource:    c.Resource,
		Propagators: c.Propagators,
	})
}

type setupFunc func(Config) (func() error, error)

func setupMetrics(c Config) (func() error, error) {
	if !c.MetricsEnabled || c.MetricExporterEndpoint == "" {
		c.logger.Debugf("metrics are disabled by configuration: no endpoint set")
		return nil, nil
	}
	return pipelines.NewMetricsPipeline(pipelines.PipelineConfig{
		Endpoint:                c.MetricExporterEndpoint,
		Protocol:                c.ExporterProtocol,
		Insecure:                c.MetricExporterEndpointInsecure,
		Headers:                 c.Headers,
		Resource:                c.Resource,
		ReportingPeriod:         c.MetricReportingPeriod,
		TemporalityPreference:   c.MetricTemporalityPreference,
		MetricsBuiltinLibraries: c.metricsBuiltins(),
	})
}

func (c Config) metricsBuiltins() []string {
	if !c.MetricsBuiltinsEnabled {
		return nil
	}
	return []string{"runtime", "host"}
}

func (c Config) traceLayerOptions() []bridgetrace.Option {
	return append([]bridgetrace.Option{
		bridgetrace.WithLocation(c.BridgeLocation),
		bridgetrace.WithTrackedInactivity(c.BridgeTrackedInactivity),
		bridgetrace.WithThreads(c.BridgeThreads),
		bridgetrace.WithLevel(c.BridgeLevel),
		bridgetrace.WithActivateContext(c.BridgeActivateContext),
		bridgetrace.WithErrorFieldsToExceptions(c.BridgeErrorExceptions),
		bridgetrace.WithErrorRecordsToExceptions(c.BridgeErrorExceptions),
		bridgetrace.WithErrorEventsToExceptions(c.BridgeErrorExceptions),
		bridgetrace.WithErrorEventsToStatus(c.BridgeErrorStatus),
	}, c.traceOptions...)
}

func (c Config) metricLayerOptions() []bridgemetric.Option {
	return append([]bridgemetric.Option{
		bridgemetric.WithAttributeSizeLimit(c.BridgeAttributeSizeLimit),
	}, c.metricOptions...)
}

// installBridge builds the bridge layers on the providers installed
// by the pipelines and makes their dispatcher the default.
func (ls *Launcher) installBridge() {
	c := ls.config
	maxLevel, err := diag.ParseLevel(c.BridgeMaxLevel)
	if err != nil {
		// Rejected by validateConfiguration.
		maxLevel = diag.LevelTrace
	}

	var layers []diag.Layer
	if c.BridgeTraceEnabled {
		ls.traceLayer = bridgetrace.NewLayer(c.traceLayerOptions()...)
		layers = append(layers, diag.WithMaxLevel(ls.traceLayer, maxLevel))
	}
	if c.BridgeMetricsEnabled {
		ls.metricLayer = bridgemetric.NewLayer(c.metricLayerOptions()...)
		layers = append(layers, diag.WithMaxLevel(ls.metricLayer, maxLevel))
	}
	ls.dispatcher = diag.NewDispatcher(layers...)
	diag.SetDefault(ls.dispatcher)
}

func ConfigureOpentelemetry(opts ...Option) Launcher {
	c := newConfig(opts...)

	if c.LogLevel == "debug" {
		c.logger.Debugf("debug logging enabled")
		c.logger.Debugf("configuration")
		s, _ := json.MarshalIndent(c, "", "\t")
		c.logger.Debugf(string(s))
	}

	if c.Headers == nil {
		c.Headers = map[string]string{}
	}

	token := os.Getenv("LS_ACCESS_TOKEN")
	if len(token) > 0 && len(c.Headers[lightstepAccessTokenHeader]) == 0 {
		c.Headers[lightstepAccessTokenHeader] = token
	}

	ls := Launcher{
		config: c,
	}

	err := validateConfiguration(c)
	if err != nil {
		c.logger.Fatalf("configuration error: %v", err)
	}

	if c.errorHandler != nil {
		otel.SetErrorHandler(c.errorHandler)
	}

	for _, setup := range []setupFunc{setupLogging, setupTracing, setupMetrics} {
		shutdown, err := setup(c)
		if err != nil {
			c.logger.Fatalf("setup error: %v", err)
			continue
		}
		if shutdown != nil {
			ls.shutdownFuncs = append(ls.shutdownFuncs, shutdown)
		}
	}

	ls.installBridge()
	return ls
}

// Dispatcher returns the diag dispatcher carrying the bridge layers.
// It is also installed as diag.Default().
func (ls Launcher) Dispatcher() *diag.Dispatcher {
	return ls.dispatcher
}

// TraceLayer returns the trace bridge, for its span extension
// methods.  It is nil when the trace bridge is disabled.
func (ls Launcher) TraceLayer() *bridgetrace.Layer {
	return ls.traceLayer
}

// Shutdown flushes and stops the pipelines in reverse order of setup.
func (ls Launcher) Shutdown() {
	var err error
	for i := len(ls.shutdownFuncs) - 1; i >= 0; i-- {
		err = multierr.Append(err, ls.shutdownFuncs[i]())
	}
	if err != nil {
		ls.config.logger.Fatalf("failed to stop exporter: %v", err)
	}
}
