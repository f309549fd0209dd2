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
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"google.golang.org/grpc/credentials"
)

// OTLP transports.
const (
	ProtocolGRPC         = "grpc"
	ProtocolHTTPProtobuf = "http/protobuf"
)

type PipelineConfig struct {
	Endpoint        string
	Protocol        string
	Insecure        bool
	Headers         map[string]string
	Resource        *resource.Resource
	ReportingPeriod string
	Propagators     []string

	// MetricsBuiltinLibraries names the process instrumentation
	// started on the meter provider: "runtime" for Go runtime metrics
	// and "host" for host CPU, memory and network metrics.
	MetricsBuiltinLibraries []string

	// TemporalityPreference is one of "cumulative", "delta", or "stateless"
	TemporalityPreference string

	// Credentials carries the TLS settings for gRPC.  The HTTP
	// protocol uses the system roots unless Insecure is set.
	Credentials credentials.TransportCredentials
}

type PipelineSetupFunc func(PipelineConfig) (func() error, error)

func (p PipelineConfig) secureMetricOption() otlpmetricgrpc.Option {
	if p.Insecure {
		return otlpmetricgrpc.WithInsecure()
	} else if p.Credentials != nil {
		return otlpmetricgrpc.WithTLSCredentials(p.Credentials)
	}
	return otlpmetricgrpc.WithTLSCredentials(
		credentials.NewClientTLSFromCert(nil, ""),
	)
}

func (p PipelineConfig) secureTraceOption() otlptracegrpc.Option {
	if p.Insecure {
		return otlptracegrpc.WithInsecure()
	} else if p.Credentials != nil {
		return otlptracegrpc.WithTLSCredentials(p.Credentials)
	}
	return otlptracegrpc.WithTLSCredentials(
		credentials.NewClientTLSFromCert(nil, ""),
	)
}

// protocol returns the normalized Protocol; empty means gRPC.
func (p PipelineConfig) protocol() (string, error) {
	switch strings.ToLower(p.Protocol) {
	case "", ProtocolGRPC:
		return ProtocolGRPC, nil
	case ProtocolHTTPProtobuf, "http":
		return ProtocolHTTPProtobuf, nil
	}
	return "", fmt.Errorf("invalid configuration: unsupported OTLP protocol %q. Supported options: grpc,http/protobuf", p.Protocol)
}

func (p PipelineConfig) httpTraceOptions() []otlptracehttp.Option {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(p.Endpoint),
		otlptracehttp.WithHeaders(p.Headers),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	if p.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

func (p PipelineConfig) httpMetricOptions() []otlpmetrichttp.Option {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(p.Endpoint),
		otlpmetrichttp.WithHeaders(p.Headers),
		otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
	}
	if p.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return opts
}
