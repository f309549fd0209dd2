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

	"github.com/sethvargo/go-envconfig"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type samplingConfig struct {
	// SamplingEnabled turns on span sampling. This should be set alongside the
	// SamplingPercent attribute. If sampling is disabled, all traces are sent
	// to the endpoint.
	SpanSamplingEnabled bool `env:"LS_SPAN_SAMPLING_ENABLED,default=false"`
	// SamplingPercent is the percentage of spans will be sent to the endpoint,
	// in the range 0-100. It is only consulted if SamplingEnabled is set to true
	SpanSamplingPercent int `env:"LS_SPAN_SAMPLING_PERCENT,default=100"`
}

func newSampler() trace.Sampler {

	var c samplingConfig

	if err := envconfig.Process(context.Background(), &c); err != nil {
		zap.L().Warn("could not load sampling config, default to AlwaysSample()", zap.Error(err))
		return trace.AlwaysSample()
	}

	if !c.SpanSamplingEnabled || c.SpanSamplingPercent >= 100 {
		return trace.AlwaysSample()
	}

	if c.SpanSamplingPercent <= 0 {
		return trace.NeverSample()
	}

	return trace.ParentBased(
		trace.TraceIDRatioBased(float64(c.SpanSamplingPercent) / 100.0),
	)
}
