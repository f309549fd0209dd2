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

package test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	metricService "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	traceService "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	grpcMetadata "google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
)

// HTTPServer is an OTLP/HTTP collector using the binary protobuf
// encoding.  Requests are available through the embedded Server's
// accessors, with HTTP headers as metadata.
type HTTPServer struct {
	*Server

	// Endpoint is the host:port of the collector.
	Endpoint string

	srv *httptest.Server
}

func NewHTTPServer(t testing.TB) *HTTPServer {
	t.Helper()

	server := &Server{}
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/traces", func(w http.ResponseWriter, r *http.Request) {
		var req traceService.ExportTraceServiceRequest
		if err := readProto(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		server.lock.Lock()
		server.traceRequests = append(server.traceRequests, &req)
		server.traceMDs = append(server.traceMDs, headerMD(r.Header))
		server.lock.Unlock()

		writeProto(w, &traceService.ExportTraceServiceResponse{})
	})

	mux.HandleFunc("/v1/metrics", func(w http.ResponseWriter, r *http.Request) {
		var req metricService.ExportMetricsServiceRequest
		if err := readProto(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		server.lock.Lock()
		server.metricsRequests = append(server.metricsRequests, &req)
		server.metricsMDs = append(server.metricsMDs, headerMD(r.Header))
		server.lock.Unlock()

		writeProto(w, &metricService.ExportMetricsServiceResponse{})
	})

	srv := httptest.NewServer(mux)
	return &HTTPServer{
		Server:   server,
		Endpoint: strings.TrimPrefix(srv.URL, "http://"),
		srv:      srv,
	}
}

func (h *HTTPServer) Stop() {
	h.srv.Close()
}

func readProto(r *http.Request, msg proto.Message) error {
	body := r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			return err
		}
		defer gz.Close()
		body = gz
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	return proto.Unmarshal(data, msg)
}

func writeProto(w http.ResponseWriter, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(data)
}

func headerMD(h http.Header) grpcMetadata.MD {
	md := grpcMetadata.MD{}
	for k, vs := range h {
		md.Append(k, vs...)
	}
	return md
}
