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

// Package attrlimit bounds the size of metric attributes.
package attrlimit // import "github.com/lightstep/otel-bridge-go/lightstep/bridge/internal/attrlimit"

import (
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultSizeLimit is the default limit for attribute sizes that will
// be admitted without truncation.
const DefaultSizeLimit = 8192

// Truncate shortens attribute keys, string values, and each element of
// string-slice values to at most limit bytes, never splitting a UTF-8
// sequence.  A zero limit disables truncation.  attrs is modified in
// place and returned.
func Truncate(limit int, attrs []attribute.KeyValue) []attribute.KeyValue {
	if limit <= 0 {
		return attrs
	}
	for idx, kv := range attrs {
		if len(kv.Key) > limit {
			attrs[idx].Key = attribute.Key(truncate(string(kv.Key), limit))
		}
		switch kv.Value.Type() {
		case attribute.STRING:
			s := kv.Value.AsString()
			if len(s) > limit {
				attrs[idx].Value = attribute.StringValue(truncate(s, limit))
			}

		case attribute.STRINGSLICE:
			any := false
			ss := kv.Value.AsStringSlice()
			for jdx := range ss {
				if len(ss[jdx]) > limit {
					ss[jdx] = truncate(ss[jdx], limit)
					any = true
				}
			}
			if any {
				attrs[idx].Value = attribute.StringSliceValue(ss)
			}
		}
	}
	return attrs
}

func truncate(s string, limit int) string {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
