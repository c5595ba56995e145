// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

// Package preprocess classifies each raw payload as JSON or legacy CSV,
// parses it into a model.Datapoint, projects the two-channel history key,
// and emits a normalized line for the predictor stage.
//
// The JSON path is deliberately not a general parser: encoding/json would
// reject the bare (unquoted) keys the wire format allows, so field values
// are located by a small substring-based numeric extractor instead.
package preprocess

import (
	"math"
	"strconv"
	"strings"
)

var jsonFieldNames = []string{
	"timestamp", "export_bytes", "export_flows", "export_packets",
	"export_rtr", "export_rtt", "export_srt",
}

// isJSONPayload classifies payload per the spec's rule: JSON if the first
// non-whitespace byte is '{', or if "export_bytes" appears anywhere.
func isJSONPayload(payload string) bool {
	trimmed := strings.TrimLeft(payload, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return true
	}
	return strings.Contains(payload, "export_bytes")
}

// extractField locates key (quoted or bare) in payload and parses the
// number following its ':'. It returns NaN if the key is absent or the
// value doesn't parse, matching the "missing fields stay NaN" contract.
func extractField(payload, key string) float64 {
	end, ok := findKeyEnd(payload, key)
	if !ok {
		return math.NaN()
	}
	i := end
	for i < len(payload) && isSpaceByte(payload[i]) {
		i++
	}
	if i >= len(payload) || payload[i] != ':' {
		return math.NaN()
	}
	i++
	for i < len(payload) && isSpaceByte(payload[i]) {
		i++
	}
	j := i
	for j < len(payload) && isNumberByte(payload[j]) {
		j++
	}
	if j == i {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(payload[i:j], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// findKeyEnd returns the index just past key's occurrence in payload,
// preferring a quoted match ("key") and falling back to a bare match that
// isn't a substring of a longer identifier.
func findKeyEnd(payload, key string) (int, bool) {
	quoted := `"` + key + `"`
	if idx := strings.Index(payload, quoted); idx >= 0 {
		return idx + len(quoted), true
	}
	if idx := indexBareKey(payload, key); idx >= 0 {
		return idx + len(key), true
	}
	return 0, false
}

func indexBareKey(payload, key string) int {
	start := 0
	for {
		rel := strings.Index(payload[start:], key)
		if rel < 0 {
			return -1
		}
		abs := start + rel
		var before, after byte
		if abs > 0 {
			before = payload[abs-1]
		}
		if abs+len(key) < len(payload) {
			after = payload[abs+len(key)]
		}
		if !isIdentByte(before) && !isIdentByte(after) {
			return abs
		}
		start = abs + 1
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNumberByte(b byte) bool {
	return b == '-' || b == '+' || b == '.' || b == 'e' || b == 'E' || (b >= '0' && b <= '9')
}
