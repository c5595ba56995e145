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

// Package replay is the sender collaborator's file-reading half: loading
// CSV/NDJSON telemetry files and merging them into one ascending-timestamp
// stream for the player to pace and send. Per spec.md's scope note, the
// sender is a mechanical transformation, not core pipeline logic, so this
// package favors directness over the grounding depth given to mlp/predict.
package replay

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Record is one line to replay, tagged with the timestamp used for
// ordering and pacing.
type Record struct {
	TS   float64
	Line string
}

// LoadCSV reads one record per line, using the first comma-separated
// field as the timestamp.
func LoadCSV(path string) ([]Record, error) {
	return loadLines(path, csvTimestamp)
}

// LoadJSONL reads one JSON object per line, extracting a bare or quoted
// "timestamp" key.
func LoadJSONL(path string) ([]Record, error) {
	return loadLines(path, jsonTimestamp)
}

func loadLines(path string, ts func(string) (float64, bool)) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		t, ok := ts(line)
		if !ok {
			continue
		}
		records = append(records, Record{TS: t, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("replay: scan %s: %w", path, err)
	}
	return records, nil
}

func csvTimestamp(line string) (float64, bool) {
	field := line
	if idx := strings.IndexByte(line, ','); idx >= 0 {
		field = line[:idx]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// jsonTimestamp finds a bare or quoted "timestamp" key and parses the
// number that follows its colon. It deliberately does not pull in a full
// JSON parser, matching the preprocessor's own non-goal.
func jsonTimestamp(line string) (float64, bool) {
	idx := strings.Index(line, `"timestamp"`)
	keyLen := len(`"timestamp"`)
	if idx < 0 {
		idx = strings.Index(line, "timestamp")
		keyLen = len("timestamp")
		if idx < 0 {
			return 0, false
		}
	}
	rest := line[idx+keyLen:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return 0, false
	}
	rest = strings.TrimSpace(rest[colon+1:])
	end := 0
	for end < len(rest) && isNumberByte(rest[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == '-' || b == '+' || b == 'e' || b == 'E'
}

// AppendSourceTag returns line with a source tag attached: for a JSON
// object, inserted as a trailing quoted "source" key before the closing
// brace; for
// anything else (CSV), appended as a trailing comma-separated field.
func AppendSourceTag(line, tag string) string {
	trimmed := strings.TrimRight(line, " \t")
	if strings.HasSuffix(trimmed, "}") {
		return trimmed[:len(trimmed)-1] + fmt.Sprintf(`,"source":%q}`, tag)
	}
	return line + "," + tag
}
