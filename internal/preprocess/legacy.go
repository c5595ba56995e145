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

package preprocess

import (
	"fmt"
	"strconv"
	"strings"
)

// legacyRecord is the parsed "ts,bs,br" legacy triple, the only legacy CSV
// grammar with a fully specified parse contract (the two-field "ts,value"
// variant named alongside it in the wire contract has no documented
// datapoint mapping, so it is treated as malformed here rather than
// guessed at).
type legacyRecord struct {
	ts, bs, br int64
}

func parseLegacyCSV(payload string) (legacyRecord, error) {
	parts := strings.Split(payload, ",")
	if len(parts) != 3 {
		return legacyRecord{}, fmt.Errorf("expected 3 comma-separated fields, got %d", len(parts))
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return legacyRecord{}, fmt.Errorf("bad timestamp field: %w", err)
	}
	bs, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return legacyRecord{}, fmt.Errorf("bad bs field: %w", err)
	}
	br, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return legacyRecord{}, fmt.Errorf("bad br field: %w", err)
	}
	if bs < 0 || br < 0 {
		return legacyRecord{}, fmt.Errorf("negative field (bs=%d, br=%d)", bs, br)
	}
	return legacyRecord{ts: ts, bs: bs, br: br}, nil
}
