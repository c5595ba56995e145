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
	"math"

	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/stats"
)

// History is the narrow persistence surface the stage needs; satisfied by
// *persist.HistoryStore and by a no-op stand-in in tests.
type History interface {
	Append(model.HistoryKey) error
}

// Stage consumes raw payloads, classifies and parses them, and forwards
// typed records downstream. One Stage runs on its own goroutine, matching
// the one-thread-per-pipeline-stage scheduling model.
type Stage struct {
	In      *pipeline.Channel[model.RawLine]
	Out     *pipeline.Channel[model.ParsedRecord]
	Errors  *pipeline.Channel[model.ErrorEvent]
	History History
	Stats   *stats.Registry
	Log     *obs.Logger
}

// Run drains In until it closes, processing each line in turn. It returns
// once In reports closed-and-drained.
func (s *Stage) Run() {
	for {
		line, ok := s.In.Pop()
		if !ok {
			return
		}
		s.process(line)
	}
}

func (s *Stage) process(line model.RawLine) {
	if isJSONPayload(line.Payload) {
		s.processJSON(line.Payload)
		return
	}
	s.processLegacyCSV(line.Payload)
}

func (s *Stage) processJSON(payload string) {
	d := model.Datapoint{
		Timestamp:     extractField(payload, jsonFieldNames[0]),
		ExportBytes:   extractField(payload, jsonFieldNames[1]),
		ExportFlows:   extractField(payload, jsonFieldNames[2]),
		ExportPackets: extractField(payload, jsonFieldNames[3]),
		ExportRTR:     extractField(payload, jsonFieldNames[4]),
		ExportRTT:     extractField(payload, jsonFieldNames[5]),
		ExportSRT:     extractField(payload, jsonFieldNames[6]),
	}
	if allFeaturesNaN(d) {
		s.reject(payload)
		return
	}
	tsMillis := d.TSMillis()
	key := model.HistoryKey{
		TSMillis: tsMillis,
		In0:      float32(clamp01(safeDiv(d.ExportBytes, 1e6))),
		In1:      float32(clamp01(safeDiv(d.ExportFlows, 100))),
	}
	line := fmt.Sprintf("%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f",
		tsMillis, d.ExportBytes, d.ExportFlows, d.ExportPackets, d.ExportRTR, d.ExportRTT, d.ExportSRT)
	s.commit(model.ParsedRecord{Datapoint: d, Line: line, History: key})
}

func (s *Stage) processLegacyCSV(payload string) {
	rec, err := parseLegacyCSV(payload)
	if err != nil {
		s.Log.Printf("preprocess: legacy CSV rejected: %v", err)
		s.reject(payload)
		return
	}
	d := model.Datapoint{
		Timestamp:     float64(rec.ts),
		ExportBytes:   float64(rec.bs),
		ExportFlows:   float64(rec.br),
		ExportPackets: math.NaN(),
		ExportRTR:     math.NaN(),
		ExportRTT:     math.NaN(),
		ExportSRT:     math.NaN(),
	}
	key := model.HistoryKey{
		TSMillis: rec.ts,
		In0:      float32(clamp01(safeDiv(float64(rec.bs), 2000))),
		In1:      float32(clamp01(safeDiv(float64(rec.br), 2000))),
	}
	s.commit(model.ParsedRecord{Datapoint: d, Line: payload, History: key})
}

func (s *Stage) commit(rec model.ParsedRecord) {
	if s.History != nil {
		if err := s.History.Append(rec.History); err != nil {
			s.Log.Printf("preprocess: history append failed: %v", err)
		}
	}
	s.Out.Push(rec)
	if s.Stats != nil {
		s.Stats.IncProcessed()
	}
}

func (s *Stage) reject(payload string) {
	s.Errors.Push(model.ErrorEvent{Message: payload})
}

func allFeaturesNaN(d model.Datapoint) bool {
	for _, v := range d.Features() {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

func safeDiv(v, by float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v / by
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
