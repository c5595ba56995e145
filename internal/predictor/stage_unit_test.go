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

package predictor

import (
	"io"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/etalazz/netlogger/internal/mlp"
	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/persist"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/stats"
)

func newTestStage(t *testing.T) *Stage {
	t.Helper()
	return &Stage{
		In:          pipeline.New[model.ParsedRecord](),
		Out:         pipeline.New[model.Prediction](),
		Stats:       stats.New(),
		Log:         obs.New(io.Discard),
		Net:         mlp.NewLinear([]int{8}, 0.1, rand.New(rand.NewSource(1))),
		WeightsPath: filepath.Join(t.TempDir(), "weights.bin"),
		SaveEvery:   1,
	}
}

func TestStage_FirstRecordNeverTrains(t *testing.T) {
	s := newTestStage(t)
	d := model.Datapoint{ExportBytes: 1234567, ExportFlows: 50, ExportPackets: 1000, ExportRTR: 1, ExportRTT: 2000, ExportSRT: 3000}
	s.process(model.ParsedRecord{Datapoint: d})

	pred, ok := s.Out.TryPop()
	if !ok {
		t.Fatalf("expected a prediction on Out")
	}
	if pred.Trained {
		t.Errorf("first record trained, want Trained=false (no previous datapoint held yet)")
	}
}

func TestStage_SecondRecordTrainsAndReportsCost(t *testing.T) {
	s := newTestStage(t)
	d1 := model.Datapoint{ExportBytes: 1234567, ExportFlows: 50, ExportPackets: 1000, ExportRTR: 1, ExportRTT: 2000, ExportSRT: 3000}
	d2 := d1 // identical successor: cost should be small but not necessarily zero pre-training
	s.process(model.ParsedRecord{Datapoint: d1})
	s.Out.TryPop()
	s.process(model.ParsedRecord{Datapoint: d2})

	pred, ok := s.Out.TryPop()
	if !ok {
		t.Fatalf("expected a second prediction on Out")
	}
	if !pred.Trained {
		t.Errorf("second record did not train, want Trained=true")
	}
	if pred.Cost < 0 {
		t.Errorf("cost = %v, want >= 0", pred.Cost)
	}
	if pred.Target != d2.Features() {
		t.Errorf("Target = %v, want %v", pred.Target, d2.Features())
	}
}

func TestStage_WeightsPersistedAfterTrainingStep(t *testing.T) {
	s := newTestStage(t)
	d := model.Datapoint{ExportBytes: 1, ExportFlows: 1, ExportPackets: 1, ExportRTR: 1, ExportRTT: 1, ExportSRT: 1}
	s.process(model.ParsedRecord{Datapoint: d})
	s.process(model.ParsedRecord{Datapoint: d})

	loaded := mlp.NewLinear([]int{8}, 0.1, rand.New(rand.NewSource(2)))
	if err := persist.LoadWeights(s.WeightsPath, loaded); err != nil {
		t.Fatalf("loading persisted weights: %v", err)
	}
	want := s.Net.Forward(mlp.Normalize(d.Features()))
	got := loaded.Forward(mlp.Normalize(d.Features()))
	if want != got {
		t.Errorf("persisted weights forward pass = %v, want %v", got, want)
	}
}

func TestWarmStart_NEntriesProduceNTrainingSteps(t *testing.T) {
	s := newTestStage(t)
	history := make([]model.HistoryKey, 100)
	for i := range history {
		history[i] = model.HistoryKey{TSMillis: int64(i), In0: 0.5, In1: 0.5}
	}
	steps := s.WarmStart(history)
	if steps != 100 {
		t.Errorf("WarmStart with 100 entries produced %d training steps, want 100", steps)
	}
	if !s.havePrev {
		t.Errorf("WarmStart did not leave havePrev=true for the first live datapoint to train against")
	}
}

func TestWarmStart_EmptyHistoryIsNoOp(t *testing.T) {
	s := newTestStage(t)
	steps := s.WarmStart(nil)
	if steps != 0 {
		t.Errorf("WarmStart(nil) = %d steps, want 0", steps)
	}
	if s.havePrev {
		t.Errorf("WarmStart(nil) set havePrev=true, want false")
	}
}
