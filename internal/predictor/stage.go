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

// Package predictor bridges the mlp network to the pipeline: it holds the
// one datapoint of state the online-SGD contract needs, trains on every
// record after the first, and republishes both the current forward pass
// and (when training happened) the pairing between the previous record's
// forecast and this record's actual values.
package predictor

import (
	"math"

	"github.com/etalazz/netlogger/internal/mlp"
	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/persist"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/stats"
)

// Stage is the predictor pipeline stage.
type Stage struct {
	In    *pipeline.Channel[model.ParsedRecord]
	Out   *pipeline.Channel[model.Prediction]
	Stats *stats.Registry
	Log   *obs.Logger
	Net   *mlp.Network

	// WeightsPath, when non-empty, is where weights persist after every
	// SaveEvery-th successful training step.
	WeightsPath string
	// SaveEvery is the persistence cadence in training steps; <= 0
	// disables persistence entirely.
	SaveEvery int

	prevNormalized [6]float64
	havePrev       bool
	stepCount      int
}

// Run drains In until it closes.
func (s *Stage) Run() {
	for {
		rec, ok := s.In.Pop()
		if !ok {
			return
		}
		s.process(rec)
	}
}

func (s *Stage) process(rec model.ParsedRecord) {
	current := mlp.Normalize(rec.Datapoint.Features())

	var pred model.Prediction
	if s.havePrev {
		pred.Trained = true
		pred.Cost = s.Net.TrainStep(s.prevNormalized, current)
		pred.Target = rec.Datapoint.Features()
		// Weights just moved; republish the previous input's forecast
		// under the post-update weights, not the stale pre-update one.
		pred.PrevPrediction = mlp.Denormalize(s.Net.Forward(s.prevNormalized))
		s.stepCount++
		if s.Stats != nil {
			s.Stats.RecordError(math.Abs(pred.Cost))
		}
		s.maybeSaveWeights()
	}

	pred.Current = mlp.Denormalize(s.Net.Forward(current))

	s.Out.Push(pred)
	if s.Stats != nil {
		s.Stats.IncRepresented()
	}

	s.prevNormalized = current
	s.havePrev = true
}

func (s *Stage) maybeSaveWeights() {
	if s.SaveEvery <= 0 || s.WeightsPath == "" {
		return
	}
	if s.stepCount%s.SaveEvery != 0 {
		return
	}
	if err := persist.SaveWeights(s.WeightsPath, s.Net); err != nil {
		s.Log.Printf("predictor: weight save skipped: %v", err)
	}
}

// Flush persists the current weights unconditionally, regardless of
// cadence; called once on graceful shutdown.
func (s *Stage) Flush() {
	if s.WeightsPath == "" {
		return
	}
	if err := persist.SaveWeights(s.WeightsPath, s.Net); err != nil {
		s.Log.Printf("predictor: shutdown weight flush skipped: %v", err)
	}
}
