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

package represent

import (
	"context"
	"time"

	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/pipeline"
)

// Stage is the representer pipeline stage.
type Stage struct {
	In     *pipeline.Channel[model.Prediction]
	Errors *pipeline.Channel[model.ErrorEvent]
	Log    *obs.Logger
	// LLM is optional; nil disables the out-of-band interpretation call.
	LLM *LLMClient

	lastTargetFirst float64
	haveLastTarget  bool
}

// Run drains In until it closes.
func (s *Stage) Run() {
	for {
		pred, ok := s.In.Pop()
		if !ok {
			return
		}
		s.process(pred)
	}
}

func (s *Stage) process(pred model.Prediction) {
	// nn_thread.c pushes the pred_prev line (prediction, target, cost)
	// before the pred line (the fresh forward pass) for every trained
	// record; the target token lands on repr before the current
	// prediction does, so last_target_first is this record's own target
	// by the time the current prediction is checked for anomaly.
	if pred.Trained {
		prevLine := formatPredPrevLine(pred)
		s.Log.Printf("%s", prevLine)
		s.lastTargetFirst = pred.Target[0]
		s.haveLastTarget = true
	}

	predLine := formatPredLine(pred)
	s.Log.Printf("%s", predLine)

	if s.haveLastTarget {
		diff := pred.Current[0] - s.lastTargetFirst
		if diff > anomalyThreshold {
			s.Errors.Push(model.ErrorEvent{
				Anomaly:           true,
				LastTarget:        s.lastTargetFirst,
				AnomalyPrediction: pred.Current[0],
				AnomalyDiff:       diff,
			})
		}
	}

	if s.LLM != nil {
		s.interpretAsync(predLine)
	}
}

// interpretAsync dispatches the LLM call on its own goroutine: a slow or
// failing endpoint must never hold up the pipeline.
func (s *Stage) interpretAsync(line string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		reply, err := s.LLM.Interpret(ctx,
			"You interpret one line of network telemetry prediction output tersely, in one sentence.",
			line)
		if err != nil {
			s.Log.Printf("represent: llm interpretation failed: %v", err)
			return
		}
		s.Log.Printf("represent: llm: %s", reply)
	}()
}
