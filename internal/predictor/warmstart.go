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

import "github.com/etalazz/netlogger/internal/model"

// WarmStart replays history through the network using the two-input
// legacy path: each entry's (in0, in1) occupies the first two input/output
// channels, the remaining four stay zero. The very first entry trains
// against an implicit zero predecessor, so n history entries produce
// exactly n training steps. The final entry's vector becomes the stage's
// held "previous" state, so the first live datapoint trains against it
// immediately rather than waiting for a second live record.
func (s *Stage) WarmStart(history []model.HistoryKey) int {
	prev := [6]float64{}
	steps := 0
	for _, h := range history {
		target := historyVector(h)
		s.Net.TrainStep(prev, target)
		prev = target
		steps++
	}
	if steps > 0 {
		s.prevNormalized = prev
		s.havePrev = true
	}
	return steps
}

func historyVector(h model.HistoryKey) [6]float64 {
	return [6]float64{float64(h.In0), float64(h.In1), 0, 0, 0, 0}
}
