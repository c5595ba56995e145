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

package replay

import (
	"time"
)

// Sender is the minimal surface the player needs, letting tests replace
// the real UDP socket with an in-memory recorder.
type Sender interface {
	Send(payload string) error
}

// Player paces and sends a merged record stream. Exactly one of Accel
// (CSV/timestamp-delta pacing) or Rate (fixed packets/second, JSON mode)
// applies, selected by the caller.
type Player struct {
	Sender Sender

	// Accel divides real timestamp deltas; 0 disables delta pacing.
	Accel float64
	// Rate is a fixed packets/second pace; 0 disables rate pacing.
	Rate float64

	Once          bool
	AppendSource  string
	Sleep         func(time.Duration)
}

// Play sends every record in order, optionally looping forever when Once
// is false. records must already be sorted ascending by TS.
func (p *Player) Play(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	for {
		var prevTS float64
		for i, rec := range records {
			if i > 0 && p.Accel > 0 {
				delta := rec.TS - prevTS
				if delta > 0 {
					sleep(time.Duration(delta / p.Accel * float64(time.Second)))
				}
			} else if p.Rate > 0 {
				sleep(time.Duration(float64(time.Second) / p.Rate))
			}
			prevTS = rec.TS

			line := rec.Line
			if p.AppendSource != "" {
				line = AppendSourceTag(line, p.AppendSource)
			}
			if err := p.Sender.Send(line); err != nil {
				return err
			}
		}
		if p.Once {
			return nil
		}
	}
}
