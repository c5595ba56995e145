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

package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/stats"
)

type fixedLen int

func (f fixedLen) Len() int { return int(f) }

func newTestStage(buf *bytes.Buffer, reg *stats.Registry) *Stage {
	return &Stage{
		Queues: []QueueEntry{
			{Name: "raw", Queue: fixedLen(3)},
			{Name: "proc", Queue: fixedLen(1)},
		},
		Errors:   pipeline.New[model.ErrorEvent](),
		Stats:    reg,
		Log:      obs.New(buf),
		Interval: time.Second,
		Window:   time.Minute,
	}
}

func TestStage_TickRendersClearAndFrame(t *testing.T) {
	var buf bytes.Buffer
	reg := stats.New()
	s := newTestStage(&buf, reg)

	s.tick()

	out := buf.String()
	if !strings.HasPrefix(out, "\x1b[2J\x1b[H") {
		t.Errorf("render did not start with the ANSI clear sequence: %q", out[:min(20, len(out))])
	}
	if !strings.Contains(out, "queue raw") || !strings.Contains(out, "queue proc") {
		t.Errorf("render missing queue entries: %q", out)
	}
	if !strings.Contains(out, "no errors, no prediction samples yet") {
		t.Errorf("render missing the no-data placeholder: %q", out)
	}
}

func TestStage_TickShowsLastError(t *testing.T) {
	var buf bytes.Buffer
	reg := stats.New()
	s := newTestStage(&buf, reg)
	s.Errors.Push(model.ErrorEvent{Message: "malformed,payload"})

	s.tick()

	out := buf.String()
	if !strings.Contains(out, "last error: malformed,payload") {
		t.Errorf("render missing last error line: %q", out)
	}
}

func TestStage_TickShowsAverageErrorWhenNoRecentFailure(t *testing.T) {
	var buf bytes.Buffer
	reg := stats.New()
	reg.RecordError(0.5)
	reg.RecordError(1.5)
	s := newTestStage(&buf, reg)

	s.tick()

	out := buf.String()
	if !strings.Contains(out, "avg prediction error") {
		t.Errorf("render missing avg prediction error line: %q", out)
	}
}

func TestStage_EMAUpdatesAcrossTicksFromCounterDeltas(t *testing.T) {
	var buf bytes.Buffer
	reg := stats.New()
	s := newTestStage(&buf, reg)

	s.tick() // establishes the baseline snapshot, no EMA movement yet
	if s.emaReceived != 0 {
		t.Fatalf("emaReceived after first tick = %v, want 0", s.emaReceived)
	}

	reg.IncReceived()
	reg.IncReceived()
	s.tick()

	want := emaAlpha * (2.0 / s.Interval.Seconds())
	if s.emaReceived != want {
		t.Errorf("emaReceived = %v, want %v", s.emaReceived, want)
	}
}

func TestStage_DrainErrorsKeepsOnlyTheMostRecent(t *testing.T) {
	var buf bytes.Buffer
	reg := stats.New()
	s := newTestStage(&buf, reg)
	s.Errors.Push(model.ErrorEvent{Message: "first"})
	s.Errors.Push(model.ErrorEvent{Message: "second"})

	s.drainErrors()

	if s.lastError == nil || s.lastError.Message != "second" {
		t.Errorf("lastError = %+v, want Message=\"second\"", s.lastError)
	}
}
