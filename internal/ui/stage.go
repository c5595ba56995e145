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

// Package ui draws the periodic terminal dashboard: queue depths,
// cumulative and smoothed throughput, a windowed average prediction
// error, and the most recent error. It is deliberately a plain ANSI
// clear-and-redraw loop, not a TUI framework — spec.md §1 excludes a
// production-grade TUI as a goal.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/stats"
)

// emaAlpha is the smoothing factor for the per-second rate EMAs.
const emaAlpha = 0.3

const (
	defaultInterval = 5 * time.Second
	defaultWindow   = 60 * time.Second
)

// QueueLen is satisfied by *pipeline.Channel[T] for any T; the UI only
// ever needs a queue's current depth, never its element type.
type QueueLen interface {
	Len() int
}

// QueueEntry names one queue for display.
type QueueEntry struct {
	Name  string
	Queue QueueLen
}

// Stage is the dashboard's cooperative tick loop.
type Stage struct {
	Queues []QueueEntry
	Errors *pipeline.Channel[model.ErrorEvent]
	Stats  *stats.Registry
	Log    *obs.Logger

	// Interval and Window default to 5s/60s when zero.
	Interval time.Duration
	Window   time.Duration

	lastSnapshot                           stats.Counts
	haveLastSnapshot                       bool
	emaReceived, emaProcessed, emaRepresent float64
	lastError                               *model.ErrorEvent
}

// Run ticks until stop is closed.
func (s *Stage) Run(stop <-chan struct{}) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Stage) tick() {
	s.drainErrors()
	for _, q := range s.Queues {
		stats.SetQueueDepth(q.Name, q.Queue.Len())
	}

	snap := s.Stats.Snapshot()
	s.updateEMAs(snap)
	s.lastSnapshot = snap
	s.haveLastSnapshot = true

	window := s.Window
	if window <= 0 {
		window = defaultWindow
	}
	rates := s.Stats.WindowedRates(window)
	avgErr := s.Stats.AverageError(window)

	s.Log.Raw(s.render(snap, rates, window, avgErr))
}

func (s *Stage) drainErrors() {
	for {
		ev, ok := s.Errors.TryPop()
		if !ok {
			return
		}
		e := ev
		s.lastError = &e
	}
}

func (s *Stage) updateEMAs(snap stats.Counts) {
	if !s.haveLastSnapshot {
		return
	}
	secs := s.Interval.Seconds()
	if secs <= 0 {
		secs = defaultInterval.Seconds()
	}
	dr := float64(snap.Received-s.lastSnapshot.Received) / secs
	dp := float64(snap.Processed-s.lastSnapshot.Processed) / secs
	dre := float64(snap.Represented-s.lastSnapshot.Represented) / secs
	s.emaReceived = emaAlpha*dr + (1-emaAlpha)*s.emaReceived
	s.emaProcessed = emaAlpha*dp + (1-emaAlpha)*s.emaProcessed
	s.emaRepresent = emaAlpha*dre + (1-emaAlpha)*s.emaRepresent
}

func (s *Stage) render(snap stats.Counts, rates stats.Rates, window time.Duration, avgErr float64) string {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	b.WriteString("+------------------------------------------------------------+\n")
	b.WriteString("| netlogger                                                   |\n")
	b.WriteString("+------------------------------------------------------------+\n")
	for _, q := range s.Queues {
		fmt.Fprintf(&b, "| queue %-10s depth=%-8d                            |\n", q.Name, q.Queue.Len())
	}
	fmt.Fprintf(&b, "| received=%-10d processed=%-10d represented=%-10d |\n",
		snap.Received, snap.Processed, snap.Represented)
	fmt.Fprintf(&b, "| rate(ema)  recv=%8.2f/s proc=%8.2f/s repr=%8.2f/s      |\n",
		s.emaReceived, s.emaProcessed, s.emaRepresent)
	fmt.Fprintf(&b, "| window(%-4s) recv=%-8d proc=%-8d repr=%-8d          |\n",
		window, rates.Received, rates.Processed, rates.Represented)
	switch {
	case s.lastError != nil:
		fmt.Fprintf(&b, "| last error: %-48s |\n", truncateForDisplay(s.lastError.Message, 48))
	case !math.IsNaN(avgErr):
		fmt.Fprintf(&b, "| avg prediction error (%s): %-20.6f            |\n", window, avgErr)
	default:
		b.WriteString("| no errors, no prediction samples yet                        |\n")
	}
	b.WriteString("+------------------------------------------------------------+\n")
	return b.String()
}

func truncateForDisplay(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
