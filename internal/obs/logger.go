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

// Package obs is the shared logging and console-output surface for every
// stage. All stages log through the same *Logger so stdout/stderr writes
// never interleave mid-line, matching the single-mutex requirement in
// spec.md's concurrency model.
package obs

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger serializes writes to a single destination behind one mutex. It is
// intentionally plain stdlib: the pipeline has no structured-logging
// consumer (no log aggregator, no trace exporter) for any stage to write
// to, so there is nothing for a structured-logging library to buy here
// beyond what log.Logger already gives for free.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Default returns a Logger writing to os.Stderr, used by every stage
// unless the caller wires a different destination (tests, mainly).
func Default() *Logger {
	return New(os.Stderr)
}

// Printf writes one timestamped, newline-terminated log line.
func (l *Logger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now().UTC().Format("2006-01-02T15:04:05.000Z")
	fmt.Fprintf(l.w, "%s %s\n", ts, fmt.Sprintf(format, args...))
}

// Raw writes s unmodified and unprefixed, holding the same mutex as
// Printf so a UI screen redraw and a log line can never interleave.
func (l *Logger) Raw(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.w, s)
}
