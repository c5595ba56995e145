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

// Package persist implements the two on-disk formats named by the spec:
// the append-only history file (data/log_history.bin) and the MLP weight
// file (data/nn_weights.bin). Both are little-endian, a deliberate choice
// documented in SPEC_FULL.md that differs from the native-endian original.
package persist

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/etalazz/netlogger/internal/model"
)

// HistoryRecordSize is the on-disk size of one history entry:
// int64 ts_ms + float32 in0 + float32 in1.
const HistoryRecordSize = 8 + 4 + 4

// HistoryStore is a buffered, append-only writer for the history file,
// modeled on the teacher's SBatchFileSink: open once in append mode,
// buffer writes, flush after every Append and on Close.
type HistoryStore struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string
}

// OpenHistoryStore creates the parent directory if needed and opens path
// for append, ready to accept Append calls.
func OpenHistoryStore(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &HistoryStore{f: f, w: bufio.NewWriterSize(f, 1<<16), path: path}, nil
}

// Append writes one fixed-size record and flushes immediately: history
// entries are low-volume (one per accepted datapoint) and spec.md's
// corruption-detection invariant ("file length modulo record size")
// depends on every successful Append landing as a complete record before
// the process can be interrupted.
func (h *HistoryStore) Append(key model.HistoryKey) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var buf [HistoryRecordSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(key.TSMillis))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(key.In0))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(key.In1))
	if _, err := h.w.Write(buf[:]); err != nil {
		return err
	}
	return h.w.Flush()
}

// Close flushes and closes the underlying file.
func (h *HistoryStore) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.w.Flush(); err != nil {
		_ = h.f.Close()
		return err
	}
	return h.f.Close()
}

// LoadHistory reads every well-formed record from path. A trailing
// partial record (file length not a multiple of HistoryRecordSize) is
// ignored rather than treated as fatal, per spec.md's corruption note.
func LoadHistory(path string) ([]model.HistoryKey, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var out []model.HistoryKey
	var buf [HistoryRecordSize]byte
	for {
		n, err := io.ReadFull(r, buf[:])
		if n == HistoryRecordSize {
			out = append(out, model.HistoryKey{
				TSMillis: int64(binary.LittleEndian.Uint64(buf[0:8])),
				In0:      math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
				In1:      math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
			})
		}
		if err != nil {
			break
		}
	}
	return out, nil
}
