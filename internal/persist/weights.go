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

package persist

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/etalazz/netlogger/internal/mlp"
)

// SaveWeights writes net's layers in the canonical format: u64 n_hidden,
// u64 neuronsPerLayer[n_hidden], then per-layer {n_neurons, input_len,
// per-neuron {in_len, w[in_len], bias}} records for the hidden layers
// followed by the output layer in the same layout. All integers are
// little-endian u64, all floats little-endian f64.
//
// The caller need not check net for NaN/Inf before calling: SaveWeights
// itself performs that check and returns an error without writing anything
// if it finds one, so a bad training step can never corrupt the file on
// disk.
func SaveWeights(path string, net *mlp.Network) error {
	for _, l := range net.Layers {
		for _, w := range l.Weights {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("persist: refusing to save weights: non-finite weight")
			}
		}
		for _, b := range l.Biases {
			if math.IsNaN(b) || math.IsInf(b, 0) {
				return fmt.Errorf("persist: refusing to save weights: non-finite bias")
			}
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriterSize(f, 1<<16)

	nHidden := uint64(len(net.Layers) - 1)
	if err := writeU64(w, nHidden); err != nil {
		_ = f.Close()
		return err
	}
	for i := 0; i < int(nHidden); i++ {
		if err := writeU64(w, uint64(net.Layers[i].OutLen)); err != nil {
			_ = f.Close()
			return err
		}
	}
	for _, l := range net.Layers {
		if err := writeLayer(w, l); err != nil {
			_ = f.Close()
			return err
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic rename: a crash mid-write leaves the previous weights file
	// (or none) intact, never a truncated one.
	return os.Rename(tmp, path)
}

func writeU64(w *bufio.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeF64(w *bufio.Writer, v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return err
}

func writeLayer(w *bufio.Writer, l mlp.Layer) error {
	if err := writeU64(w, uint64(l.OutLen)); err != nil {
		return err
	}
	if err := writeU64(w, uint64(l.InLen)); err != nil {
		return err
	}
	for j := 0; j < l.OutLen; j++ {
		if err := writeU64(w, uint64(l.InLen)); err != nil {
			return err
		}
		base := j * l.InLen
		for i := 0; i < l.InLen; i++ {
			if err := writeF64(w, l.Weights[base+i]); err != nil {
				return err
			}
		}
		if err := writeF64(w, l.Biases[j]); err != nil {
			return err
		}
	}
	return nil
}

func readU64(r *bufio.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readF64(r *bufio.Reader) (float64, error) {
	var buf [8]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// fileLayer is one decoded on-disk layer record, kept generic so the
// loader can decide whether it matches the configured network before
// committing it.
type fileLayer struct {
	outLen, inLen int
	weights       []float64 // outLen*inLen, row-major
	biases        []float64
}

func readLayer(r *bufio.Reader) (fileLayer, error) {
	outLen64, err := readU64(r)
	if err != nil {
		return fileLayer{}, err
	}
	inLen64, err := readU64(r)
	if err != nil {
		return fileLayer{}, err
	}
	fl := fileLayer{outLen: int(outLen64), inLen: int(inLen64)}
	fl.weights = make([]float64, fl.outLen*fl.inLen)
	fl.biases = make([]float64, fl.outLen)
	for j := 0; j < fl.outLen; j++ {
		inLenJ, err := readU64(r)
		if err != nil {
			return fileLayer{}, err
		}
		if int(inLenJ) != fl.inLen {
			return fileLayer{}, fmt.Errorf("persist: neuron %d declares in_len=%d, layer header says %d", j, inLenJ, fl.inLen)
		}
		base := j * fl.inLen
		for i := 0; i < fl.inLen; i++ {
			v, err := readF64(r)
			if err != nil {
				return fileLayer{}, err
			}
			fl.weights[base+i] = v
		}
		b, err := readF64(r)
		if err != nil {
			return fileLayer{}, err
		}
		fl.biases[j] = b
	}
	return fl, nil
}

// LoadWeights tolerantly loads path into net: it accepts a prefix of file
// layers matching net's configured layer sizes (by neuron count and
// fan-in), applying only the layers that match; extra file layers are
// parsed and discarded, and configured layers beyond what the file
// supplies are left at their random initialization. Any I/O or structural
// error leaves net completely untouched, per spec.md's error taxonomy.
func LoadWeights(path string, net *mlp.Network) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	r := bufio.NewReaderSize(f, 1<<16)

	nHidden, err := readU64(r)
	if err != nil {
		return fmt.Errorf("persist: reading hidden layer count: %w", err)
	}
	sizes := make([]uint64, nHidden)
	for i := range sizes {
		if sizes[i], err = readU64(r); err != nil {
			return fmt.Errorf("persist: reading hidden layer sizes: %w", err)
		}
	}

	total := int(nHidden) + 1 // hidden layers + output layer
	decoded := make([]fileLayer, 0, total)
	for i := 0; i < total; i++ {
		fl, err := readLayer(r)
		if err != nil {
			// A layer we can't even parse structurally is a hard read
			// error for the whole file; fall back to leaving net alone.
			return fmt.Errorf("persist: decoding layer %d: %w", i, err)
		}
		decoded = append(decoded, fl)
	}

	// Apply the tolerated prefix: walk net's own layers in order and
	// adopt a decoded layer only where shapes agree exactly.
	applied := 0
	for i := range net.Layers {
		if i >= len(decoded) {
			break
		}
		cfg := &net.Layers[i]
		fl := decoded[i]
		if fl.outLen != cfg.OutLen || fl.inLen != cfg.InLen {
			continue
		}
		copy(cfg.Weights, fl.weights)
		copy(cfg.Biases, fl.biases)
		applied++
	}
	return nil
}
