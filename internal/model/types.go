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

// Package model holds the typed records that move between pipeline stages.
// The wire/file contracts described by the spec are still plain text and
// fixed-size binary records; these types exist only so stages exchange
// structured values instead of formatting strings at every hop.
package model

import "math"

// InputSize is the MLP input arity: six feature channels.
const InputSize = 6

// OutputSize is the MLP output arity, identical to InputSize (self-predictive).
const OutputSize = 6

// Datapoint is the fixed seven-field record produced by the preprocessor.
// Missing fields are NaN.
type Datapoint struct {
	Timestamp     float64
	ExportBytes   float64
	ExportFlows   float64
	ExportPackets float64
	ExportRTR     float64
	ExportRTT     float64
	ExportSRT     float64
}

// Features returns the six feature channels in canonical order, matching
// the scale vector and the MLP's input/output layout.
func (d Datapoint) Features() [InputSize]float64 {
	return [InputSize]float64{
		d.ExportBytes, d.ExportFlows, d.ExportPackets,
		d.ExportRTR, d.ExportRTT, d.ExportSRT,
	}
}

// TSMillis returns round(timestamp*1000) as used by the history file and
// the normalized CSV emitted on proc.
func (d Datapoint) TSMillis() int64 {
	return int64(math.Round(d.Timestamp * 1000))
}

// RawLine is an opaque payload received on a channel before it has been
// classified.
type RawLine struct {
	Payload string
	// CSVLegacy is not set by ingest or by any other stage and is not read
	// by the preprocessor; a legacy "ts,bs,br" line is forwarded unchanged
	// in ParsedRecord.Line instead.
	CSVLegacy string
}

// HistoryKey is the two-channel projection recorded to history and used by
// the legacy two-input training path.
type HistoryKey struct {
	TSMillis int64
	In0      float32
	In1      float32
}

// ParsedRecord is what the preprocessor hands the predictor: the full
// datapoint plus the emitted line text and the history projection.
type ParsedRecord struct {
	Datapoint Datapoint
	Line      string
	History   HistoryKey
}

// Prediction is what the predictor hands the representer.
type Prediction struct {
	// Current is the post-update forward pass for the current record.
	Current [OutputSize]float64
	// Cost is the pre-update Euclidean cost, valid only when Trained is true.
	Cost float64
	// Trained reports whether a training step (and therefore a pred_prev
	// line) happened on this record.
	Trained bool
	// PrevPrediction and Target are populated only when Trained is true.
	PrevPrediction [OutputSize]float64
	Target         [OutputSize]float64
}

// ErrorEvent is pushed on the error channel: malformed input, an anomaly,
// or any other per-record failure that must not halt the pipeline.
type ErrorEvent struct {
	Message string
	// Anomaly is set when this event is an anomaly-rule trigger, in which
	// case LastTarget/AnomalyPrediction/AnomalyDiff are populated.
	Anomaly            bool
	LastTarget         float64
	AnomalyPrediction  float64
	AnomalyDiff        float64
}
