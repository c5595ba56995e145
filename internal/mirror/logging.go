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

package mirror

import (
	"context"

	"github.com/etalazz/netlogger/internal/obs"
)

// LoggingMirror is the dependency-free stand-in selected when no mirror
// address is configured: it lets every call site wire a Publisher
// unconditionally rather than branching on whether mirroring is enabled.
type LoggingMirror struct {
	Log *obs.Logger
}

func (m LoggingMirror) PublishAnomaly(ctx context.Context, snap AnomalySnapshot) error {
	m.Log.Printf("mirror: anomaly last_target=%.6f prediction=%.6f diff=%.6f",
		snap.LastTarget, snap.AnomalyPrediction, snap.AnomalyDiff)
	return nil
}

func (m LoggingMirror) PublishStats(ctx context.Context, snap StatsSnapshot) error {
	m.Log.Printf("mirror: stats received=%d processed=%d represented=%d avg_error=%.6f window=%ds",
		snap.Received, snap.Processed, snap.Represented, snap.AvgError, snap.WindowSecs)
	return nil
}
