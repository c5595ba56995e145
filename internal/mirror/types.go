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

// Package mirror publishes anomaly events and periodic stats snapshots to
// an external channel, mirroring the ratelimiter's persistence adapters:
// a narrow interface, a real client behind it when an address is
// configured, and a logging stand-in otherwise so the feature is always
// safe to wire.
package mirror

import (
	"context"
	"time"
)

// AnomalySnapshot is what gets mirrored for one anomaly-rule trigger.
type AnomalySnapshot struct {
	LastTarget        float64 `json:"last_target"`
	AnomalyPrediction float64 `json:"anomaly_prediction"`
	AnomalyDiff       float64 `json:"anomaly_diff"`
}

// StatsSnapshot is what gets mirrored on the periodic publish tick.
type StatsSnapshot struct {
	Received     int64   `json:"received"`
	Processed    int64   `json:"processed"`
	Represented  int64   `json:"represented"`
	AvgError     float64 `json:"avg_error"`
	WindowSecs   int64   `json:"window_secs"`
}

// Publisher is the narrow surface the pipeline depends on. Both adapters
// below implement it; callers never see the concrete type.
type Publisher interface {
	PublishAnomaly(ctx context.Context, snap AnomalySnapshot) error
	PublishStats(ctx context.Context, snap StatsSnapshot) error
}

const (
	anomalyChannel = "netlogger:anomalies"
	statsChannel   = "netlogger:stats"

	// publishTimeout bounds each individual publish call so a stalled
	// mirror backend can never hold up the caller indefinitely.
	publishTimeout = 2 * time.Second
)
