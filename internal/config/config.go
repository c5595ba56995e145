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

// Package config resolves the receiver's command-line flags into a
// single struct, the same shape as the teacher's cmd/ratelimiter-api:
// flag.* calls in one place, parsed once, passed by value to every stage
// constructor rather than read back out of the flag package elsewhere.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Receiver holds every resolved flag for cmd/netlogger-receiver.
type Receiver struct {
	UDPAddr string

	HistoryPath string
	WeightsPath string

	HiddenSizes  []int
	LearningRate float64
	Arch         string // "linear" (default) or "sigmoid"

	WeightSaveInterval int

	IngestShards int

	MetricsAddr string
	RedisAddr   string

	UIInterval int // seconds
	UIWindow   int // seconds

	OpenAIModel string
}

// defaultHiddenSizes mirrors mlp.DefaultHiddenSizes without importing the
// mlp package, keeping config free of a dependency on the network's
// internals.
var defaultHiddenSizes = []int{16, 32, 64, 32}

// ParseReceiver parses args (normally os.Args[1:]) into a Receiver,
// applying the spec's defaults for every unset flag.
func ParseReceiver(args []string) (Receiver, error) {
	fs := flag.NewFlagSet("netlogger-receiver", flag.ContinueOnError)

	udpAddr := fs.String("udp_addr", ":9000", "UDP listen address for incoming telemetry datagrams")
	historyPath := fs.String("history_path", "data/log_history.bin", "Path to the append-only normalized-input history file")
	weightsPath := fs.String("weights_path", "data/nn_weights.bin", "Path to the persisted network weights file")
	hidden := fs.String("hidden_sizes", joinInts(defaultHiddenSizes), "Comma-separated hidden layer widths")
	learningRate := fs.Float64("learning_rate", 0.1, "SGD learning rate")
	arch := fs.String("arch", "linear", "Network architecture variant: linear or sigmoid")
	saveInterval := fs.Int("weight_save_interval", 1, "Persist weights every N training steps")
	ingestShards := fs.Int("ingest_shards", 1, "Number of preprocessor worker shards fed by rendezvous-hashed source address")
	metricsAddr := fs.String("metrics_addr", "", "If non-empty, expose Prometheus /metrics on this address")
	redisAddr := fs.String("redis_addr", "", "If non-empty, mirror anomalies/stats to this Redis address")
	uiInterval := fs.Int("ui_interval_secs", 5, "Dashboard redraw interval in seconds")
	uiWindow := fs.Int("ui_window_secs", 60, "Dashboard rolling-window size in seconds")
	openaiModel := fs.String("openai_model", "gpt-4o-mini", "Chat-completion model used for optional LLM interpretation")

	if err := fs.Parse(args); err != nil {
		return Receiver{}, err
	}

	sizes, err := parseInts(*hidden)
	if err != nil {
		return Receiver{}, fmt.Errorf("config: -hidden_sizes: %w", err)
	}
	if *arch != "linear" && *arch != "sigmoid" {
		return Receiver{}, fmt.Errorf("config: -arch must be \"linear\" or \"sigmoid\", got %q", *arch)
	}
	if *ingestShards < 1 {
		return Receiver{}, fmt.Errorf("config: -ingest_shards must be >= 1, got %d", *ingestShards)
	}

	return Receiver{
		UDPAddr:            *udpAddr,
		HistoryPath:        *historyPath,
		WeightsPath:        *weightsPath,
		HiddenSizes:        sizes,
		LearningRate:       *learningRate,
		Arch:               *arch,
		WeightSaveInterval: *saveInterval,
		IngestShards:       *ingestShards,
		MetricsAddr:        *metricsAddr,
		RedisAddr:          *redisAddr,
		UIInterval:         *uiInterval,
		UIWindow:           *uiWindow,
		OpenAIModel:        *openaiModel,
	}, nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func parseInts(csv string) ([]int, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, nil
	}
	fields := strings.Split(csv, ",")
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("parsing %q as int: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}
