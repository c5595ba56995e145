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

// Command netlogger-receiver wires the five pipeline stages together:
// ingest, preprocess, predictor, representer, UI, plus the optional
// Prometheus and Redis mirrors, and drives graceful shutdown on
// SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/etalazz/netlogger/internal/config"
	"github.com/etalazz/netlogger/internal/ingest"
	"github.com/etalazz/netlogger/internal/mirror"
	"github.com/etalazz/netlogger/internal/mlp"
	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/persist"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/preprocess"
	"github.com/etalazz/netlogger/internal/predictor"
	"github.com/etalazz/netlogger/internal/represent"
	"github.com/etalazz/netlogger/internal/stats"
	"github.com/etalazz/netlogger/internal/ui"
)

func main() {
	cfg, err := config.ParseReceiver(os.Args[1:])
	if err != nil {
		log.Fatalf("netlogger-receiver: %v", err)
	}

	logger := obs.Default()
	reg := stats.New()

	net := buildNetwork(cfg)
	if err := persist.LoadWeights(cfg.WeightsPath, net); err != nil {
		logger.Printf("netlogger-receiver: weight load failed, starting from random init: %v", err)
	}

	history, err := persist.LoadHistory(cfg.HistoryPath)
	if err != nil {
		logger.Printf("netlogger-receiver: history load failed, starting with empty history: %v", err)
	}
	historyStore, err := persist.OpenHistoryStore(cfg.HistoryPath)
	if err != nil {
		log.Fatalf("netlogger-receiver: opening history store: %v", err)
	}

	rawChans := make([]*pipeline.Channel[model.RawLine], cfg.IngestShards)
	for i := range rawChans {
		rawChans[i] = pipeline.New[model.RawLine]()
	}
	procChan := pipeline.New[model.ParsedRecord]()
	reprChan := pipeline.New[model.Prediction]()
	rawErrors := pipeline.New[model.ErrorEvent]()
	uiErrors := pipeline.New[model.ErrorEvent]()

	var shard ingest.Sharder
	if cfg.IngestShards > 1 {
		shard = ingest.NewRendezvousShard(cfg.IngestShards)
	}
	ingestStage, err := ingest.Listen(cfg.UDPAddr, rawChans, reg, logger, shard)
	if err != nil {
		log.Fatalf("netlogger-receiver: binding %s: %v", cfg.UDPAddr, err)
	}

	predictorStage := &predictor.Stage{
		In: procChan, Out: reprChan, Stats: reg, Log: logger, Net: net,
		WeightsPath: cfg.WeightsPath, SaveEvery: cfg.WeightSaveInterval,
	}
	steps := predictorStage.WarmStart(history)
	logger.Printf("netlogger-receiver: warm-started predictor with %d history entries (%d training steps)", len(history), steps)

	representStage := &represent.Stage{In: reprChan, Errors: rawErrors, Log: logger, LLM: represent.NewLLMClientFromEnv(cfg.OpenAIModel)}

	publisher := mirror.New(cfg.RedisAddr, logger)
	stopMirrorFanout := fanOutErrors(rawErrors, uiErrors, publisher, logger)

	stopPromMirror := reg.StartPrometheusMirror(cfg.MetricsAddr, 5*time.Second)

	queues := make([]ui.QueueEntry, 0, len(rawChans)+2)
	for i, c := range rawChans {
		queues = append(queues, ui.QueueEntry{Name: fmt.Sprintf("raw[%d]", i), Queue: c})
	}
	queues = append(queues,
		ui.QueueEntry{Name: "proc", Queue: procChan},
		ui.QueueEntry{Name: "repr", Queue: reprChan},
	)
	uiStage := &ui.Stage{
		Queues: queues, Errors: uiErrors, Stats: reg, Log: logger,
		Interval: time.Duration(cfg.UIInterval) * time.Second,
		Window:   time.Duration(cfg.UIWindow) * time.Second,
	}
	uiStop := make(chan struct{})

	statsMirrorStop := make(chan struct{})
	go publishStatsLoop(reg, publisher, time.Duration(cfg.UIInterval)*time.Second, time.Duration(cfg.UIWindow)*time.Second, statsMirrorStop)

	var preWG, ingestWG, predWG, reprWG sync.WaitGroup
	preStages := make([]*preprocess.Stage, len(rawChans))
	for i, c := range rawChans {
		preStages[i] = &preprocess.Stage{In: c, Out: procChan, Errors: rawErrors, History: historyStore, Stats: reg, Log: logger}
		preWG.Add(1)
		go func(s *preprocess.Stage) { defer preWG.Done(); s.Run() }(preStages[i])
	}
	ingestWG.Add(1)
	go func() { defer ingestWG.Done(); ingestStage.Run() }()
	predWG.Add(1)
	go func() { defer predWG.Done(); predictorStage.Run() }()
	reprWG.Add(1)
	go func() { defer reprWG.Done(); representStage.Run() }()
	go uiStage.Run(uiStop)

	logger.Printf("netlogger-receiver: listening on %s (%d preprocessor shard(s))", cfg.UDPAddr, cfg.IngestShards)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Printf("netlogger-receiver: shutting down")

	close(uiStop)
	close(statsMirrorStop)

	_ = ingestStage.Close()
	ingestWG.Wait()

	for _, c := range rawChans {
		c.Close()
	}
	preWG.Wait()

	procChan.Close()
	predWG.Wait()
	predictorStage.Flush()

	reprChan.Close()
	reprWG.Wait()

	rawErrors.Close()
	<-stopMirrorFanout

	stopPromMirror()

	if err := historyStore.Close(); err != nil {
		logger.Printf("netlogger-receiver: closing history store: %v", err)
	}
	logger.Printf("netlogger-receiver: stopped")
}

func buildNetwork(cfg config.Receiver) *mlp.Network {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if cfg.Arch == "sigmoid" {
		return mlp.NewSigmoid(cfg.HiddenSizes, cfg.LearningRate, rng)
	}
	return mlp.NewLinear(cfg.HiddenSizes, cfg.LearningRate, rng)
}

// fanOutErrors is the single consumer of rawErrors: it forwards every
// event to uiErrors for dashboard display and, for anomaly events only,
// to the mirror. A single consumer avoids two stages racing to pop the
// same event off one channel. The returned channel closes once rawErrors
// is closed and drained.
func fanOutErrors(rawErrors, uiErrors *pipeline.Channel[model.ErrorEvent], publisher mirror.Publisher, logger *obs.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			ev, ok := rawErrors.Pop()
			if !ok {
				uiErrors.Close()
				return
			}
			uiErrors.Push(ev)
			if ev.Anomaly {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				err := publisher.PublishAnomaly(ctx, mirror.AnomalySnapshot{
					LastTarget: ev.LastTarget, AnomalyPrediction: ev.AnomalyPrediction, AnomalyDiff: ev.AnomalyDiff,
				})
				cancel()
				if err != nil {
					logger.Printf("netlogger-receiver: mirror publish failed: %v", err)
				}
			}
		}
	}()
	return done
}

func publishStatsLoop(reg *stats.Registry, publisher mirror.Publisher, interval, window time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			snap := reg.Snapshot()
			avg := reg.AverageError(window)
			if avg != avg { // NaN
				avg = 0
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = publisher.PublishStats(ctx, mirror.StatsSnapshot{
				Received: snap.Received, Processed: snap.Processed, Represented: snap.Represented,
				AvgError: avg, WindowSecs: int64(window / time.Second),
			})
			cancel()
		}
	}
}
