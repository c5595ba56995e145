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

package stats

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	receivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netlogger_received_total",
		Help: "Total UDP datagrams accepted by ingest.",
	})
	processedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netlogger_processed_total",
		Help: "Total records successfully parsed by the preprocessor.",
	})
	representedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netlogger_represented_total",
		Help: "Total lines emitted by the representer.",
	})
	predictionErrorGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netlogger_prediction_error",
		Help: "Average |prediction - target| Euclidean cost over the trailing 60s.",
	})
	queueDepthGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netlogger_queue_depth",
		Help: "Current depth of a pipeline channel.",
	}, []string{"channel"})
)

func init() {
	prometheus.MustRegister(receivedTotal, processedTotal, representedTotal, predictionErrorGauge, queueDepthGauge)
}

// mirrorState tracks the last cumulative value mirrored into each
// Prometheus counter, since counters only support Add(delta).
type mirrorState struct {
	lastReceived, lastProcessed, lastRepresented int64
}

// StartPrometheusMirror launches a background goroutine that mirrors this
// registry's counters and the 60-second average prediction error into the
// process-wide
// Prometheus registry every interval, and serves /metrics on addr if addr
// is non-empty. The returned stop function must be called on shutdown.
func (r *Registry) StartPrometheusMirror(addr string, interval time.Duration) (stop func()) {
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			_ = server.ListenAndServe()
		}()
	}

	st := &mirrorState{}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.mirrorOnce(st)
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

func (r *Registry) mirrorOnce(st *mirrorState) {
	c := r.Snapshot()
	if d := c.Received - st.lastReceived; d > 0 {
		receivedTotal.Add(float64(d))
		st.lastReceived = c.Received
	}
	if d := c.Processed - st.lastProcessed; d > 0 {
		processedTotal.Add(float64(d))
		st.lastProcessed = c.Processed
	}
	if d := c.Represented - st.lastRepresented; d > 0 {
		representedTotal.Add(float64(d))
		st.lastRepresented = c.Represented
	}
	if avg := r.AverageError(60 * time.Second); avg == avg { // not NaN
		predictionErrorGauge.Set(avg)
	}
}

// SetQueueDepth publishes the current depth of a named channel as a gauge.
func SetQueueDepth(channel string, depth int) {
	queueDepthGauge.WithLabelValues(channel).Set(float64(depth))
}
