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
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// redisClient abstracts the two redis.Client methods this package needs,
// so tests can fake it without a live server.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisMirror publishes anomaly events to a Pub/Sub channel and stats
// snapshots to a hash, the same split spec.md's mirror contract names:
// PUBLISH netlogger:anomalies, HSET netlogger:stats. Each call is bounded
// by publishTimeout on top of whatever deadline the caller's context
// already carries, so a slow or unreachable broker never blocks the caller
// for longer than that.
type RedisMirror struct {
	client redisClient
}

// NewRedisMirror wraps a *redis.Client pointed at addr.
func NewRedisMirror(addr string) *RedisMirror {
	return &RedisMirror{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (m *RedisMirror) PublishAnomaly(ctx context.Context, snap AnomalySnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("mirror: marshal anomaly payload: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := m.client.Publish(ctx, anomalyChannel, body).Err(); err != nil {
		return fmt.Errorf("mirror: publish to %s: %w", anomalyChannel, err)
	}
	return nil
}

func (m *RedisMirror) PublishStats(ctx context.Context, snap StatsSnapshot) error {
	fields := []interface{}{
		"received", snap.Received,
		"processed", snap.Processed,
		"represented", snap.Represented,
		"avg_error", snap.AvgError,
		"window_secs", snap.WindowSecs,
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := m.client.HSet(ctx, statsChannel, fields...).Err(); err != nil {
		return fmt.Errorf("mirror: hset %s: %w", statsChannel, err)
	}
	return nil
}
