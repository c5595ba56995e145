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

// Package ingest is the pure UDP pump at the head of the pipeline: it
// never parses a payload, it only copies datagrams into raw and counts
// them. Optional rendezvous-hash sharding lets multiple preprocessor
// workers share the ingest load while keeping any one source address
// pinned to the same worker.
package ingest

import (
	"errors"
	"net"

	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/stats"
)

// MaxDatagramSize is the buffer size a single receive fills; datagrams
// of this size or larger are truncated to MaxDatagramSize-1 bytes with a
// trailing NUL, per the spec's truncation policy.
const MaxDatagramSize = 8192

// Stage owns the UDP listener and fans received payloads out to one or
// more raw channels (a single entry when sharding is disabled).
type Stage struct {
	conn  *net.UDPConn
	outs  []*pipeline.Channel[model.RawLine]
	stats *stats.Registry
	log   *obs.Logger
	shard Sharder
}

// Sharder maps a source address to an index into Stage.outs. The default
// (nil) always returns 0.
type Sharder interface {
	ShardFor(sourceAddr string) int
}

// Listen binds a UDP socket on addr (e.g. ":9000"). outs must have length
// >= 1; when it has more than one entry, shard selects which channel a
// given source address's datagrams land on (nil shard sends everything to
// outs[0]).
func Listen(addr string, outs []*pipeline.Channel[model.RawLine], reg *stats.Registry, log *obs.Logger, shard Sharder) (*Stage, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &Stage{conn: conn, outs: outs, stats: reg, log: log, shard: shard}, nil
}

// Run pumps datagrams until Close is called on the underlying socket,
// which unblocks ReadFromUDP with a "use of closed network connection"
// error that Run treats as a clean stop.
func (s *Stage) Run() {
	buf := make([]byte, MaxDatagramSize)
	for {
		n, src, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Printf("ingest: recv error: %v", err)
			continue
		}
		payload := truncate(buf[:n])
		line := model.RawLine{Payload: payload}

		idx := 0
		if s.shard != nil && len(s.outs) > 1 {
			idx = s.shard.ShardFor(src.String())
			if idx < 0 || idx >= len(s.outs) {
				idx = 0
			}
		}
		s.outs[idx].Push(line)
		if s.stats != nil {
			s.stats.IncReceived()
		}
	}
}

// Close stops the receive loop by closing the socket.
func (s *Stage) Close() error {
	return s.conn.Close()
}

// truncate copies buf into a new string, truncated to MaxDatagramSize-1
// bytes (room for a conceptual NUL terminator) when it fills the whole
// buffer.
func truncate(buf []byte) string {
	if len(buf) >= MaxDatagramSize {
		return string(buf[:MaxDatagramSize-1])
	}
	return string(buf)
}
