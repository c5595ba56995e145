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

package ingest

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	rendezvous "github.com/dgryski/go-rendezvous"
)

// RendezvousShard assigns each source address to one of n preprocessor
// workers via highest-random-weight hashing: a given address always maps
// to the same worker as long as the worker set is unchanged, and only a
// 1/n fraction of addresses move when a worker is added or removed. This
// matters here because the predictor holds one datapoint of state per
// logical stream; shuffling a source to a different worker mid-stream
// would corrupt that continuity more than rendezvous hashing's minimal
// churn does.
type RendezvousShard struct {
	r *rendezvous.Rendezvous
	n int
}

// NewRendezvousShard builds a shard selector across n workers, named
// "0".."n-1" internally.
func NewRendezvousShard(n int) *RendezvousShard {
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = strconv.Itoa(i)
	}
	r := rendezvous.New(nodes, xxhash.Sum64String)
	return &RendezvousShard{r: r, n: n}
}

// ShardFor returns the worker index for sourceAddr.
func (s *RendezvousShard) ShardFor(sourceAddr string) int {
	node := s.r.Lookup(sourceAddr)
	idx, err := strconv.Atoi(node)
	if err != nil || idx < 0 || idx >= s.n {
		return 0
	}
	return idx
}
