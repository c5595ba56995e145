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
	"strings"
	"testing"
)

func TestTruncate_UnderLimitPassesThrough(t *testing.T) {
	buf := []byte("1700000000,1500,1500")
	got := truncate(buf)
	if got != string(buf) {
		t.Errorf("truncate(%q) = %q, want unchanged", buf, got)
	}
}

func TestTruncate_ExactlyMaxSizeIsTruncatedByOne(t *testing.T) {
	buf := []byte(strings.Repeat("a", MaxDatagramSize))
	got := truncate(buf)
	if len(got) != MaxDatagramSize-1 {
		t.Fatalf("truncate(8192 bytes) length = %d, want %d", len(got), MaxDatagramSize-1)
	}
	if got != strings.Repeat("a", MaxDatagramSize-1) {
		t.Errorf("truncate(8192 bytes) content mismatch")
	}
}

func TestTruncate_OverLimitIsTruncated(t *testing.T) {
	buf := []byte(strings.Repeat("b", MaxDatagramSize+100))
	got := truncate(buf)
	if len(got) != MaxDatagramSize-1 {
		t.Fatalf("truncate(oversized) length = %d, want %d", len(got), MaxDatagramSize-1)
	}
}

func TestRendezvousShard_StableAssignment(t *testing.T) {
	s := NewRendezvousShard(4)
	addr := "10.0.0.1:5555"
	first := s.ShardFor(addr)
	for i := 0; i < 50; i++ {
		if got := s.ShardFor(addr); got != first {
			t.Fatalf("ShardFor(%q) changed across calls: %d then %d", addr, first, got)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("ShardFor(%q) = %d, want in [0,4)", addr, first)
	}
}

func TestRendezvousShard_SpreadsAcrossWorkers(t *testing.T) {
	s := NewRendezvousShard(4)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		addr := "10.0.0." + string(rune('A'+i%26)) + ":" + string(rune('0'+i%10))
		seen[s.ShardFor(addr)] = true
	}
	if len(seen) < 2 {
		t.Errorf("130 distinct addresses all landed on %d worker(s), want hashing to spread across several", len(seen))
	}
}
