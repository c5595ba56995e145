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

package pipeline

import (
	"sync"
	"testing"
	"time"
)

func TestChannel_FIFOOrder(t *testing.T) {
	c := New[int]()
	for i := 0; i < 5; i++ {
		c.Push(i)
	}
	if got := c.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
	for i := 0; i < 5; i++ {
		v, ok := c.Pop()
		if !ok || v != i {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
}

func TestChannel_TryPopEmpty(t *testing.T) {
	c := New[string]()
	if v, ok := c.TryPop(); ok {
		t.Fatalf("TryPop() on empty channel returned (%q, true)", v)
	}
}

func TestChannel_CloseDrainsThenEmpty(t *testing.T) {
	c := New[int]()
	c.Push(1)
	c.Push(2)
	c.Close()

	if v, ok := c.Pop(); !ok || v != 1 {
		t.Fatalf("Pop() after close = (%d, %v), want (1, true)", v, ok)
	}
	if v, ok := c.Pop(); !ok || v != 2 {
		t.Fatalf("Pop() after close = (%d, %v), want (2, true)", v, ok)
	}
	if v, ok := c.Pop(); ok {
		t.Fatalf("Pop() on drained closed channel = (%d, true), want ok=false", v)
	}
}

func TestChannel_CloseUnblocksWaiters(t *testing.T) {
	c := New[int]()
	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok := c.Pop()
			results[i] = ok
		}(i)
	}

	// Give the waiters a chance to block before closing.
	time.Sleep(20 * time.Millisecond)
	c.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close() did not unblock all waiting Pop() calls")
	}
	for i, ok := range results {
		if ok {
			t.Fatalf("waiter %d returned ok=true on empty closed channel", i)
		}
	}
}
