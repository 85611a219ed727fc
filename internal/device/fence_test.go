// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// latentQueue is a noop queue whose completions are released by the test.
type latentQueue struct {
	noop.Queue
	submitted atomic.Uint64
	completed atomic.Uint64
}

func (q *latentQueue) Submit(_ []hal.CommandBuffer) (uint64, error) {
	return q.submitted.Add(1), nil
}

func (q *latentQueue) PollCompleted() uint64 { return q.completed.Load() }

// completeAll marks every submission so far as finished.
func (q *latentQueue) completeAll() { q.completed.Store(q.submitted.Load()) }

func newLatentQueue() (*Queue, *latentQueue) {
	lq := &latentQueue{}
	return &Queue{queue: lq}, lq
}

func TestFenceCompletesWithQueue(t *testing.T) {
	q, lq := newLatentQueue()
	f := CreateFence(q, 0)

	if _, err := q.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := f.Signal(1); err != nil {
		t.Fatal(err)
	}
	if got := f.CompletedValue(); got != 0 {
		t.Fatalf("CompletedValue = %d before the GPU finished, want 0", got)
	}

	lq.completeAll()
	if got := f.CompletedValue(); got != 1 {
		t.Fatalf("CompletedValue = %d after completion, want 1", got)
	}
	if f.LastSignaled() != 1 {
		t.Errorf("LastSignaled = %d, want 1", f.LastSignaled())
	}
}

func TestFenceSignalWithoutWorkCompletesImmediately(t *testing.T) {
	q, _ := newLatentQueue()
	f := CreateFence(q, 0)
	if err := f.Signal(5); err != nil {
		t.Fatal(err)
	}
	if got := f.CompletedValue(); got != 5 {
		t.Fatalf("CompletedValue = %d, want 5 with nothing in flight", got)
	}
}

func TestFenceCompletedValueMonotonic(t *testing.T) {
	q, lq := newLatentQueue()
	f := CreateFence(q, 0)

	var last uint64
	for v := uint64(1); v <= 20; v++ {
		if _, err := q.Submit(); err != nil {
			t.Fatal(err)
		}
		if err := f.Signal(v); err != nil {
			t.Fatal(err)
		}
		if v%3 == 0 {
			lq.completeAll()
		}
		got := f.CompletedValue()
		if got < last {
			t.Fatalf("CompletedValue went backwards: %d -> %d", last, got)
		}
		last = got
	}
}

func TestFenceSignalDecreasing(t *testing.T) {
	q, _ := newLatentQueue()
	f := CreateFence(q, 3)
	if err := f.Signal(2); !errors.Is(err, ErrFenceValue) {
		t.Fatalf("err = %v, want ErrFenceValue", err)
	}
	if err := f.Signal(3); err != nil {
		t.Fatalf("equal value rejected: %v", err)
	}
}

func TestFenceWaitBlocksUntilComplete(t *testing.T) {
	q, lq := newLatentQueue()
	f := CreateFence(q, 0)
	if _, err := q.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := f.Signal(1); err != nil {
		t.Fatal(err)
	}

	var released atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- f.Wait(context.Background(), 1)
	}()

	select {
	case err := <-done:
		t.Fatalf("Wait returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	released.Store(true)
	lq.completeAll()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if !released.Load() {
			t.Fatal("Wait returned before completion")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after completion")
	}
}

func TestFenceWaitCancelled(t *testing.T) {
	q, _ := newLatentQueue()
	f := CreateFence(q, 0)
	if _, err := q.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := f.Signal(1); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := f.Wait(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestEventSetOnCompletion(t *testing.T) {
	q, lq := newLatentQueue()
	f := CreateFence(q, 0)

	ev := CreateEvent()
	f.SetEventOnCompletion(0, ev)
	if !ev.IsSet() {
		t.Fatal("event for an already reached value must be set immediately")
	}

	if _, err := q.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := f.Signal(1); err != nil {
		t.Fatal(err)
	}
	ev = CreateEvent()
	f.SetEventOnCompletion(1, ev)
	if ev.IsSet() {
		t.Fatal("event set before completion")
	}
	lq.completeAll()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ev.Wait(ctx); err != nil {
		t.Fatalf("event Wait: %v", err)
	}
	ev.Set()
	ev.Reset()
	ev.Reset()
}
