// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"context"
	"sync"
	"time"
)

const (
	pollMinInterval = 50 * time.Microsecond
	pollMaxInterval = time.Millisecond
)

// signal ties a fence value to the queue position it was signaled at.
type signal struct {
	value      uint64
	submission uint64
}

// Fence is a monotonically increasing counter that the GPU advances as it
// finishes work.
//
// Signal(v) queues "set the fence to v once all work submitted so far has
// completed". The HAL tracks completion through submission indices, so the
// fence records the queue position of every signal and resolves it against
// Queue.Completed when asked.
type Fence struct {
	queue *Queue

	mu        sync.Mutex
	completed uint64
	last      uint64
	pending   []signal
}

// CreateFence creates a fence on the queue starting at initial.
func CreateFence(q *Queue, initial uint64) *Fence {
	return &Fence{queue: q, completed: initial, last: initial}
}

// Signal enqueues a fence update to value behind all submitted work.
// Values must not decrease.
func (f *Fence) Signal(value uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value < f.last {
		return ErrFenceValue
	}
	f.last = value
	f.pending = append(f.pending, signal{value: value, submission: f.queue.LastSubmission()})
	f.resolveLocked()
	return nil
}

// CompletedValue returns the value the GPU has reached. It never decreases.
func (f *Fence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveLocked()
	return f.completed
}

// LastSignaled returns the most recent value passed to Signal.
func (f *Fence) LastSignaled() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *Fence) resolveLocked() {
	if len(f.pending) == 0 {
		return
	}
	done := f.queue.Completed()
	n := 0
	for n < len(f.pending) && f.pending[n].submission <= done {
		if v := f.pending[n].value; v > f.completed {
			f.completed = v
		}
		n++
	}
	f.pending = f.pending[n:]
}

// SetEventOnCompletion arranges for ev to be set once the fence reaches
// value. The event is set immediately if the value was already reached.
func (f *Fence) SetEventOnCompletion(value uint64, ev *Event) {
	if f.CompletedValue() >= value {
		ev.Set()
		return
	}
	go f.watch(value, ev)
}

func (f *Fence) watch(value uint64, ev *Event) {
	interval := pollMinInterval
	for {
		select {
		case <-ev.reset:
			return
		default:
		}
		if f.CompletedValue() >= value {
			ev.Set()
			return
		}
		time.Sleep(interval)
		if interval < pollMaxInterval {
			interval *= 2
		}
	}
}

// Wait blocks until the fence reaches value or ctx is done.
func (f *Fence) Wait(ctx context.Context, value uint64) error {
	if f.CompletedValue() >= value {
		return nil
	}
	ev := CreateEvent()
	f.SetEventOnCompletion(value, ev)
	if err := ev.Wait(ctx); err != nil {
		ev.Reset()
		return err
	}
	return nil
}

// Event is a one-shot, manually reset wait object.
type Event struct {
	once  sync.Once
	done  chan struct{}
	reset chan struct{}
}

// CreateEvent returns an unset event.
func CreateEvent() *Event {
	return &Event{done: make(chan struct{}), reset: make(chan struct{})}
}

// Set releases every waiter. Setting twice is harmless.
func (e *Event) Set() {
	e.once.Do(func() { close(e.done) })
}

// IsSet reports whether the event has been set.
func (e *Event) IsSet() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Reset abandons the event: a pending fence watcher stops polling. The
// event cannot be reused afterwards.
func (e *Event) Reset() {
	select {
	case <-e.reset:
	default:
		close(e.reset)
	}
}

// Wait blocks until the event is set or ctx is done.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
