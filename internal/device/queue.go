// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// Queue is the ordered submission channel to the GPU.
//
// The HAL hands out a monotonically increasing submission index for every
// Submit. Queue remembers the latest one so a fence can be signaled "after
// everything submitted so far".
type Queue struct {
	queue          hal.Queue
	lastSubmission uint64
}

// CreateCommandQueue returns the submission queue of the device.
func CreateCommandQueue(d *Device) *Queue {
	return &Queue{queue: d.queue}
}

// Submit hands closed command buffers to the GPU and returns the
// submission index.
func (q *Queue) Submit(buffers ...hal.CommandBuffer) (uint64, error) {
	idx, err := q.queue.Submit(buffers)
	if err != nil {
		return 0, fmt.Errorf("queue submit: %w", err)
	}
	if idx > q.lastSubmission {
		q.lastSubmission = idx
	}
	return idx, nil
}

// LastSubmission returns the index of the most recent submission, or zero
// when nothing has been submitted yet.
func (q *Queue) LastSubmission() uint64 { return q.lastSubmission }

// Completed returns the highest submission index the GPU has finished.
func (q *Queue) Completed() uint64 { return q.queue.PollCompleted() }

// HAL returns the underlying HAL queue.
func (q *Queue) HAL() hal.Queue { return q.queue }
