// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ResourceState is the access state of a back buffer.
type ResourceState uint8

const (
	// StateCommon is the state of a back buffer that has never been used.
	// Its contents are undefined, so it maps to no usage at all.
	StateCommon ResourceState = iota
	// StatePresent is the state of a back buffer owned by the presentation
	// chain. Present copies out of it, so it maps to copy-source usage.
	StatePresent
	// StateRenderTarget is the state of a back buffer being rendered into.
	StateRenderTarget
)

// String returns the state name.
func (s ResourceState) String() string {
	switch s {
	case StateCommon:
		return "Common"
	case StatePresent:
		return "Present"
	case StateRenderTarget:
		return "RenderTarget"
	default:
		return fmt.Sprintf("ResourceState(%d)", uint8(s))
	}
}

func (s ResourceState) usage() gputypes.TextureUsage {
	switch s {
	case StatePresent:
		return gputypes.TextureUsageCopySrc
	case StateRenderTarget:
		return gputypes.TextureUsageRenderAttachment
	default:
		return gputypes.TextureUsageNone
	}
}

// Transition is one recorded state change of a back buffer.
type Transition struct {
	Image  int
	Before ResourceState
	After  ResourceState
}

// historyLimit bounds the number of transitions kept for inspection.
const historyLimit = 64

// stateTracker keeps the declared state of every back buffer and turns
// state changes into texture barriers.
type stateTracker struct {
	states  []ResourceState
	history []Transition
}

// newStateTracker starts every image in StateCommon.
func newStateTracker(images int) stateTracker {
	return stateTracker{states: make([]ResourceState, images)}
}

// transition moves image to state and returns the barrier to record.
// It returns false when the image is already in that state.
func (t *stateTracker) transition(image int, to ResourceState, tex hal.Texture) (hal.TextureBarrier, bool) {
	from := t.states[image]
	if from == to {
		return hal.TextureBarrier{}, false
	}
	t.states[image] = to
	if len(t.history) == historyLimit {
		t.history = append(t.history[:0], t.history[1:]...)
	}
	t.history = append(t.history, Transition{Image: image, Before: from, After: to})
	return hal.TextureBarrier{
		Texture: tex,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage:   hal.TextureUsageTransition{OldUsage: from.usage(), NewUsage: to.usage()},
	}, true
}

// state returns the declared state of image.
func (t *stateTracker) state(image int) ResourceState { return t.states[image] }

// Transitions returns the most recent back buffer transitions, oldest first.
func (e *Engine) Transitions() []Transition {
	out := make([]Transition, len(e.states.history))
	copy(out, e.states.history)
	return out
}
