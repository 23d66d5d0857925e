// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

// DelayReadIndex computes the slot a consumer with the given delaySteps
// should read from, given the group's current queue pointer and its
// total number of delay slots.
func DelayReadIndex(queuePtr, numSlots, delaySteps int) int {
	return (queuePtr + numSlots - delaySteps) % numSlots
}

// DelayWriteIndex is always the current queue pointer.
func DelayWriteIndex(queuePtr int) int { return queuePtr }

// AdvanceQueuePtr advances a neuron group's queue pointer by one slot,
// wrapping modulo numSlots; called once per StepTime before any kernel
// runs.
func AdvanceQueuePtr(queuePtr, numSlots int) int {
	if numSlots <= 1 {
		return 0
	}
	return (queuePtr + 1) % numSlots
}

// DendriticDelayIndex computes the ring-buffer slot a dendritic-delay
// write at the given timestep offset lands in.
func DendriticDelayIndex(ptr, maxDelayTimesteps int) int {
	if maxDelayTimesteps <= 1 {
		return 0
	}
	return ptr % maxDelayTimesteps
}
