// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "testing"

func TestDelayReadWriteIndex(t *testing.T) {
	// numSlots=4, queuePtr=1, delaySteps=2 -> read (1+4-2)%4 = 3
	if got := DelayReadIndex(1, 4, 2); got != 3 {
		t.Fatalf("expected read index 3, got %d", got)
	}
	if got := DelayWriteIndex(1); got != 1 {
		t.Fatalf("expected write index 1, got %d", got)
	}
}

func TestNoDelayElidesIndexing(t *testing.T) {
	m := NewModel("test")
	src, _ := m.AddNeuronPopulation("Src", 10, newIzhikevichModel())
	trg, _ := m.AddNeuronPopulation("Trg", 10, newIzhikevichModel())
	_, err := m.AddSynapsePopulation("S", src, trg, MatrixType{Connectivity: Dense}, WeightUpdateModel{}, PostsynapticModel{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.RequiresDelayQueue() {
		t.Fatalf("expected delaySteps=0 to elide delay-slot indexing entirely")
	}
	if src.NumDelaySlots != 1 {
		t.Fatalf("expected numDelaySlots=1, got %d", src.NumDelaySlots)
	}
}

func TestDelayRequirementPropagatesFromSynapseGroup(t *testing.T) {
	m := NewModel("test")
	src, _ := m.AddNeuronPopulation("Src", 10, newIzhikevichModel())
	trg, _ := m.AddNeuronPopulation("Trg", 10, newIzhikevichModel())
	sg, err := m.AddSynapsePopulation("S", src, trg, MatrixType{Connectivity: Dense}, WeightUpdateModel{}, PostsynapticModel{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sg.AxonalDelaySteps = 3
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.NumDelaySlots != 4 {
		t.Fatalf("expected numDelaySlots=4 (axonalDelay+1), got %d", src.NumDelaySlots)
	}
	if !src.RequiresDelayQueue() {
		t.Fatalf("expected delay queue to be required")
	}
}

func TestDendriticDelayDetection(t *testing.T) {
	m := NewModel("test")
	src, _ := m.AddNeuronPopulation("Src", 10, newIzhikevichModel())
	trg, _ := m.AddNeuronPopulation("Trg", 10, newIzhikevichModel())
	wum := WeightUpdateModel{SimCode: "addToPostDelay(g, 1);"}
	sg, err := m.AddSynapsePopulation("S", src, trg, MatrixType{Connectivity: Dense}, wum, PostsynapticModel{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sg.RequiresDendriticDelay() {
		t.Fatalf("expected dendritic delay to be detected from addToPostDelay reference")
	}
	if sg.MaxDendriticDelayTimesteps < 1 {
		t.Fatalf("expected MaxDendriticDelayTimesteps >= 1")
	}
}
