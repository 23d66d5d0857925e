// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"testing"

	"github.com/snncore/gennsl/backend"
	"github.com/snncore/gennsl/backend/refc"
	"github.com/snncore/gennsl/gtype"
	"github.com/snncore/gennsl/model"
	"github.com/snncore/gennsl/snntime"
)

func newTestRuntime() *Runtime {
	return &Runtime{
		backend: refc.New(backend.DefaultPreferences()),
		fn: libraryFuncs{
			allocateMem:      func() {},
			freeMem:          func() {},
			initialize:       func() {},
			initializeSparse: func() {},
			stepTime:         func(uint64, uint64) {},
		},
		arrays:      map[string]*arrayEntry{},
		kernelTimes: map[string]*snntime.Time{},
	}
}

// singlePopulationModel returns a finalised model with one NumNeurons-sized
// spiking population and the given batch size, large enough for Allocate
// to size every per-group array without needing any synapses.
func singlePopulationModel(t *testing.T, numNeurons, batchSize int) *model.Model {
	t.Helper()
	m := model.NewModel("test")
	if err := m.SetBatchSize(batchSize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nm := model.NeuronModel{
		Vars:               []model.Variable{{Name: "V", Access: model.ReadWrite, Init: model.VarInit{Kind: model.InitConstant, Value: -65}}},
		SimCode:            "V += 1.0;",
		ThresholdCondition: "V >= 30.0",
		ResetCode:          "V = -65.0;",
	}
	if _, err := m.AddNeuronPopulation("Pop0", numNeurons, nm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Finalise(1.0); err != nil {
		t.Fatalf("unexpected finalise error: %v", err)
	}
	return m
}

func TestRecordingBitmaskWordsErrorsWhenUnset(t *testing.T) {
	rt := newTestRuntime()
	if _, err := rt.RecordingBitmaskWords(70); !errors.Is(err, ErrRecordingUnset) {
		t.Fatalf("expected ErrRecordingUnset, got %v", err)
	}
}

// TestRecordingBitmaskWordsScenario6 pins the testable-properties
// scenario: N=70, batchSize=4, numRecordingTimesteps=1000 ->
// ceil(70/32) x 4 x 1000 = 3 x 4 x 1000 = 12000 words.
func TestRecordingBitmaskWordsScenario6(t *testing.T) {
	rt := newTestRuntime()
	m := singlePopulationModel(t, 70, 4)
	if err := rt.Allocate(m, 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	words, err := rt.RecordingBitmaskWords(70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if words != 12000 {
		t.Fatalf("expected 12000 words, got %d", words)
	}
}

func TestRecordingBitmaskWordsExactMultiple(t *testing.T) {
	rt := newTestRuntime()
	m := singlePopulationModel(t, 64, 1)
	if err := rt.Allocate(m, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	words, err := rt.RecordingBitmaskWords(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if words != 2 {
		t.Fatalf("expected ceil(64/32)x1x1=2 words, got %d", words)
	}
}

func TestRegisterArrayReusesSameShape(t *testing.T) {
	rt := newTestRuntime()
	a1, err := rt.RegisterArray("Neuron0", "V", gtype.ScalarType, 100, backend.HostDevice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := rt.RegisterArray("Neuron0", "V", gtype.ScalarType, 100, backend.HostDevice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a1 != a2 {
		t.Fatalf("expected the same array instance on re-registration")
	}
}

func TestRegisterArrayRejectsMismatchedShape(t *testing.T) {
	rt := newTestRuntime()
	if _, err := rt.RegisterArray("Neuron0", "V", gtype.ScalarType, 100, backend.HostDevice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := rt.RegisterArray("Neuron0", "V", gtype.ScalarType, 200, backend.HostDevice); !errors.Is(err, ErrDuplicateArray) {
		t.Fatalf("expected ErrDuplicateArray, got %v", err)
	}
}

func TestArrayLookupMissingReturnsFalse(t *testing.T) {
	rt := newTestRuntime()
	if _, ok := rt.Array("Neuron0", "V"); ok {
		t.Fatalf("expected no array to be registered yet")
	}
	if _, err := rt.RegisterArray("Neuron0", "V", gtype.ScalarType, 10, backend.HostDevice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rt.Array("Neuron0", "V"); !ok {
		t.Fatalf("expected the array to be found after registration")
	}
}

func TestKernelTimesEmptyBeforeAnyRun(t *testing.T) {
	rt := newTestRuntime()
	if len(rt.KernelTimes()) != 0 {
		t.Fatalf("expected no kernel timings before any run")
	}
}

func TestCloseWithoutOpenIsANoop(t *testing.T) {
	rt := newTestRuntime()
	if err := rt.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
